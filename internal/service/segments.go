package service

// CostPerSegment is the per-segment price in SEK used for the local
// estimate; the gateway's reported cost is the billed-of-record value.
const CostPerSegment = 0.35

const (
	gsmSingleLimit     = 160
	gsmConcatLimit     = 153
	unicodeSingleLimit = 70
	unicodeConcatLimit = 67
)

// gsmBasic is the GSM 03.38 default alphabet.
const gsmBasic = "@£$¥èéùìòÇ\nØø\rÅåΔ_ΦΓΛΩΠΨΣΘΞÆæßÉ !\"#¤%&'()*+,-./0123456789:;<=>?" +
	"¡ABCDEFGHIJKLMNOPQRSTUVWXYZÄÖÑܧ¿abcdefghijklmnopqrstuvwxyzäöñüà"

// gsmExtension characters are sent as an escape pair and count twice.
const gsmExtension = "^{}\\[~]|€"

var gsmBasicSet = buildRuneSet(gsmBasic)
var gsmExtensionSet = buildRuneSet(gsmExtension)

func buildRuneSet(chars string) map[rune]bool {
	set := make(map[rune]bool, len(chars))
	for _, r := range chars {
		set[r] = true
	}
	return set
}

// gsmLength returns the septet count of message and whether every rune
// fits the GSM 03.38 alphabet.
func gsmLength(message string) (int, bool) {
	length := 0
	for _, r := range message {
		switch {
		case gsmBasicSet[r]:
			length++
		case gsmExtensionSet[r]:
			length += 2
		default:
			return 0, false
		}
	}
	return length, true
}

// CalculateSegments computes how many SMS segments message consumes.
// GSM-encodable text packs 160 characters into one segment (153 per
// segment when concatenated); any non-GSM rune forces UCS-2 with the
// 70/67 rule. An empty message is 0 segments (invalid upstream).
func CalculateSegments(message string) int {
	if len(message) == 0 {
		return 0
	}

	if length, ok := gsmLength(message); ok {
		if length <= gsmSingleLimit {
			return 1
		}
		return (length + gsmConcatLimit - 1) / gsmConcatLimit
	}

	// UCS-2 length is UTF-16 code units: astral runes (emoji) count two.
	units := 0
	for _, r := range message {
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
	}

	if units <= unicodeSingleLimit {
		return 1
	}
	return (units + unicodeConcatLimit - 1) / unicodeConcatLimit
}

// CalculateCost is the local SEK estimate for message.
func CalculateCost(message string) float64 {
	return float64(CalculateSegments(message)) * CostPerSegment
}
