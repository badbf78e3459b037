package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/meddela/dispatch/internal/model"
)

// PlaceholderContext carries the rows a template is rendered against.
// Now is injectable for tests; the zero value means the wall clock.
type PlaceholderContext struct {
	Contact      *model.Contact
	Organization *model.Organization
	Now          time.Time
}

type Resolution struct {
	Rendered  string
	Unmatched []string
}

// The token classes are deliberately wide: a digit-bearing typo like
// {{contact.name2}} must still be scanned so it fails closed through
// the unmatched path instead of reaching the recipient verbatim.
var placeholderPattern = regexp.MustCompile(`\{\{\s*(\w+)\s*\.\s*(\w+)\s*\}\}`)

var swedishMonths = [...]string{
	"januari", "februari", "mars", "april", "maj", "juni",
	"juli", "augusti", "september", "oktober", "november", "december",
}

type resolverFunc func(pctx PlaceholderContext) (string, bool)

var resolvers = map[string]resolverFunc{
	"contact.name": func(pctx PlaceholderContext) (string, bool) {
		if pctx.Contact == nil {
			return "", false
		}
		return pctx.Contact.Name, true
	},
	"contact.first_name": func(pctx PlaceholderContext) (string, bool) {
		if pctx.Contact == nil {
			return "", false
		}
		return pctx.Contact.FirstName(), true
	},
	"contact.last_name": func(pctx PlaceholderContext) (string, bool) {
		if pctx.Contact == nil {
			return "", false
		}
		return pctx.Contact.LastName(), true
	},
	"contact.phone": func(pctx PlaceholderContext) (string, bool) {
		if pctx.Contact == nil {
			return "", false
		}
		return pctx.Contact.Phone, true
	},
	"contact.email": func(pctx PlaceholderContext) (string, bool) {
		if pctx.Contact == nil {
			return "", false
		}
		return pctx.Contact.Email, true
	},
	"contact.tags": func(pctx PlaceholderContext) (string, bool) {
		if pctx.Contact == nil {
			return "", false
		}
		return strings.Join(pctx.Contact.Tags, ", "), true
	},
	"organization.name": func(pctx PlaceholderContext) (string, bool) {
		if pctx.Organization == nil {
			return "", false
		}
		return pctx.Organization.Name, true
	},
	"organization.plan": func(pctx PlaceholderContext) (string, bool) {
		if pctx.Organization == nil {
			return "", false
		}
		return pctx.Organization.Plan, true
	},
	"organization.sender_name": func(pctx PlaceholderContext) (string, bool) {
		if pctx.Organization == nil {
			return "", false
		}
		return pctx.Organization.SenderName, true
	},
	"date.today": func(pctx PlaceholderContext) (string, bool) {
		now := pctx.now()
		return fmt.Sprintf("%d %s %d", now.Day(), swedishMonths[now.Month()-1], now.Year()), true
	},
	"date.today_short": func(pctx PlaceholderContext) (string, bool) {
		return pctx.now().Format("2006-01-02"), true
	},
}

func (pctx PlaceholderContext) now() time.Time {
	if pctx.Now.IsZero() {
		return time.Now()
	}
	return pctx.Now
}

// ResolvePlaceholders expands {{namespace.field}} tokens against the
// given context. Unknown or unresolvable tokens are left verbatim in the
// output and collected into Unmatched, so a broken template stays visible
// instead of silently losing content.
func ResolvePlaceholders(message string, pctx PlaceholderContext) Resolution {
	var unmatched []string
	seen := make(map[string]bool)

	rendered := placeholderPattern.ReplaceAllStringFunc(message, func(token string) string {
		parts := placeholderPattern.FindStringSubmatch(token)
		key := strings.ToLower(parts[1]) + "." + strings.ToLower(parts[2])

		if resolve, ok := resolvers[key]; ok {
			if value, ok := resolve(pctx); ok {
				return value
			}
		}

		if !seen[token] {
			seen[token] = true
			unmatched = append(unmatched, token)
		}

		return token
	})

	return Resolution{Rendered: rendered, Unmatched: unmatched}
}
