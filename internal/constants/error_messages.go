package constants

const (
	ErrCodeContent            = "CONTENT_ERROR"
	ErrCodeConsent            = "CONSENT_ERROR"
	ErrCodeCredit             = "CREDIT_ERROR"
	ErrCodePlaceholder        = "PLACEHOLDER_ERROR"
	ErrCodeProvider           = "PROVIDER_ERROR"
	ErrCodeConfig             = "CONFIG_ERROR"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

const (
	ErrMsgContent            = "message body is empty or invalid"
	ErrMsgConsent            = "contact not found or has not consented to SMS"
	ErrMsgCredit             = "insufficient SMS credits"
	ErrMsgPlaceholder        = "message contains unresolved placeholders"
	ErrMsgProvider           = "SMS gateway rejected the send"
	ErrMsgConfig             = "service is not configured"
	ErrMsgUnauthorized       = "unauthorized"
	ErrMsgInvalidRequestBody = "failed to parse request body"
	ErrMsgInternalError      = "Internal server error"
)

var errorMessages = map[string]string{
	ErrCodeContent:            ErrMsgContent,
	ErrCodeConsent:            ErrMsgConsent,
	ErrCodeCredit:             ErrMsgCredit,
	ErrCodePlaceholder:        ErrMsgPlaceholder,
	ErrCodeProvider:           ErrMsgProvider,
	ErrCodeConfig:             ErrMsgConfig,
	ErrCodeUnauthorized:       ErrMsgUnauthorized,
	ErrCodeInvalidRequestBody: ErrMsgInvalidRequestBody,
	ErrCodeInternalError:      ErrMsgInternalError,
}

func GetErrorMessage(code string) string {
	if msg, exists := errorMessages[code]; exists {
		return msg
	}
	return ErrMsgInternalError
}

func GetHTTPStatus(code string) int {
	switch code {
	case ErrCodeContent, ErrCodePlaceholder, ErrCodeInvalidRequestBody:
		return 400
	case ErrCodeUnauthorized:
		return 401
	case ErrCodeCredit:
		return 402
	case ErrCodeConsent:
		return 404
	case ErrCodeProvider:
		return 502
	case ErrCodeConfig, ErrCodeInternalError:
		return 500
	default:
		return 500
	}
}
