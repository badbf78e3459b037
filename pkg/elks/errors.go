package elks

const (
	ErrorCodeConfig        = "CONFIG_ERROR"    // Missing API credentials
	ErrorCodeInvalidNumber = "INVALID_NUMBER"  // 400/validation rejections
	ErrorCodeAuth          = "AUTH_ERROR"      // 401/403 from the gateway
	ErrorCodeTimeout       = "TIMEOUT"         // Context deadline exceeded
	ErrorCodeNetwork       = "NETWORK_ERROR"   // Connection failures
	ErrorCodeServer        = "SERVER_ERROR"    // 5xx and undecodable bodies
)

// SendError is the gateway's errors-as-values shape: Send returns a nil
// *SendError on success, so every call site must branch on the value
// before trusting the response.
type SendError struct {
	Code    string
	Message string
}

func (e *SendError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

func newSendError(code, message string) *SendError {
	return &SendError{Code: code, Message: message}
}

func mapStatusToSendError(statusCode int, body string) *SendError {
	switch statusCode {
	case 400, 422:
		return newSendError(ErrorCodeInvalidNumber, body)
	case 401, 403:
		return newSendError(ErrorCodeAuth, body)
	default:
		return newSendError(ErrorCodeServer, body)
	}
}
