package service

import (
	"errors"
	"strings"

	"github.com/meddela/dispatch/internal/constants"
)

var (
	ErrDatabase = errors.New("DATABASE_ERROR")
)

type Error struct {
	Code  string
	Cause error

	// Tokens is populated only for PLACEHOLDER_ERROR and lists the
	// unresolved template tokens verbatim.
	Tokens []string
}

func NewServiceError(code string, cause error) error {
	return Error{Code: code, Cause: cause}
}

func NewPlaceholderError(tokens []string) error {
	return Error{
		Code:   constants.ErrCodePlaceholder,
		Cause:  errors.New("unresolved placeholders: " + strings.Join(tokens, ", ")),
		Tokens: tokens,
	}
}

func (e Error) Error() string {
	return e.Cause.Error()
}

func (e Error) Unwrap() error {
	return e.Cause
}

// IsCreditError reports whether err is the credit-exhaustion kind; the
// campaign processor uses it to short-circuit the remaining recipients.
func IsCreditError(err error) bool {
	var serviceErr Error
	return errors.As(err, &serviceErr) && serviceErr.Code == constants.ErrCodeCredit
}
