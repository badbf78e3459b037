package validator

import (
	"github.com/go-playground/validator/v10"
	"github.com/meddela/dispatch/pkg/elks"
)

const (
	E164Tag = "e164_phone"
)

var valid = map[string]func(fl validator.FieldLevel) bool{
	E164Tag: ValidateE164,
}

func ValidateE164(fl validator.FieldLevel) bool {
	return elks.ValidatePhone(fl.Field().String())
}
