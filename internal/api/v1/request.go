package v1

type SendSMSRequest struct {
	ContactID  int64  `json:"contact_id" validate:"required,min=1"`
	Message    string `json:"message" validate:"required"`
	TemplateID *int64 `json:"template_id" validate:"omitempty,min=1"`

	// Optional override for contacts with more than one number; the
	// contact's consent still gates the send.
	Phone string `json:"phone" validate:"omitempty,e164_phone"`
}
