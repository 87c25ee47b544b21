package dto

import (
	"encoding/json"
)

// LooseString decodes JSON strings as-is and any other JSON value as "", so a
// form field of the wrong type reads as missing rather than failing the parse.
type LooseString string

func (s *LooseString) UnmarshalJSON(raw []byte) error {
	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		*s = ""
		return nil
	}
	*s = LooseString(str)
	return nil
}

// ContactRequest is the contact-form payload.
type ContactRequest struct {
	Name    LooseString `json:"name" form:"name"`
	Email   LooseString `json:"email" form:"email"`
	Message LooseString `json:"message" form:"message"`
}
