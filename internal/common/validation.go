package common

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type profileInput struct {
	Username string `validate:"required"`
	Age      int    `validate:"min=18,max=60"`
	Gender   string `validate:"oneof=male female other"`
	Country  string `validate:"required"`
}

// ValidateProfile checks every sign-in field and reports all failures at once
// so the client can highlight each offending input in a single pass.
func ValidateProfile(username string, age int, gender, country string) error {
	input := profileInput{
		Username: strings.TrimSpace(username),
		Age:      age,
		Gender:   strings.ToLower(strings.TrimSpace(gender)),
		Country:  strings.TrimSpace(country),
	}

	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	ve := NewValidationError()
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		ve.Add("profile", err.Error())
		return ve
	}

	for _, fe := range fieldErrs {
		switch fe.Field() {
		case "Username":
			ve.Add("username", "Username cannot be empty")
		case "Age":
			ve.Add("age", "Please enter a valid age (18 - 60)")
		case "Gender":
			ve.Add("gender", "Please select a gender")
		case "Country":
			ve.Add("country", "Please select a country")
		}
	}
	return ve
}

// ValidateMessageBody rejects empty bodies and self-addressed messages,
// reporting both problems together when both apply.
func ValidateMessageBody(senderID, receiverID uint64, body string) error {
	ve := NewValidationError()
	if strings.TrimSpace(body) == "" {
		ve.Add("body", "message body cannot be empty")
	}
	if senderID == receiverID {
		ve.Add("receiver_id", "cannot send a message to yourself")
	}
	if ve.HasErrors() {
		return ve
	}
	return nil
}
