package events

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Input is the submission shape shared by add-event and edit-event.
type Input struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description" validate:"required"`
	Photo       string    `json:"photo" validate:"omitempty,url"`
	Category    string    `json:"category" validate:"required,oneof=exam fest tour game others"`
	Location    string    `json:"location" validate:"required"`
	Participant string    `json:"participant" validate:"required,oneof=teachers students anyone"`
	Date        time.Time `json:"date" validate:"required"`
}

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// fieldMessages keeps the original schema's human-readable wording.
var fieldMessages = map[string]string{
	"Title":       "Title is required",
	"Description": "Description is required",
	"Category":    "Category is required",
	"Location":    "Location is required",
	"Participant": "Participant is required",
	"Date":        "Date is required",
}

// ValidateInput checks required fields and enum membership. The first failing
// field wins; messages are meant for the in-band acknowledged:false response.
func ValidateInput(input Input) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return ValidationError{Message: "invalid event"}
	}

	first := errs[0]
	switch first.Tag() {
	case "required":
		msg, ok := fieldMessages[first.Field()]
		if !ok {
			msg = fmt.Sprintf("%s is required", first.Field())
		}
		return ValidationError{Field: first.Field(), Message: msg}
	case "oneof":
		return ValidationError{
			Field:   first.Field(),
			Message: fmt.Sprintf("%s must be one of [%s]", first.Field(), first.Param()),
		}
	case "url":
		return ValidationError{Field: first.Field(), Message: "Photo must be a valid URL"}
	default:
		return ValidationError{Field: first.Field(), Message: fmt.Sprintf("invalid %s", first.Field())}
	}
}
