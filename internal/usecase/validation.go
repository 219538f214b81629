package usecase

import (
	"fmt"
	"net/mail"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors junta os erros de campo num só error.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}

func ValidateSubmitLeadInput(input SubmitLeadInput) ValidationErrors {
	var errs ValidationErrors

	if strings.TrimSpace(input.SituationLength) == "" {
		errs = append(errs, ValidationError{"situation_length", "is required"})
	}
	if strings.TrimSpace(input.Lender) == "" {
		errs = append(errs, ValidationError{"lender", "is required"})
	}
	if strings.TrimSpace(input.NOD) == "" {
		errs = append(errs, ValidationError{"nod", "is required"})
	}

	if email := strings.TrimSpace(input.ContactEmail); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			errs = append(errs, ValidationError{"contact_email", "is invalid"})
		}
	}

	return errs
}

func ValidateVoiceUsageInput(input RecordVoiceUsageInput) ValidationErrors {
	var errs ValidationErrors

	if input.Text == "" {
		errs = append(errs, ValidationError{"text", "is required"})
	}
	if input.Voice == "" {
		errs = append(errs, ValidationError{"voice", "is required"})
	}
	if input.Model == "" {
		errs = append(errs, ValidationError{"model", "is required"})
	}
	if input.Tier == "" {
		errs = append(errs, ValidationError{"tier", "is required"})
	}

	return errs
}
