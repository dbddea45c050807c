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

// joinValidation junta os erros numa DomainError única, ou nil.
func joinValidation(errs []ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	msg := "validation failed: "
	for i, e := range errs {
		if i > 0 {
			msg += ", "
		}
		msg += e.Field + " (" + e.Message + ")"
	}
	return &DomainError{Code: CodeValidation, Message: msg}
}

func required(field, value string) []ValidationError {
	if strings.TrimSpace(value) == "" {
		return []ValidationError{{field, "is required"}}
	}
	return nil
}

func validEmail(field, value string) []ValidationError {
	if strings.TrimSpace(value) == "" {
		return []ValidationError{{field, "is required"}}
	}
	if _, err := mail.ParseAddress(value); err != nil {
		return []ValidationError{{field, "is invalid"}}
	}
	return nil
}

var allowedRoles = map[string]bool{
	"admin":   true,
	"usuario": true,
}

func validRole(field, value string) []ValidationError {
	if value == "" {
		return []ValidationError{{field, "is required"}}
	}
	if !allowedRoles[value] {
		return []ValidationError{{field, "must be admin or usuario"}}
	}
	return nil
}
