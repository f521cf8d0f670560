package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return isValidPhoneNumber(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// validateStruct traduz os erros do validator para a lista campo/mensagem.
func validateStruct(s any) []ValidationError {
	err := validatorInstance().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ValidationError{{Field: "body", Message: err.Error()}}
	}

	out := make([]ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, ValidationError{Field: fieldPath(fe), Message: messageFor(fe)})
	}
	return out
}

// "CaptureLeadInput.email" -> "email"; "UpdateSettingsInput.notifyEmails[0]" -> "notifyEmails[0]"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "is invalid"
	case "phone":
		return "must be a valid phone number"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "max":
		if fe.Kind() == reflect.Slice {
			return "must not have more than " + fe.Param() + " items"
		}
		if fe.Kind() == reflect.Int {
			return "must not exceed " + fe.Param()
		}
		return "must not exceed " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param()
	default:
		return "is invalid"
	}
}

func ValidateCaptureLeadInput(input CaptureLeadInput) []ValidationError {
	errs := validateStruct(input)

	if strings.TrimSpace(input.Name) == "" && !hasField(errs, "name") {
		errs = append(errs, ValidationError{"name", "is required"})
	}
	if strings.TrimSpace(input.Source) == "" && !hasField(errs, "source") {
		errs = append(errs, ValidationError{"source", "is required"})
	}

	// Lead sem nenhum meio de contato não tem como ser respondido
	if strings.TrimSpace(input.Email) == "" && strings.TrimSpace(input.Phone) == "" && strings.TrimSpace(input.WhatsApp) == "" {
		errs = append(errs, ValidationError{"contact", "at least one of email, phone or whatsapp is required"})
	}

	return errs
}

func hasField(errs []ValidationError, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}

// isValidPhoneNumber aceita qualquer formatação desde que sobrem 8 a 15 dígitos (E.164).
func isValidPhoneNumber(phone string) bool {
	n := len(OnlyDigits(phone))
	return n >= 8 && n <= 15
}

func OnlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
