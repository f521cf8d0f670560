package usecase

import (
	"errors"
	"strings"
)

const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeLeadNotFound   = "LEAD_NOT_FOUND"
	CodeNoContact      = "NO_CONTACT"
	CodeDeliveryFailed = "DELIVERY_FAILED"
	CodeEmptyUpdate    = "EMPTY_UPDATE"
	CodeDatabase       = "DATABASE_ERROR"
)

type DomainError struct {
	Code    string
	Message string
	Fields  []ValidationError
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

func newValidationError(errs []ValidationError) *DomainError {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Field+" ("+e.Message+")")
	}
	return &DomainError{
		Code:    CodeValidation,
		Message: "validation failed: " + strings.Join(parts, ", "),
		Fields:  errs,
	}
}

func leadNotFound(id string) *DomainError {
	return &DomainError{Code: CodeLeadNotFound, Message: "lead " + id + " not found"}
}

func databaseError(msg string, err error) *TechnicalError {
	return &TechnicalError{Code: CodeDatabase, Message: msg + ": " + err.Error(), Err: err}
}
