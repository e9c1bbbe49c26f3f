package shared

import (
	"errors"
	"net/http"
)

// ErrorKind classifies request failures so the http layer can map them to
// response statuses without inspecting error strings.
type ErrorKind int

const (
	// Validation indicates user-correctable bad input.
	Validation ErrorKind = iota
	// Configuration indicates a missing secret or key at startup.
	Configuration
	// UpstreamTransfer indicates a non-2xx status from the data provider.
	UpstreamTransfer
	// UpstreamDomain indicates a 2xx provider response signalling no or
	// invalid data.
	UpstreamDomain
	// Unexpected is the catch-all for everything else.
	Unexpected
)

// Error represents a classified request processing failure.
type Error struct {
	Kind ErrorKind
	// UpstreamStatus is the provider's http status code, set only for
	// transfer errors.
	UpstreamStatus int
	Message        string
}

// Error satisfies the error interface.
func (e *Error) Error() string {
	return e.Message
}

// NewValidationError returns a validation classified error.
func NewValidationError(msg string) *Error {
	return &Error{Kind: Validation, Message: msg}
}

// NewConfigurationError returns a configuration classified error.
func NewConfigurationError(msg string) *Error {
	return &Error{Kind: Configuration, Message: msg}
}

// NewTransferError returns a transfer classified error carrying the
// provider's status code.
func NewTransferError(status int, msg string) *Error {
	return &Error{Kind: UpstreamTransfer, UpstreamStatus: status, Message: msg}
}

// NewDomainError returns an upstream domain classified error.
func NewDomainError(msg string) *Error {
	return &Error{Kind: UpstreamDomain, Message: msg}
}

// HTTPStatus maps the provided error to the http status code it should be
// answered with. Transfer errors map by the provider's status code, all
// unclassified errors map to an internal server error.
func HTTPStatus(err error) int {
	var cerr *Error
	if !errors.As(err, &cerr) {
		return http.StatusInternalServerError
	}

	switch cerr.Kind {
	case Validation, UpstreamDomain:
		return http.StatusBadRequest
	case Configuration:
		return http.StatusInternalServerError
	case UpstreamTransfer:
		switch cerr.UpstreamStatus {
		case http.StatusForbidden:
			return http.StatusForbidden
		case http.StatusNotFound:
			return http.StatusNotFound
		default:
			return http.StatusInternalServerError
		}
	default:
		return http.StatusInternalServerError
	}
}
