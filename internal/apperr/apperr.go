// Package apperr is the error taxonomy shared by services and HTTP handlers.
package apperr

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodePendingApproval    Code = "PENDING_APPROVAL"
	CodeUnauthenticated    Code = "UNAUTHENTICATED"
	CodeInvalidToken       Code = "INVALID_TOKEN"
	CodeForbidden          Code = "FORBIDDEN"
	CodeNotFound           Code = "NOT_FOUND"
	CodeValidation         Code = "VALIDATION_ERROR"
	CodeConflict           Code = "CONFLICT"
	CodeRateLimit          Code = "RATE_LIMIT_EXCEEDED"
	CodeUpstream           Code = "UPSTREAM_FAILURE"
	CodeInternal           Code = "INTERNAL"
)

type Metadata struct {
	HTTPStatus     int
	PublicMessage  string
	DetailsAllowed bool
	// HideMessage replaces the error message with PublicMessage in responses.
	HideMessage bool
}

var metadataByCode = map[Code]Metadata{
	CodeInvalidCredentials: {HTTPStatus: http.StatusUnauthorized, PublicMessage: "invalid credentials"},
	CodePendingApproval:    {HTTPStatus: http.StatusForbidden, PublicMessage: "account pending approval"},
	CodeUnauthenticated:    {HTTPStatus: http.StatusUnauthorized, PublicMessage: "no token, authorization denied"},
	CodeInvalidToken:       {HTTPStatus: http.StatusUnauthorized, PublicMessage: "token is not valid"},
	CodeForbidden:          {HTTPStatus: http.StatusForbidden, PublicMessage: "access denied"},
	CodeNotFound:           {HTTPStatus: http.StatusNotFound, PublicMessage: "resource not found"},
	CodeValidation:         {HTTPStatus: http.StatusBadRequest, PublicMessage: "validation failed", DetailsAllowed: true},
	CodeConflict:           {HTTPStatus: http.StatusConflict, PublicMessage: "already exists"},
	CodeRateLimit:          {HTTPStatus: http.StatusTooManyRequests, PublicMessage: "rate limit exceeded"},
	CodeUpstream:           {HTTPStatus: http.StatusBadGateway, PublicMessage: "upstream service failure", HideMessage: true},
	CodeInternal:           {HTTPStatus: http.StatusInternalServerError, PublicMessage: "internal server error", HideMessage: true},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// CodeOf returns the code carried by err, or CodeInternal for untyped errors.
func CodeOf(err error) Code {
	if typed := As(err); typed != nil {
		return typed.Code()
	}
	return CodeInternal
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}

// Convenience constructors for the codes services raise most often.

func NotFound(message string) *Error { return New(CodeNotFound, message) }

func Forbidden(message string) *Error { return New(CodeForbidden, message) }

func Validation(message string, fields ...string) *Error {
	e := New(CodeValidation, message)
	if len(fields) > 0 {
		e.details = map[string]any{"fields": fields}
	}
	return e
}

func Upstream(err error, message string) *Error { return Wrap(CodeUpstream, err, message) }
