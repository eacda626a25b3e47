package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse abstracts all API error responses to the user.
//
// This interface does not implement `error`, since its only purpose
// is to be used for API responses and not for logging circumstances.
//
// In general, the whole ErrorResponse can be sent for serialization.
type ErrorResponse interface {
	// Code is the HTTP status code to be returned.
	Code() int
}

type APIError struct {
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (a *APIError) Code() int {
	return a.Status
}

type StructuredError struct {
	Errors map[string][]string `json:"errors"`
	Status int                 `json:"-"`
}

func (s *StructuredError) Code() int {
	return s.Status
}

func (s *StructuredError) Add(field, problem string) {
	s.Errors[field] = append(s.Errors[field], problem)
}

var (
	MalformedBodyError  = NewSimple(400, "Malformed request body")
	InternalServerError = NewSimple(500, "Internal server error")

	NotFoundError       = NewSimple(404, "Resource not found")
	DuplicateAliasError = NewSimple(409, "Alias is already taken")

	// ForbiddenError is the ordinary policy denial: the caller is known
	// but lacks the required level on the note.
	ForbiddenError = NewSimple(403, "Missing permissions")

	// RouteMisconfiguredError is returned when a gated route carries no
	// required-permission entry. Externally indistinguishable from a
	// policy denial; internally it is logged as a defect.
	RouteMisconfiguredError = NewSimple(403, "Missing permissions")

	UnauthorizedError        = NewSimple(401, "Missing or invalid credentials")
	InvalidAuthTokenError    = NewSimple(401, "Invalid authorization token")
	CredentialsMismatchError = NewSimple(400, "Credentials mismatch")
	ExistingUsernameError    = NewSimple(409, "Username already exists")
	AccountDisabledError     = NewSimple(403, "Missing access")

	GuestCreationError = NewSimple(403, "Guests may not create notes")

	InvalidMediaTypeError = NewSimple(415, "Unsupported media type")
	MissingMediaFileError = NewSimple(400, "Missing 'file' form field")
	EmptyNoteBodyError    = NewSimple(400, "Note body must not be empty")
)

func FromValidationError(err error) *StructuredError {
	resp := NewStructured(http.StatusBadRequest)

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		resp.Add("body", "Invalid value provided")
		return resp
	}

	for _, fe := range ve {
		field := strings.ToLower(fe.Field())

		switch fe.Tag() {
		case "required":
			resp.Add(field, "This field is required")
		case "min":
			resp.Add(field, "Value is too short, min: "+fe.Param())
		case "max":
			resp.Add(field, "Value is too long, max: "+fe.Param())
		case "oneof":
			resp.Add(field, "Value must be one of: "+fe.Param())
		case "unique":
			resp.Add(field, "Value must not contain duplicates")
		case "alias":
			resp.Add(field, "Aliases may only contain lowercase letters, digits and dashes")
		case "hasupper":
			resp.Add(field, "Value must have at least one uppercase character")
		case "haslower":
			resp.Add(field, "Value must have at least one lowercase character")
		case "hasdigit":
			resp.Add(field, "Value must have at least one number")

		default:
			resp.Add(field, "Invalid value provided")
		}
	}
	return resp
}

func NewSimple(status int, msg string, args ...any) *APIError {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return &APIError{Status: status, Message: msg}
}

func NewStructured(code int) *StructuredError {
	return &StructuredError{
		Errors: make(map[string][]string),
		Status: code,
	}
}

// NewPermissionError names the level the caller was missing.
func NewPermissionError(level string) *APIError {
	return NewSimple(http.StatusForbidden, "Missing required permission: %s", level)
}

func NewAliasLengthError(alias string, min, max int) *APIError {
	return NewSimple(http.StatusBadRequest, "Note aliases must be in range of [%d - %d], provided (%d): %s",
		min, max, len(alias), alias)
}

func NewInvalidParamTypeError(name, dataType string) *APIError {
	return NewSimple(http.StatusBadRequest, "Parameter '%s' has invalid type, expected: %s", name, dataType)
}

func NewMissingParamError(name string) *APIError {
	return NewSimple(http.StatusBadRequest, "Missing required parameter '%s'", name)
}
