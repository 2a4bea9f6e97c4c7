// Package response defines the uniform JSON envelope used by the HTTP API.
package response

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var EmptyRequestBodyResponse = Response{
	Status:  StatusError,
	Error:   "Empty Request Body",
	Message: "Request body is empty. Please provide necessary data.",
}

var BadRequestResponse = Response{
	Status:  StatusError,
	Error:   "Bad Request",
	Message: "Request body is malformed or contains invalid data.",
}

var ResourceNotFoundResponse = Response{
	Status:  StatusError,
	Error:   "Resource Not Found",
	Message: "The requested resource was not found.",
}

var ServiceUnavailableResponse = Response{
	Status:  StatusError,
	Error:   "Service Unavailable",
	Message: "The service is temporarily unavailable. Please try again later.",
}

var ServerErrorResponse = Response{
	Status:  StatusError,
	Error:   "Server Error",
	Message: "An internal server error occurred. Please try again later.",
}

type Response struct {
	Status  string            `json:"status"`
	Error   string            `json:"error,omitempty"`
	Message string            `json:"message"`
	Details []validationError `json:"details,omitempty"`
	Data    any               `json:"data,omitempty"`
}

// SuccessResponse builds a success envelope with an optional data payload.
func SuccessResponse(msg string, data ...any) Response {
	resp := Response{
		Status:  StatusSuccess,
		Message: msg,
	}

	if len(data) > 0 && data[0] != nil {
		resp.Data = data[0]
	}

	return resp
}

// InvalidURLResponse builds an error envelope for a URL rejected by the
// shortening engine's validator. The concrete reason is surfaced to the caller.
func InvalidURLResponse(err error) Response {
	msg := "The provided URL is malformed or unsupported."
	if err != nil {
		msg = err.Error()
	}

	return Response{
		Status:  StatusError,
		Error:   "Invalid URL",
		Message: msg,
	}
}

// ValidationErrorResponse builds an error envelope with per-field details
// extracted from a validator error.
func ValidationErrorResponse(err error) Response {
	return Response{
		Status:  StatusError,
		Error:   "Validation Error",
		Message: "One or more request fields are invalid.",
		Details: getValidationErrors(err),
	}
}

type validationError struct {
	Field string `json:"field"`
	Value string `json:"value"`
	Issue string `json:"issue"`
}

func getValidationErrors(err error) []validationError {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}

	var details []validationError

	for _, err := range validationErrs {
		detail := validationError{
			Field: err.Field(),
			Value: fmt.Sprintf("%v", err.Value()),
		}

		switch err.Tag() {
		case "required":
			detail.Issue = "This field is required."
		case "url":
			detail.Issue = "Invalid url."
		case "max":
			detail.Issue = fmt.Sprintf("This field must not exceed %s characters.", err.Param())
		default:
			detail.Issue = "Invalid value."
		}

		details = append(details, detail)
	}

	return details
}
