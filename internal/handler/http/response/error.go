package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/cmlabs-hris/employee-directory/internal/domain/auth"
	"github.com/cmlabs-hris/employee-directory/internal/domain/employee"
	"github.com/cmlabs-hris/employee-directory/internal/pkg/apiclient"
	"github.com/cmlabs-hris/employee-directory/internal/pkg/validator"
)

// statusClientClosedRequest is the nginx convention for a caller that went away.
const statusClientClosedRequest = 499

// HandleErrorWithData maps domain errors to an HTTP response and attaches
// data, usually the store snapshot after the failure.
func HandleErrorWithData(w http.ResponseWriter, err error, data interface{}) {
	status, code, message, details := classify(err)
	Fail(w, status, code, message, details, data)
}

func classify(err error) (int, string, string, map[string]string) {
	message := err.Error()
	var opErr *employee.OperationError
	if errors.As(err, &opErr) {
		message = opErr.Message
	}

	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR", validationErrs.Messages(), validationErrs.ToMap()
	}

	switch {
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest, "CANCELED", "Request canceled", nil
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "TIMEOUT", "Backend did not answer in time", nil

	// Auth domain errors
	case errors.Is(err, auth.ErrNotAuthenticated):
		return http.StatusUnauthorized, "UNAUTHORIZED", "Not authenticated", nil
	case errors.Is(err, auth.ErrEmptyToken):
		return http.StatusBadGateway, "BAD_GATEWAY", auth.MsgLoginFailed, nil

	// Employee domain errors
	case errors.Is(err, employee.ErrInvalidID):
		return http.StatusBadRequest, "BAD_REQUEST", "Invalid employee id", nil
	}

	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		if opErr == nil {
			message = apiclient.Message(err, http.StatusText(apiErr.StatusCode))
		}
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized:
			return http.StatusUnauthorized, "UNAUTHORIZED", message, nil
		case apiErr.StatusCode == http.StatusForbidden:
			return http.StatusForbidden, "FORBIDDEN", message, nil
		case apiErr.StatusCode == http.StatusNotFound:
			return http.StatusNotFound, "NOT_FOUND", message, nil
		case apiErr.StatusCode == http.StatusConflict:
			return http.StatusConflict, "CONFLICT", message, nil
		case apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
			return http.StatusBadRequest, "BAD_REQUEST", message, nil
		default:
			return http.StatusBadGateway, "BACKEND_ERROR", message, nil
		}
	}

	var netErr *apiclient.NetworkError
	if errors.As(err, &netErr) {
		if opErr == nil {
			message = "No response from backend"
		}
		return http.StatusBadGateway, "BACKEND_UNAVAILABLE", message, nil
	}

	// Default
	if opErr == nil {
		message = "An unexpected error occurred"
	}
	return http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", message, nil
}
