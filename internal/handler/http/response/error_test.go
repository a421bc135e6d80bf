package response

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/employee-directory/internal/domain/employee"
	"github.com/cmlabs-hris/employee-directory/internal/pkg/apiclient"
	"github.com/cmlabs-hris/employee-directory/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "validation",
			err:        validator.ValidationErrors{{Field: "name", Message: "name is required"}},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "VALIDATION_ERROR",
			wantMsg:    "name is required",
		},
		{
			name: "backend not found keeps the recorded message",
			err: &employee.OperationError{
				Op:      employee.OpDelete,
				Message: "Employee not found",
				Err:     &apiclient.APIError{StatusCode: 404, Message: "Employee not found"},
			},
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
			wantMsg:    "Employee not found",
		},
		{
			name: "backend 500 uses the fallback",
			err: &employee.OperationError{
				Op:      employee.OpFetchAll,
				Message: employee.MsgFetchAllFailed,
				Err:     &apiclient.APIError{StatusCode: 500},
			},
			wantStatus: http.StatusBadGateway,
			wantCode:   "BACKEND_ERROR",
			wantMsg:    employee.MsgFetchAllFailed,
		},
		{
			name:       "invalid id",
			err:        &employee.OperationError{Op: employee.OpFetchOne, Message: "bad id", Err: employee.ErrInvalidID},
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_REQUEST",
			wantMsg:    "Invalid employee id",
		},
		{
			name:       "login 401",
			err:        &apiclient.APIError{StatusCode: 401, Message: "Invalid credentials"},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHORIZED",
			wantMsg:    "Invalid credentials",
		},
		{
			name:       "network",
			err:        &apiclient.NetworkError{Op: "list_employees", Err: errors.New("connection refused")},
			wantStatus: http.StatusBadGateway,
			wantCode:   "BACKEND_UNAVAILABLE",
			wantMsg:    "No response from backend",
		},
		{
			name:       "canceled",
			err:        context.Canceled,
			wantStatus: 499,
			wantCode:   "CANCELED",
			wantMsg:    "Request canceled",
		},
		{
			name:       "unknown",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_SERVER_ERROR",
			wantMsg:    "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleErrorWithData(rec, tt.err, map[string]int{"n": 1})

			assert.Equal(t, tt.wantStatus, rec.Code)
			var resp struct {
				Success bool           `json:"success"`
				Data    map[string]int `json:"data"`
				Error   ErrorDetail    `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantMsg, resp.Error.Message)
			assert.Equal(t, 1, resp.Data["n"])
		})
	}
}
