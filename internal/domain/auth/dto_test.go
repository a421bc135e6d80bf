package auth

import (
	"testing"

	"github.com/cmlabs-hris/employee-directory/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentials_Validate(t *testing.T) {
	tests := []struct {
		name    string
		creds   Credentials
		wantMsg string
	}{
		{"valid", Credentials{Email: "admin@example.com", Password: "wrong"}, ""},
		{"missing password", Credentials{Email: "admin@example.com"}, "All fields are required"},
		{"missing email", Credentials{Password: "secret"}, "All fields are required"},
		{"bad email", Credentials{Email: "admin", Password: "secret"}, "email must be a valid email address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.creds.Validate()
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, tt.wantMsg, verrs.Messages())
		})
	}
}

func TestSession_Clone(t *testing.T) {
	s := Session{Token: "t", User: &User{ID: "1", Name: "Admin"}, IsAuthenticated: true}
	cp := s.Clone()
	cp.User.Name = "changed"
	assert.Equal(t, "Admin", s.User.Name)
}
