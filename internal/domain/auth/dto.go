package auth

import "github.com/cmlabs-hris/employee-directory/internal/pkg/validator"

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *Credentials) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Email) || validator.IsEmpty(r.Password) {
		errs = append(errs, validator.ValidationError{
			Field:   "credentials",
			Message: "All fields are required",
		})
		return errs
	}
	if len(r.Email) > 254 {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email must not exceed 254 characters",
		})
	}
	if !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email must be a valid email address",
		})
	}
	if len(r.Password) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password must not exceed 255 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// LoginResponse is the body of POST /auth/login.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
