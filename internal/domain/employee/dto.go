package employee

import (
	"github.com/cmlabs-hris/employee-directory/internal/pkg/validator"
)

type CreateEmployeeRequest struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Position   string  `json:"position"`
	Department string  `json:"department"`
	Salary     float64 `json:"salary"`
	IsActive   *bool   `json:"isActive,omitempty"`
	HireDate   string  `json:"hireDate,omitempty"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	required := []struct {
		field string
		value string
	}{
		{"name", r.Name},
		{"email", r.Email},
		{"position", r.Position},
		{"department", r.Department},
	}
	for _, f := range required {
		if validator.IsEmpty(f.value) {
			errs = append(errs, validator.ValidationError{
				Field:   f.field,
				Message: f.field + " is required",
			})
		}
	}

	if !validator.IsEmpty(r.Email) && !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email must be a valid email address",
		})
	}
	if r.Salary < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "salary",
			Message: "salary must not be negative",
		})
	}
	if r.HireDate != "" {
		if _, ok := validator.IsValidDate(r.HireDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "hireDate",
				Message: "hireDate must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// UpdateEmployeeRequest carries only the fields being changed; nil fields are
// left out of the PUT body.
type UpdateEmployeeRequest struct {
	Name       *string  `json:"name,omitempty"`
	Email      *string  `json:"email,omitempty"`
	Position   *string  `json:"position,omitempty"`
	Department *string  `json:"department,omitempty"`
	Salary     *float64 `json:"salary,omitempty"`
	IsActive   *bool    `json:"isActive,omitempty"`
	HireDate   *string  `json:"hireDate,omitempty"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name == nil && r.Email == nil && r.Position == nil && r.Department == nil &&
		r.Salary == nil && r.IsActive == nil && r.HireDate == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "body",
			Message: "at least one field must be provided",
		})
		return errs
	}

	blank := []struct {
		field string
		value *string
	}{
		{"name", r.Name},
		{"position", r.Position},
		{"department", r.Department},
	}
	for _, f := range blank {
		if f.value != nil && validator.IsEmpty(*f.value) {
			errs = append(errs, validator.ValidationError{
				Field:   f.field,
				Message: f.field + " must not be empty",
			})
		}
	}

	if r.Email != nil && !validator.IsValidEmail(*r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email must be a valid email address",
		})
	}
	if r.Salary != nil && *r.Salary < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "salary",
			Message: "salary must not be negative",
		})
	}
	if r.HireDate != nil {
		if _, ok := validator.IsValidDate(*r.HireDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "hireDate",
				Message: "hireDate must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ListEmployeesResponse is the body of GET /employees.
type ListEmployeesResponse struct {
	Employees      []Employee `json:"employees"`
	TotalEmployees int        `json:"totalEmployees"`
	CurrentPage    int        `json:"currentPage"`
	TotalPages     int        `json:"totalPages"`
}
