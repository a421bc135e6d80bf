package employee

import (
	"context"
)

type EmployeeService interface {
	FetchAll(ctx context.Context, page int) error
	FetchOne(ctx context.Context, id string) error
	Create(ctx context.Context, req CreateEmployeeRequest) error
	Update(ctx context.Context, id string, req UpdateEmployeeRequest) error
	Delete(ctx context.Context, id string) error

	ClearErrors()
	ClearCurrent()
	ResetCreateSuccess()
	ResetUpdateSuccess()
	ResetDeleteSuccess()

	Snapshot() State
	Subscribe() (<-chan State, func())
}
