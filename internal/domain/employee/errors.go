package employee

import "errors"

var ErrInvalidID = errors.New("invalid employee id")

// Fallback messages used when the backend does not explain a failure.
const (
	MsgFetchAllFailed = "Failed to fetch employees"
	MsgFetchOneFailed = "Failed to fetch employee details"
	MsgCreateFailed   = "Failed to create employee"
	MsgUpdateFailed   = "Failed to update employee"
	MsgDeleteFailed   = "Failed to delete employee"
)

// OperationError is returned by the store operations. Message is the exact
// string recorded in the store state.
type OperationError struct {
	Op      Operation
	Message string
	Err     error
}

func (e *OperationError) Error() string {
	return e.Message
}

func (e *OperationError) Unwrap() error {
	return e.Err
}
