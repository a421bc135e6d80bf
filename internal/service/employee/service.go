package employee

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/cmlabs-hris/employee-directory/internal/domain/employee"
	"github.com/cmlabs-hris/employee-directory/internal/pkg/apiclient"
	"github.com/cmlabs-hris/employee-directory/internal/pkg/metrics"
	"github.com/cmlabs-hris/employee-directory/internal/pkg/sse"
	"github.com/cmlabs-hris/employee-directory/internal/pkg/validator"
)

// API is the slice of the backend client the store needs.
type API interface {
	ListEmployees(ctx context.Context, page int) (employee.ListEmployeesResponse, error)
	GetEmployee(ctx context.Context, id string) (employee.Employee, error)
	CreateEmployee(ctx context.Context, req employee.CreateEmployeeRequest) (employee.Employee, error)
	UpdateEmployee(ctx context.Context, id string, req employee.UpdateEmployeeRequest) (employee.Employee, error)
	DeleteEmployee(ctx context.Context, id string) error
}

// AuthFailureHandler is told when the backend rejects the session token.
type AuthFailureHandler interface {
	HandleAuthFailure(ctx context.Context)
}

const storeName = "employee"

// EmployeeServiceImpl caches the list page and the current record. Every
// change swaps in a new State; nothing is patched in place.
type EmployeeServiceImpl struct {
	api    API
	auth   AuthFailureHandler
	logger *slog.Logger

	mu      sync.Mutex
	state   employee.State
	pending map[employee.Operation]int

	hub *sse.Hub[employee.State]
}

var _ employee.EmployeeService = (*EmployeeServiceImpl)(nil)

// NewEmployeeService builds the store. authHandler may be nil.
func NewEmployeeService(api API, authHandler AuthFailureHandler, logger *slog.Logger) *EmployeeServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmployeeServiceImpl{
		api:     api,
		auth:    authHandler,
		logger:  logger.With(slog.String("store", storeName)),
		state:   employee.InitialState(),
		pending: make(map[employee.Operation]int),
		hub:     sse.NewHub[employee.State](),
	}
}

func (s *EmployeeServiceImpl) Snapshot() employee.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *EmployeeServiceImpl) Subscribe() (<-chan employee.State, func()) {
	return s.hub.Subscribe()
}

// FetchAll replaces the cached page. On failure the previous items stay.
func (s *EmployeeServiceImpl) FetchAll(ctx context.Context, page int) error {
	s.begin(employee.OpFetchAll, func(st *employee.State) {
		st.List.Error = ""
	})

	resp, err := s.api.ListEmployees(ctx, page)
	if cerr := s.canceled(ctx, employee.OpFetchAll); cerr != nil {
		return cerr
	}
	if err != nil {
		opErr := s.failure(ctx, employee.OpFetchAll, err, employee.MsgFetchAllFailed)
		s.finish(employee.OpFetchAll, func(st *employee.State) {
			st.List.Error = opErr.Message
		})
		return opErr
	}

	items := resp.Employees
	if items == nil {
		items = []employee.Employee{}
	}
	s.finish(employee.OpFetchAll, func(st *employee.State) {
		st.List.Items = items
		st.List.TotalCount = resp.TotalEmployees
		st.List.CurrentPage = resp.CurrentPage
		st.List.TotalPages = resp.TotalPages
	})
	metrics.ObserveOperation(storeName, string(employee.OpFetchAll), "success")
	return nil
}

// FetchOne loads a record into the current slot. Overlapping calls are not
// ordered: whichever response lands last is what the slot holds.
func (s *EmployeeServiceImpl) FetchOne(ctx context.Context, id string) error {
	if !validator.IsValidPathSegment(id) {
		return s.reject(employee.OpFetchOne, employee.ErrInvalidID, func(st *employee.State, msg string) {
			st.Current.Error = msg
		})
	}

	s.begin(employee.OpFetchOne, func(st *employee.State) {
		st.Current.Error = ""
	})

	rec, err := s.api.GetEmployee(ctx, id)
	if cerr := s.canceled(ctx, employee.OpFetchOne); cerr != nil {
		return cerr
	}
	if err != nil {
		opErr := s.failure(ctx, employee.OpFetchOne, err, employee.MsgFetchOneFailed)
		s.finish(employee.OpFetchOne, func(st *employee.State) {
			st.Current.Error = opErr.Message
		})
		return opErr
	}

	s.finish(employee.OpFetchOne, func(st *employee.State) {
		st.Current.Record = &rec
	})
	metrics.ObserveOperation(storeName, string(employee.OpFetchOne), "success")
	return nil
}

// Create posts a record and then refetches the list instead of inserting
// locally. Create.Success is set only after the refetch has settled.
func (s *EmployeeServiceImpl) Create(ctx context.Context, req employee.CreateEmployeeRequest) error {
	if err := req.Validate(); err != nil {
		return s.reject(employee.OpCreate, err, func(st *employee.State, msg string) {
			st.Create.Error = msg
			st.Create.Success = false
		})
	}

	s.begin(employee.OpCreate, func(st *employee.State) {
		st.Create.Error = ""
		st.Create.Success = false
	})

	created, err := s.api.CreateEmployee(ctx, req)
	if cerr := s.canceled(ctx, employee.OpCreate); cerr != nil {
		return cerr
	}
	if err != nil {
		opErr := s.failure(ctx, employee.OpCreate, err, employee.MsgCreateFailed)
		s.finish(employee.OpCreate, func(st *employee.State) {
			st.Create.Error = opErr.Message
			st.Create.Success = false
		})
		return opErr
	}
	s.logger.Debug("employee created", slog.String("employee_id", created.ID))

	// A failed refetch is recorded on the list slot; the create itself succeeded.
	// A canceled caller gets ctx.Err() and no success flag, like any other op.
	if err := s.FetchAll(ctx, 0); err != nil {
		s.logger.Warn("refetch after create failed", slog.String("error", err.Error()))
	}
	if cerr := s.canceled(ctx, employee.OpCreate); cerr != nil {
		return cerr
	}

	s.finish(employee.OpCreate, func(st *employee.State) {
		st.Create.Success = true
	})
	metrics.ObserveOperation(storeName, string(employee.OpCreate), "success")
	return nil
}

// Update replaces the current record with the server's copy. The cached list
// is left stale until the next FetchAll.
func (s *EmployeeServiceImpl) Update(ctx context.Context, id string, req employee.UpdateEmployeeRequest) error {
	err := req.Validate()
	if err == nil && !validator.IsValidPathSegment(id) {
		err = employee.ErrInvalidID
	}
	if err != nil {
		return s.reject(employee.OpUpdate, err, func(st *employee.State, msg string) {
			st.Update.Error = msg
			st.Update.Success = false
		})
	}

	s.begin(employee.OpUpdate, func(st *employee.State) {
		st.Update.Error = ""
		st.Update.Success = false
	})

	rec, err := s.api.UpdateEmployee(ctx, id, req)
	if cerr := s.canceled(ctx, employee.OpUpdate); cerr != nil {
		return cerr
	}
	if err != nil {
		opErr := s.failure(ctx, employee.OpUpdate, err, employee.MsgUpdateFailed)
		s.finish(employee.OpUpdate, func(st *employee.State) {
			st.Update.Error = opErr.Message
		})
		return opErr
	}

	s.finish(employee.OpUpdate, func(st *employee.State) {
		st.Current.Record = &rec
		st.Update.Success = true
	})
	metrics.ObserveOperation(storeName, string(employee.OpUpdate), "success")
	return nil
}

// Delete removes the record on the backend and clears the current slot. The
// cached list still contains the record until the next FetchAll.
func (s *EmployeeServiceImpl) Delete(ctx context.Context, id string) error {
	if !validator.IsValidPathSegment(id) {
		return s.reject(employee.OpDelete, employee.ErrInvalidID, func(st *employee.State, msg string) {
			st.Delete.Error = msg
			st.Delete.Success = false
		})
	}

	s.begin(employee.OpDelete, func(st *employee.State) {
		st.Delete.Error = ""
		st.Delete.Success = false
	})

	err := s.api.DeleteEmployee(ctx, id)
	if cerr := s.canceled(ctx, employee.OpDelete); cerr != nil {
		return cerr
	}
	if err != nil {
		opErr := s.failure(ctx, employee.OpDelete, err, employee.MsgDeleteFailed)
		s.finish(employee.OpDelete, func(st *employee.State) {
			st.Delete.Error = opErr.Message
		})
		return opErr
	}

	s.finish(employee.OpDelete, func(st *employee.State) {
		st.Current.Record = nil
		st.Delete.Success = true
	})
	metrics.ObserveOperation(storeName, string(employee.OpDelete), "success")
	return nil
}

func (s *EmployeeServiceImpl) ClearErrors() {
	s.transition(func(st *employee.State) {
		st.List.Error = ""
		st.Current.Error = ""
		st.Create.Error = ""
		st.Update.Error = ""
		st.Delete.Error = ""
	})
}

// ClearCurrent empties the detail slot; views call it when navigating away.
func (s *EmployeeServiceImpl) ClearCurrent() {
	s.transition(func(st *employee.State) {
		st.Current.Record = nil
	})
}

func (s *EmployeeServiceImpl) ResetCreateSuccess() {
	s.transition(func(st *employee.State) { st.Create.Success = false })
}

func (s *EmployeeServiceImpl) ResetUpdateSuccess() {
	s.transition(func(st *employee.State) { st.Update.Success = false })
}

func (s *EmployeeServiceImpl) ResetDeleteSuccess() {
	s.transition(func(st *employee.State) { st.Delete.Success = false })
}

// transition builds the next state from a copy of the current one, swaps it
// in and publishes it under the lock, so subscribers see transitions in order.
func (s *EmployeeServiceImpl) transition(fn func(st *employee.State)) {
	s.mu.Lock()
	next := s.state.Clone()
	fn(&next)
	s.syncLoading(&next)
	s.state = next
	s.hub.Publish(next.Clone())
	s.mu.Unlock()
}

func (s *EmployeeServiceImpl) begin(op employee.Operation, fn func(st *employee.State)) {
	metrics.IncPending(storeName, string(op))
	s.transition(func(st *employee.State) {
		s.pending[op]++
		fn(st)
	})
}

func (s *EmployeeServiceImpl) finish(op employee.Operation, fn func(st *employee.State)) {
	metrics.DecPending(storeName, string(op))
	s.transition(func(st *employee.State) {
		if s.pending[op] > 0 {
			s.pending[op]--
		}
		if fn != nil {
			fn(st)
		}
	})
}

// syncLoading derives every Loading flag from the pending counters. Must be
// called with s.mu held.
func (s *EmployeeServiceImpl) syncLoading(st *employee.State) {
	st.List.Loading = s.pending[employee.OpFetchAll] > 0
	st.Current.Loading = s.pending[employee.OpFetchOne] > 0
	st.Create.Loading = s.pending[employee.OpCreate] > 0
	st.Update.Loading = s.pending[employee.OpUpdate] > 0
	st.Delete.Loading = s.pending[employee.OpDelete] > 0
}

// canceled drops the response of an operation whose caller has gone away.
func (s *EmployeeServiceImpl) canceled(ctx context.Context, op employee.Operation) error {
	cerr := ctx.Err()
	if cerr == nil {
		return nil
	}
	s.finish(op, nil)
	s.logger.Debug("discarding response of canceled operation", slog.String("operation", string(op)))
	metrics.ObserveOperation(storeName, string(op), "canceled")
	return cerr
}

// failure turns a backend or network error into the message shown to the
// user and notifies the auth handler on 401/403.
func (s *EmployeeServiceImpl) failure(ctx context.Context, op employee.Operation, err error, fallback string) *employee.OperationError {
	msg := apiclient.Message(err, fallback)
	s.logger.Warn("operation failed",
		slog.String("operation", string(op)),
		slog.String("message", msg),
		slog.String("error", err.Error()),
	)
	metrics.ObserveOperation(storeName, string(op), "failure")

	if s.auth != nil && apiclient.IsAuthFailure(err) {
		s.auth.HandleAuthFailure(ctx)
	}
	return &employee.OperationError{Op: op, Message: msg, Err: err}
}

// reject records a client-side validation failure without calling the backend.
func (s *EmployeeServiceImpl) reject(op employee.Operation, err error, apply func(st *employee.State, msg string)) error {
	msg := err.Error()
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msg = verrs.Messages()
	}
	s.transition(func(st *employee.State) {
		apply(st, msg)
	})
	metrics.ObserveOperation(storeName, string(op), "invalid")
	return &employee.OperationError{Op: op, Message: msg, Err: err}
}
