package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/employee-directory/internal/domain/employee"
	"github.com/cmlabs-hris/employee-directory/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type EmployeeHandler interface {
	ListEmployees(w http.ResponseWriter, r *http.Request)
	GetEmployee(w http.ResponseWriter, r *http.Request)
	CreateEmployee(w http.ResponseWriter, r *http.Request)
	UpdateEmployee(w http.ResponseWriter, r *http.Request)
	DeleteEmployee(w http.ResponseWriter, r *http.Request)
	ClearCurrent(w http.ResponseWriter, r *http.Request)
	ClearErrors(w http.ResponseWriter, r *http.Request)
	Acknowledge(w http.ResponseWriter, r *http.Request)
	State(w http.ResponseWriter, r *http.Request)
}

type employeeHandlerImpl struct {
	employeeService employee.EmployeeService
}

func NewEmployeeHandler(employeeService employee.EmployeeService) EmployeeHandler {
	return &employeeHandlerImpl{
		employeeService: employeeService,
	}
}

// ListEmployees implements EmployeeHandler
func (h *employeeHandlerImpl) ListEmployees(w http.ResponseWriter, r *http.Request) {
	page := 0
	if p := r.URL.Query().Get("page"); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil || parsed < 1 {
			response.BadRequest(w, "Invalid page number", map[string]string{"page": "page must be a positive integer"})
			return
		}
		page = parsed
	}

	if err := h.employeeService.FetchAll(r.Context(), page); err != nil {
		response.HandleErrorWithData(w, err, h.employeeService.Snapshot().List)
		return
	}

	list := h.employeeService.Snapshot().List
	response.SuccessWithMeta(w, list, &response.Meta{
		Page:       list.CurrentPage,
		TotalItems: list.TotalCount,
		TotalPages: list.TotalPages,
	})
}

// GetEmployee implements EmployeeHandler
func (h *employeeHandlerImpl) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.employeeService.FetchOne(r.Context(), id); err != nil {
		response.HandleErrorWithData(w, err, h.employeeService.Snapshot().Current)
		return
	}

	response.Success(w, h.employeeService.Snapshot().Current)
}

// CreateEmployee implements EmployeeHandler
func (h *employeeHandlerImpl) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req employee.CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := h.employeeService.Create(r.Context(), req); err != nil {
		response.HandleErrorWithData(w, err, h.employeeService.Snapshot())
		return
	}

	response.Created(w, "Employee created successfully", h.employeeService.Snapshot())
}

// UpdateEmployee implements EmployeeHandler
func (h *employeeHandlerImpl) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req employee.UpdateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := h.employeeService.Update(r.Context(), id, req); err != nil {
		response.HandleErrorWithData(w, err, h.employeeService.Snapshot())
		return
	}

	response.SuccessWithMessage(w, "Employee updated successfully", h.employeeService.Snapshot())
}

// DeleteEmployee implements EmployeeHandler
func (h *employeeHandlerImpl) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.employeeService.Delete(r.Context(), id); err != nil {
		response.HandleErrorWithData(w, err, h.employeeService.Snapshot())
		return
	}

	response.SuccessWithMessage(w, "Employee deleted successfully", h.employeeService.Snapshot())
}

// ClearCurrent implements EmployeeHandler
func (h *employeeHandlerImpl) ClearCurrent(w http.ResponseWriter, r *http.Request) {
	h.employeeService.ClearCurrent()
	response.Success(w, h.employeeService.Snapshot())
}

// ClearErrors implements EmployeeHandler
func (h *employeeHandlerImpl) ClearErrors(w http.ResponseWriter, r *http.Request) {
	h.employeeService.ClearErrors()
	response.Success(w, h.employeeService.Snapshot())
}

// Acknowledge resets the success flag of a finished create, update or delete
// once the view has reacted to it.
func (h *employeeHandlerImpl) Acknowledge(w http.ResponseWriter, r *http.Request) {
	switch employee.Operation(chi.URLParam(r, "operation")) {
	case employee.OpCreate:
		h.employeeService.ResetCreateSuccess()
	case employee.OpUpdate:
		h.employeeService.ResetUpdateSuccess()
	case employee.OpDelete:
		h.employeeService.ResetDeleteSuccess()
	default:
		response.BadRequest(w, "Unknown operation", map[string]string{"operation": "must be one of create, update, delete"})
		return
	}
	response.Success(w, h.employeeService.Snapshot())
}

// State implements EmployeeHandler
func (h *employeeHandlerImpl) State(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.employeeService.Snapshot())
}
