// Package backendtest runs an in-process implementation of the employee REST
// contract for tests.
package backendtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cmlabs-hris/employee-directory/internal/domain/auth"
	"github.com/cmlabs-hris/employee-directory/internal/domain/employee"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	AdminEmail    = "admin@example.com"
	AdminPassword = "adminpass"

	DefaultPageSize = 10
	testSecret      = "backendtest-secret"
)

type account struct {
	user         auth.User
	passwordHash []byte
}

type Server struct {
	*httptest.Server

	PageSize int

	tokenAuth *jwtauth.JWTAuth
	tokenTTL  time.Duration
	requests  atomic.Int64

	mu        sync.Mutex
	accounts  map[string]account
	employees []employee.Employee
}

// New starts a backend seeded with the admin account. Callers must Close it.
func New() *Server {
	s := &Server{
		PageSize:  DefaultPageSize,
		tokenAuth: jwtauth.New("HS256", []byte(testSecret), nil),
		tokenTTL:  time.Hour,
		accounts:  map[string]account{},
	}
	s.AddAccount(auth.User{ID: "1", Name: "Admin User", Email: AdminEmail}, AdminPassword)
	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) AddAccount(u auth.User, password string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic("backendtest: failed to hash password: " + err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[u.Email] = account{user: u, passwordHash: hash}
}

// Seed appends records in order. Records without an id get a fresh one.
func (s *Server) Seed(records ...employee.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		s.employees = append(s.employees, r)
	}
}

func (s *Server) Employees() []employee.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]employee.Employee, len(s.employees))
	copy(out, s.employees)
	return out
}

// RequestCount is the number of requests served so far.
func (s *Server) RequestCount() int64 {
	return s.requests.Load()
}

// IssueToken mints a token the backend accepts, expiring after ttl.
func (s *Server) IssueToken(userID string, ttl time.Duration) string {
	_, token, err := s.tokenAuth.Encode(map[string]interface{}{
		"sub": userID,
		"exp": time.Now().Add(ttl).Unix(),
	})
	if err != nil {
		panic("backendtest: failed to issue token: " + err.Error())
	}
	return token
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.requests.Add(1)
			next.ServeHTTP(w, r)
		})
	})

	r.Post("/auth/login", s.login)

	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(s.tokenAuth))
		r.Use(authRequired)

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", s.list)
			r.Post("/", s.create)
			r.Get("/{id}", s.get)
			r.Put("/{id}", s.update)
			r.Delete("/{id}", s.delete)
		})
	})
	return r
}

func authRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, _, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			writeMessage(w, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds auth.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	s.mu.Lock()
	acc, ok := s.accounts[creds.Email]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(creds.Password)) != nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	writeJSON(w, http.StatusOK, auth.LoginResponse{
		Token: s.IssueToken(acc.user.ID, s.tokenTTL),
		User:  acc.user,
	})
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil || parsed < 1 {
			writeMessage(w, http.StatusBadRequest, "Invalid page number")
			return
		}
		page = parsed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	total := len(s.employees)
	totalPages := (total + s.PageSize - 1) / s.PageSize
	if totalPages == 0 {
		totalPages = 1
	}
	start := (page - 1) * s.PageSize
	end := start + s.PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	items := make([]employee.Employee, end-start)
	copy(items, s.employees[start:end])

	writeJSON(w, http.StatusOK, employee.ListEmployeesResponse{
		Employees:      items,
		TotalEmployees: total,
		CurrentPage:    page,
		TotalPages:     totalPages,
	})
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		writeJSON(w, http.StatusOK, s.employees[i])
		return
	}
	writeMessage(w, http.StatusNotFound, "Employee not found")
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var req employee.CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := req.Validate(); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	rec := employee.Employee{
		ID:         uuid.NewString(),
		Name:       req.Name,
		Email:      req.Email,
		Position:   req.Position,
		Department: req.Department,
		Salary:     req.Salary,
		IsActive:   true,
	}
	if req.IsActive != nil {
		rec.IsActive = *req.IsActive
	}
	if req.HireDate != "" {
		rec.HireDate, _ = employee.ParseDate(req.HireDate)
	}

	s.mu.Lock()
	for _, e := range s.employees {
		if e.Email == rec.Email {
			s.mu.Unlock()
			writeMessage(w, http.StatusBadRequest, "Employee with this email already exists")
			return
		}
	}
	s.employees = append(s.employees, rec)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req employee.UpdateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		writeMessage(w, http.StatusNotFound, "Employee not found")
		return
	}

	rec := s.employees[i]
	if req.Name != nil {
		rec.Name = *req.Name
	}
	if req.Email != nil {
		rec.Email = *req.Email
	}
	if req.Position != nil {
		rec.Position = *req.Position
	}
	if req.Department != nil {
		rec.Department = *req.Department
	}
	if req.Salary != nil {
		rec.Salary = *req.Salary
	}
	if req.IsActive != nil {
		rec.IsActive = *req.IsActive
	}
	if req.HireDate != nil {
		if d, err := employee.ParseDate(*req.HireDate); err == nil {
			rec.HireDate = d
		}
	}
	s.employees[i] = rec

	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		writeMessage(w, http.StatusNotFound, "Employee not found")
		return
	}
	s.employees = append(s.employees[:i], s.employees[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

// indexOf must be called with s.mu held.
func (s *Server) indexOf(id string) int {
	for i, e := range s.employees {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"message": message})
}
