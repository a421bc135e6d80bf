package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/employee-directory/internal/domain/auth"
	"github.com/cmlabs-hris/employee-directory/internal/domain/employee"
	"github.com/cmlabs-hris/employee-directory/internal/pkg/backendtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestClient(t *testing.T, baseURL string, token string) *Client {
	t.Helper()
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	c, err := NewClient(baseURL, 5*time.Second)
	require.NoError(t, err)
	return c.WithTokenSource(ts)
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	_, err := NewClient("not a url", time.Second)
	assert.Error(t, err)
	_, err = NewClient("/relative/only", time.Second)
	assert.Error(t, err)
}

func TestClient_Login(t *testing.T) {
	srv := backendtest.New()
	defer srv.Close()
	c, err := NewClient(srv.URL, 5*time.Second)
	require.NoError(t, err)

	resp, err := c.Login(context.Background(), auth.Credentials{Email: backendtest.AdminEmail, Password: backendtest.AdminPassword})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "Admin User", resp.User.Name)

	_, err = c.Login(context.Background(), auth.Credentials{Email: backendtest.AdminEmail, Password: "wrong"})
	require.Error(t, err)
	assert.True(t, IsAuthFailure(err))
	assert.Equal(t, "Invalid credentials", Message(err, "fallback"))
}

func TestClient_EmployeeRoundTrip(t *testing.T) {
	ctx := context.Background()
	srv := backendtest.New()
	defer srv.Close()
	c := newTestClient(t, srv.URL, srv.IssueToken("1", time.Hour))

	created, err := c.CreateEmployee(ctx, employee.CreateEmployeeRequest{
		Name: "Jane Doe", Email: "jane@example.com", Position: "Engineer", Department: "IT", Salary: 42000,
		HireDate: "2023-04-01",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "2023-04-01", created.HireDate.String())

	got, err := c.GetEmployee(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	salary := 50000.0
	updated, err := c.UpdateEmployee(ctx, created.ID, employee.UpdateEmployeeRequest{Salary: &salary})
	require.NoError(t, err)
	assert.Equal(t, 50000.0, updated.Salary)
	assert.Equal(t, "Jane Doe", updated.Name)

	list, err := c.ListEmployees(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, list.TotalEmployees)
	require.Len(t, list.Employees, 1)

	require.NoError(t, c.DeleteEmployee(ctx, created.ID))

	err = c.DeleteEmployee(ctx, created.ID)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Employee not found", Message(err, "fallback"))
}

func TestClient_MissingTokenIsAuthFailure(t *testing.T) {
	srv := backendtest.New()
	defer srv.Close()
	c := newTestClient(t, srv.URL, "garbage-token")

	_, err := c.ListEmployees(context.Background(), 0)
	require.Error(t, err)
	assert.True(t, IsAuthFailure(err))
}

func TestClient_SendsBearerAndPage(t *testing.T) {
	var gotAuth, gotPage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPage = r.URL.Query().Get("page")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"employees":[{"_id":"abc","name":"Legacy"}],"totalEmployees":1,"currentPage":3,"totalPages":3}`))
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL+"/api", "tok-123")

	list, err := c.ListEmployees(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "3", gotPage)
	require.Len(t, list.Employees, 1)
	assert.Equal(t, "abc", list.Employees[0].ID)
	assert.Equal(t, 3, list.CurrentPage)
}

func TestClient_ErrorPayloadShapes(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"flat message", `{"message":"Employee not found"}`, "Employee not found"},
		{"nested error", `{"success":false,"error":{"code":"NOT_FOUND","message":"Gone"}}`, "Gone"},
		{"no message", `{}`, "fallback"},
		{"not json", `<html>oops</html>`, "fallback"},
		{"empty body", ``, "fallback"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()
			c := newTestClient(t, srv.URL, "tok")

			_, err := c.GetEmployee(context.Background(), "1")
			require.Error(t, err)
			assert.Equal(t, tc.want, Message(err, "fallback"))
			assert.False(t, IsAuthFailure(err))
		})
	}
}

func TestClient_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()
	c := newTestClient(t, url, "tok")

	_, err := c.GetEmployee(context.Background(), "1")
	require.Error(t, err)
	var netErr *NetworkError
	assert.ErrorAs(t, err, &netErr)
	assert.Equal(t, "Failed to fetch employee details", Message(err, "Failed to fetch employee details"))
}
