package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/employee-directory/internal/domain/auth"
	"github.com/cmlabs-hris/employee-directory/internal/domain/employee"
	"github.com/cmlabs-hris/employee-directory/internal/pkg/metrics"
	"golang.org/x/oauth2"
)

// maxErrorBody caps how much of a failed response is read looking for a message.
const maxErrorBody = 64 << 10

// Client talks to the employee REST backend. Public calls (login) go out bare;
// protected calls carry the bearer token supplied by the TokenSource.
type Client struct {
	baseURL   *url.URL
	public    *http.Client
	protected *http.Client
}

// NewClient builds a client for baseURL. Until WithTokenSource is used the
// protected calls go out without credentials.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q: scheme and host are required", baseURL)
	}

	public := &http.Client{Timeout: timeout}
	return &Client{
		baseURL:   u,
		public:    public,
		protected: public,
	}, nil
}

// WithTokenSource returns a copy whose protected calls carry a bearer token
// from tokens. The source is consulted on every request, so a login or logout
// takes effect immediately.
func (c *Client) WithTokenSource(tokens oauth2.TokenSource) *Client {
	return &Client{
		baseURL: c.baseURL,
		public:  c.public,
		protected: &http.Client{
			Timeout: c.public.Timeout,
			Transport: &oauth2.Transport{
				Source: tokens,
				Base:   http.DefaultTransport,
			},
		},
	}
}

func (c *Client) Login(ctx context.Context, creds auth.Credentials) (auth.LoginResponse, error) {
	var out auth.LoginResponse
	err := c.do(ctx, c.public, "login", http.MethodPost, "/auth/login", nil, creds, &out)
	return out, err
}

// ListEmployees fetches one page. page <= 0 leaves the page choice to the backend.
func (c *Client) ListEmployees(ctx context.Context, page int) (employee.ListEmployeesResponse, error) {
	var query url.Values
	if page > 0 {
		query = url.Values{"page": []string{strconv.Itoa(page)}}
	}
	var out employee.ListEmployeesResponse
	err := c.do(ctx, c.protected, string(employee.OpFetchAll), http.MethodGet, "/employees", query, nil, &out)
	if out.Employees == nil {
		out.Employees = []employee.Employee{}
	}
	return out, err
}

func (c *Client) GetEmployee(ctx context.Context, id string) (employee.Employee, error) {
	var out employee.Employee
	err := c.do(ctx, c.protected, string(employee.OpFetchOne), http.MethodGet, "/employees/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

func (c *Client) CreateEmployee(ctx context.Context, req employee.CreateEmployeeRequest) (employee.Employee, error) {
	var out employee.Employee
	err := c.do(ctx, c.protected, string(employee.OpCreate), http.MethodPost, "/employees", nil, req, &out)
	return out, err
}

func (c *Client) UpdateEmployee(ctx context.Context, id string, req employee.UpdateEmployeeRequest) (employee.Employee, error) {
	var out employee.Employee
	err := c.do(ctx, c.protected, string(employee.OpUpdate), http.MethodPut, "/employees/"+url.PathEscape(id), nil, req, &out)
	return out, err
}

func (c *Client) DeleteEmployee(ctx context.Context, id string) error {
	return c.do(ctx, c.protected, string(employee.OpDelete), http.MethodDelete, "/employees/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) do(ctx context.Context, hc *http.Client, op, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL.String() + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		metrics.ObserveBackendRequest(op, "error", time.Since(start))
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	metrics.ObserveBackendRequest(op, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}

// errorPayload covers both {"message": "..."} and {"error": {"message": "..."}}.
type errorPayload struct {
	Message string `json:"message"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload errorPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	if payload.Error != nil {
		return payload.Error.Message
	}
	return ""
}
