package employee

import (
	"encoding/json"
	"strings"
	"time"
)

// Employee is the client-side copy of a backend record. The backend owns it;
// the directory only caches what it last fetched.
type Employee struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Position   string  `json:"position"`
	Department string  `json:"department"`
	Salary     float64 `json:"salary"`
	IsActive   bool    `json:"isActive"`
	HireDate   Date    `json:"hireDate"`
}

// UnmarshalJSON accepts the legacy "_id" key some backends emit instead of "id".
func (e *Employee) UnmarshalJSON(data []byte) error {
	type alias Employee
	aux := struct {
		*alias
		LegacyID string `json:"_id"`
	}{alias: (*alias)(e)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = aux.LegacyID
	}
	return nil
}

const dateLayout = "2006-01-02"

// Date is a calendar day. It encodes as "YYYY-MM-DD" and decodes either that
// form or a full RFC3339 timestamp.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date{Time: t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, err
	}
	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
