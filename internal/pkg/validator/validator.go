package validator

import (
	"regexp"
	"strings"
	"time"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// Messages joins the messages without field prefixes, for inline display next to a form.
func (v ValidationErrors) Messages() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Message)
	}
	return strings.Join(msgs, "; ")
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Email validation
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// Date validation, accepts "YYYY-MM-DD" or a full RFC3339 timestamp.
func IsValidDate(dateStr string) (time.Time, bool) {
	if date, err := time.Parse("2006-01-02", dateStr); err == nil {
		return date, true
	}
	date, err := time.Parse(time.RFC3339, dateStr)
	return date, err == nil
}

// IsValidPathSegment reports whether s can be placed into a URL path as a single record id.
func IsValidPathSegment(s string) bool {
	return !IsEmpty(s) && !strings.ContainsAny(s, "/?#")
}
