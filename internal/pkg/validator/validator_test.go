package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"admin@example.com", "user.name+1@domain.co", "a@b.cd"}
	invalid := []string{"test@", "@example.com", "test@.com", "test@com", "test@domain", " ", ""}
	for _, email := range valid {
		if !IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = false, want true", email)
		}
	}
	for _, email := range invalid {
		if IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = true, want false", email)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2024-01-15", "2024-01-15T10:30:00Z", "2024-01-15T10:30:00+07:00"}
	invalid := []string{"15-01-2024", "2024/01/15", "", "yesterday"}
	for _, d := range valid {
		if _, ok := IsValidDate(d); !ok {
			t.Errorf("IsValidDate(%q) = false, want true", d)
		}
	}
	for _, d := range invalid {
		if _, ok := IsValidDate(d); ok {
			t.Errorf("IsValidDate(%q) = true, want false", d)
		}
	}
}

func TestIsValidPathSegment(t *testing.T) {
	cases := map[string]bool{
		"42":                   true,
		"65f1c0a2b3d4e5f60718": true,
		"":                     false,
		" ":                    false,
		"1/2":                  false,
		"7?x=1":                false,
	}
	for in, want := range cases {
		if got := IsValidPathSegment(in); got != want {
			t.Errorf("IsValidPathSegment(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestValidationErrors_Format(t *testing.T) {
	errs := ValidationErrors{
		{Field: "name", Message: "name is required"},
		{Field: "salary", Message: "salary must not be negative"},
	}

	if got := errs.Error(); got != "name: name is required; salary: salary must not be negative" {
		t.Errorf("Error() = %q", got)
	}
	if got := errs.Messages(); got != "name is required; salary must not be negative" {
		t.Errorf("Messages() = %q", got)
	}
	m := errs.ToMap()
	if m["salary"] != "salary must not be negative" || len(m) != 2 {
		t.Errorf("ToMap() = %v", m)
	}
}
