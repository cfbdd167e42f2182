package validate

import (
	"strings"
)

// Column widths of the users table.
const (
	maxName     = 16
	maxLastname = 80
	maxPassword = 32
	maxEmail    = 255
)

// Name checks a first name; returns the trimmed value and a client message
// when it is rejected.
func Name(s string) (string, string) {
	s = strings.TrimSpace(s)
	if len(s) > maxName {
		return "", "Name must be at most 16 characters"
	}
	return s, ""
}

func Lastname(s string) (string, string) {
	s = strings.TrimSpace(s)
	if len(s) > maxLastname {
		return "", "Lastname must be at most 80 characters"
	}
	return s, ""
}

func Password(s string) string {
	if len(s) > maxPassword {
		return "Password must be at most 32 characters"
	}
	return ""
}

func Email(s string) (string, string) {
	s = strings.TrimSpace(s)
	if len(s) > maxEmail {
		return "", "Email must be at most 255 characters"
	}
	if !strings.Contains(s, "@") {
		return "", "Email format is not valid"
	}
	return s, ""
}

// ID parses a positive path id.
func ID(s string) (int64, bool) {
	n, err := parseInt(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Text reads raw[key] as a trimmed string; ok reports whether the key was sent.
func Text(raw map[string]any, key string) (s string, ok bool) {
	v, ok := raw[key]
	if !ok {
		return "", false
	}
	return strings.TrimSpace(toString(v)), true
}
