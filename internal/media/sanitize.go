package media

import "strings"

// Sanitize turns arbitrary text into a filesystem-safe slug: lower-case,
// spaces become hyphens, and anything outside [a-z0-9_.()-] is dropped.
func Sanitize(name string) string {
	name = strings.ToLower(strings.ReplaceAll(name, " ", "-"))
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case 'a' <= r && r <= 'z', '0' <= r && r <= '9':
			b.WriteRune(r)
		case r == '-', r == '_', r == '.', r == '(', r == ')':
			b.WriteRune(r)
		}
	}
	return b.String()
}
