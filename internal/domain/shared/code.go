package shared

import (
	"regexp"
	"strings"
)

// MaxCodeLength is the longest accepted business code
const MaxCodeLength = 50

var codePattern = regexp.MustCompile(`^[A-Z0-9_-]+$`)

// NormalizeCode trims and uppercases a business code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateCode checks a normalized business code. field names the code in
// error messages.
func ValidateCode(field, code string) error {
	if code == "" {
		return InvalidInput(field + " code cannot be empty")
	}
	if len(code) > MaxCodeLength {
		return InvalidInput(field + " code cannot exceed 50 characters")
	}
	if !codePattern.MatchString(code) {
		return InvalidInput(field + " code can only contain letters, numbers, underscores, and hyphens")
	}
	return nil
}

// RequireName trims a display name and rejects blank or oversized values
func RequireName(field, name string, max int) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", InvalidInput(field + " name cannot be empty")
	}
	if len(name) > max {
		return "", InvalidInput(field + " name is too long")
	}
	return name, nil
}
