package session

import (
	"fmt"
	"regexp"
)

// Session names become directory names under the base dir, so the charset
// is restricted to what is safe on every filesystem.
var validName = regexp.MustCompile(`^[a-z0-9_-]{1,64}$`)

// ValidateName checks that name is usable as a session name.
func ValidateName(name string) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("invalid session name %q: lowercase letters, digits, _ and - only, max 64 chars", name)
	}
	return nil
}
