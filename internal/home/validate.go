package home

import (
	"fmt"
	"regexp"
)

var instanceRegexp = regexp.MustCompile(`^[a-z0-9_-]{1,64}$`)

// ValidateInstanceName checks a daemon instance name used in lock files and
// log fields.
func ValidateInstanceName(name string) error {
	if !instanceRegexp.MatchString(name) {
		return fmt.Errorf("invalid instance name %q: must match ^[a-z0-9_-]{1,64}$", name)
	}
	return nil
}
