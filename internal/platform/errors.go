package platform

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupported indicates a platform outside the supported set was requested.
var ErrUnsupported = errors.New("unsupported platform")

// UnsupportedError names the rejected value and the allowed set.
// It matches ErrUnsupported with errors.Is.
type UnsupportedError struct {
	Value   string
	Allowed []string
}

func (e *UnsupportedError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: platform cannot be empty (use: %s)", ErrUnsupported, strings.Join(e.Allowed, ", "))
	}
	return fmt.Sprintf("%s %q (use: %s)", ErrUnsupported, e.Value, strings.Join(e.Allowed, ", "))
}

// Is reports whether target is ErrUnsupported.
func (e *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupported
}
