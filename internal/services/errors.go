package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for failure classification. Wrap tags errors with one of
// these so callers can branch on errors.Is without parsing messages.
var (
	// ErrValidation marks malformed input or an impermissible state
	// transition requested by a caller.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks lookups for unknown game or job identifiers.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks duplicate non-terminal jobs and lost terminal-state
	// races.
	ErrConflict = errors.New("conflict")
	// ErrUpstreamTimeout marks a collaborator call that exceeded its budget.
	ErrUpstreamTimeout = errors.New("upstream timeout")
	// ErrUpstreamSource marks a collaborator failure other than a timeout.
	ErrUpstreamSource = errors.New("upstream source error")
	// ErrInternal marks repository or other infrastructure failures.
	ErrInternal = errors.New("internal error")
)

// Wrap builds an error message that includes operation context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrInternal
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

// IsTerminalRace reports whether err represents a transition rejected because
// another writer reached a terminal state first.
func IsTerminalRace(err error) bool {
	return errors.Is(err, ErrConflict)
}
