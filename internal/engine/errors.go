package engine

import "fmt"

// ConfigurationError is returned at construction time for caller errors:
// unknown compliance standard, malformed custom rule, duplicate rule id.
// It is never produced mid-scan.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid scanner configuration: %s: %s", e.Field, e.Reason)
}

func configErrorf(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
