package config

import (
	"fmt"
	"strings"
)

// MissingConfigurationError reports every required input that was absent,
// not just the first, so an operator can fix them in one pass.
type MissingConfigurationError struct {
	Keys []string
}

func (e *MissingConfigurationError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Keys, ", "))
}
