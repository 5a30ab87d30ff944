package plugin

import (
	"errors"
	"fmt"
)

// Validation failure reasons.
const (
	ReasonNoClass       = "Unable to determine the Plugin class"
	ReasonNoBasePath    = "Unable to determine the base path"
	ReasonInvalidHandle = "Invalid or missing plugin handle"
)

// ErrCorruptRegistry is returned when the registry file exists but cannot be
// parsed.
var ErrCorruptRegistry = errors.New("corrupt plugin registry")

// InvalidPluginError reports a plugin package whose metadata failed
// validation.
type InvalidPluginError struct {
	Package string
	Reason  string
}

func (e *InvalidPluginError) Error() string {
	return fmt.Sprintf("invalid plugin package %s: %s", e.Package, e.Reason)
}

// IsInvalidPlugin reports whether err is, or wraps, an *InvalidPluginError.
func IsInvalidPlugin(err error) bool {
	var invalid *InvalidPluginError
	return errors.As(err, &invalid)
}
