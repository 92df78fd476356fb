// internal/discovery/udev/errors.go
package udev

import "errors"

// DiscoveryError reports a failed or canceled enumeration.
type DiscoveryError struct {
	Message  string
	Canceled bool
}

// NewDiscoveryError creates a non-canceled discovery error
func NewDiscoveryError(message string) *DiscoveryError {
	return &DiscoveryError{Message: message}
}

func (e *DiscoveryError) Error() string {
	return e.Message
}

// IsCanceled reports whether err is a DiscoveryError raised by cancellation
func IsCanceled(err error) bool {
	var de *DiscoveryError
	return errors.As(err, &de) && de.Canceled
}
