package camgrab

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEnumeration    = errors.New("device enumeration failed")
	ErrDeviceOpen     = errors.New("failed to open device")
	ErrDeviceNotFound = errors.New("device not found")
	ErrDeviceBusy     = errors.New("device busy")
	ErrConfiguration  = errors.New("device configuration failed")
	ErrCapture        = errors.New("frame capture failed")
	ErrUnsupported    = errors.New("not supported on this platform")
)

// ConfigError reports one configuration step the device rejected.
type ConfigError struct {
	Field string
	Value int
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("set %s to %d: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() []error {
	return []error{ErrConfiguration, e.Err}
}

// ConfigErrors collects every failed step of one Configure call.
type ConfigErrors []*ConfigError

func (e ConfigErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

func (e ConfigErrors) Unwrap() []error {
	errs := make([]error, len(e))
	for i, err := range e {
		errs[i] = err
	}
	return errs
}

// Field returns the error for the named field, or nil.
func (e ConfigErrors) Field(name string) *ConfigError {
	for _, err := range e {
		if err.Field == name {
			return err
		}
	}
	return nil
}
