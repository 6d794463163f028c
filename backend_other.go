//go:build !linux && !windows

package camgrab

import (
	"fmt"
	"runtime"

	"github.com/kevmo314/camgrab/pkg/logger"
)

type unsupportedBackend struct{}

// NewBackend returns a backend whose operations all fail with ErrUnsupported.
func NewBackend(*logger.Logger) Backend {
	return unsupportedBackend{}
}

func (unsupportedBackend) Enumerate(Category) ([]DeviceInfo, error) {
	return nil, fmt.Errorf("%s: %w", runtime.GOOS, ErrUnsupported)
}

func (unsupportedBackend) Open(int) (Driver, error) {
	return nil, fmt.Errorf("%s: %w", runtime.GOOS, ErrUnsupported)
}
