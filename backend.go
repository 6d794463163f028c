package camgrab

import (
	"time"

	"github.com/kevmo314/camgrab/pkg/formats"
)

// DeviceInfo is a device as reported by a Backend, before it is indexed.
type DeviceInfo struct {
	Name string
	Path string
	USB  *USBInfo
}

// Backend is the platform capture API.
type Backend interface {
	// Enumerate returns the devices of a category in host order.
	Enumerate(c Category) ([]DeviceInfo, error)
	// Open opens the video device at the given enumeration index. Errors
	// should wrap ErrDeviceNotFound or ErrDeviceBusy when the cause is known.
	Open(index int) (Driver, error)
}

// Driver is one open video device.
type Driver interface {
	// SetFrameSize requests a frame size and returns the size the device
	// actually accepted.
	SetFrameSize(width, height int) (int, int, error)
	// FrameSize returns the current negotiated frame size.
	FrameSize() (int, int)
	// MaxFrameSize returns the largest frame size the device supports.
	MaxFrameSize() (int, int, error)
	// SetFocus disables autofocus and sets an absolute focus value.
	SetFocus(value int) error
	Autofocus() (bool, error)
	// ReadFrame blocks for at most timeout until one frame is available.
	// A zero timeout leaves the wait to the driver.
	ReadFrame(timeout time.Duration) (*Frame, error)
	Close() error
}

// Frame is one captured frame in the device's native pixel format.
type Frame struct {
	Data   []byte
	Format formats.FourCC
	Width  int
	Height int
}
