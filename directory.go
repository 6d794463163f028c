package camgrab

import (
	"fmt"
	"strings"

	"github.com/kevmo314/camgrab/pkg/logger"
)

// Directory lists devices and opens capture sessions through a Backend.
type Directory struct {
	backend Backend
	log     *logger.Logger
}

// NewDirectory returns a Directory over b. A nil log discards diagnostics.
func NewDirectory(b Backend, log *logger.Logger) *Directory {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Directory{backend: b, log: log}
}

// ListDevices enumerates the devices of a category. Indices run from 0 in
// host order. No devices yields an empty slice and a nil error.
func (d *Directory) ListDevices(c Category) ([]Device, error) {
	infos, err := d.backend.Enumerate(c)
	if err != nil {
		return nil, fmt.Errorf("%w: %s devices: %w", ErrEnumeration, c, err)
	}

	devices := make([]Device, 0, len(infos))
	for i, info := range infos {
		devices = append(devices, Device{
			Index:    i,
			Name:     strings.ToValidUTF8(info.Name, "�"),
			Path:     strings.ToValidUTF8(info.Path, "�"),
			Category: c,
			USB:      info.USB,
		})
	}
	d.log.Debug("enumerated devices", "category", c.String(), "count", len(devices))
	return devices, nil
}

// Open opens the video device at index. The returned Session must be closed.
func (d *Directory) Open(index int) (*Session, error) {
	if index < 0 {
		return nil, fmt.Errorf("%w: device %d: %w", ErrDeviceOpen, index, ErrDeviceNotFound)
	}
	drv, err := d.backend.Open(index)
	if err != nil {
		d.log.Debug("open failed", "device", index, "err", err)
		return nil, fmt.Errorf("%w: device %d: %w", ErrDeviceOpen, index, err)
	}
	s := &Session{
		index:   index,
		drv:     drv,
		log:     d.log.With("device", index),
		timeout: DefaultFrameTimeout,
		focus:   FocusAuto,
	}
	s.width, s.height = drv.FrameSize()
	return s, nil
}
