package camgrab

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kevmo314/camgrab/pkg/logger"
)

type linuxBackend struct {
	sysfs  string
	procfs string
	// usbDevices is replaced in tests.
	usbDevices func() (map[string]*USBInfo, error)
	log        *logger.Logger
}

// NewBackend returns the V4L2 and ALSA backend.
func NewBackend(log *logger.Logger) Backend {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &linuxBackend{sysfs: "/sys", procfs: "/proc", usbDevices: usbDevices, log: log}
}

func (b *linuxBackend) Enumerate(c Category) ([]DeviceInfo, error) {
	switch c {
	case Video:
		infos, dirs, err := listVideoNodes(b.sysfs)
		if err != nil {
			return nil, err
		}
		b.addUSBInfo(infos, dirs)
		return infos, nil
	case Audio:
		data, err := os.ReadFile(filepath.Join(b.procfs, "asound", "pcm"))
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return parseALSAPCM(data, b.log)
	}
	return nil, fmt.Errorf("unknown category %s", c)
}

func (b *linuxBackend) addUSBInfo(infos []DeviceInfo, dirs []string) {
	if len(infos) == 0 || b.usbDevices == nil {
		return
	}
	byPath, err := b.usbDevices()
	if err != nil {
		b.log.Debug("usb device list unavailable", "err", err)
		return
	}
	for i := range infos {
		if p := usbPath(dirs[i]); p != "" {
			infos[i].USB = byPath[p]
		}
	}
}

func (b *linuxBackend) Open(index int) (Driver, error) {
	infos, _, err := listVideoNodes(b.sysfs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeviceNotFound, err)
	}
	if index < 0 || index >= len(infos) {
		return nil, fmt.Errorf("index %d of %d video devices: %w", index, len(infos), ErrDeviceNotFound)
	}
	return openV4L2(infos[index].Path, b.log)
}
