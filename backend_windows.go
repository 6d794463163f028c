package camgrab

import (
	"errors"
	"fmt"

	"github.com/kevmo314/camgrab/pkg/logger"
	"golang.org/x/sys/windows"
)

type mfBackend struct {
	log *logger.Logger
}

// NewBackend returns the Media Foundation backend.
func NewBackend(log *logger.Logger) Backend {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &mfBackend{log: log}
}

func (b *mfBackend) Enumerate(c Category) ([]DeviceInfo, error) {
	sourceType, pathKey := &mfDevSourceAttributeSourceTypeVidcap, &mfDevSourceAttributeVidcapSymbolicLink
	switch c {
	case Video:
	case Audio:
		sourceType, pathKey = &mfDevSourceAttributeSourceTypeAudcap, &mfDevSourceAttributeAudcapEndpointID
	default:
		return nil, fmt.Errorf("unknown category %s", c)
	}

	activates, err := mfEnumDeviceSources(sourceType)
	if err != nil {
		return nil, err
	}
	infos := make([]DeviceInfo, len(activates))
	for i, a := range activates {
		if name, err := a.GetString(&mfDevSourceAttributeFriendlyName); err == nil {
			infos[i].Name = name
		} else {
			b.log.Debug("friendly name", "index", i, "err", err)
		}
		if path, err := a.GetString(pathKey); err == nil {
			infos[i].Path = path
		} else {
			b.log.Debug("device path", "index", i, "err", err)
		}
		a.Release()
	}
	return infos, nil
}

func (b *mfBackend) Open(index int) (Driver, error) {
	activates, err := mfEnumDeviceSources(&mfDevSourceAttributeSourceTypeVidcap)
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, a := range activates {
			a.Release()
		}
	}()
	if index < 0 || index >= len(activates) {
		return nil, fmt.Errorf("index %d of %d video devices: %w", index, len(activates), ErrDeviceNotFound)
	}
	d, err := openMF(activates[index], b.log.With("device", index))
	if err != nil {
		return nil, classifyHRESULT(err)
	}
	return d, nil
}

func classifyHRESULT(err error) error {
	var he *hresultError
	if !errors.As(err, &he) {
		return err
	}
	switch uint32(he.hr) {
	case hrSharingViolation, hrDeviceLocked:
		return fmt.Errorf("%w: %w", ErrDeviceBusy, err)
	case hrDeviceInvalid, uint32(windows.ERROR_FILE_NOT_FOUND) | 0x80070000:
		return fmt.Errorf("%w: %w", ErrDeviceNotFound, err)
	}
	return err
}
