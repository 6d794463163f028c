package camgrab

import (
	"errors"
	"fmt"
	"time"

	"github.com/blackjack/webcam"
	"github.com/kevmo314/camgrab/pkg/formats"
	"github.com/kevmo314/camgrab/pkg/logger"
	"golang.org/x/sys/unix"
)

// V4L2 camera class control ids.
const (
	ctrlFocusAbsolute webcam.ControlID = 0x009a090a
	ctrlFocusAuto     webcam.ControlID = 0x009a090c
)

// probeSize is requested to discover the largest supported frame size. V4L2
// drivers clamp S_FMT requests to the nearest size they support.
const probeSize = 10000

type v4l2Driver struct {
	cam    *webcam.Webcam
	path   string
	format webcam.PixelFormat
	fourcc formats.FourCC
	log    *logger.Logger

	width, height int
}

func openV4L2(path string, log *logger.Logger) (d *v4l2Driver, rerr error) {
	cam, err := webcam.Open(path)
	if err != nil {
		return nil, classify(path, err)
	}
	defer func() {
		if rerr != nil {
			cam.Close()
		}
	}()

	pf, fourcc, ok := pickFormat(cam.GetSupportedFormats())
	if !ok {
		return nil, fmt.Errorf("%s: no supported pixel format", path)
	}
	d = &v4l2Driver{cam: cam, path: path, format: pf, fourcc: fourcc, log: log.With("path", path)}

	// Setting a format up front claims the device, so a camera in use by
	// another process fails here with EBUSY instead of at capture time.
	if _, _, err := d.SetFrameSize(640, 480); err != nil {
		return nil, classify(path, err)
	}
	d.log.Debug("opened", "format", fourcc.String(), "width", d.width, "height", d.height)
	return d, nil
}

// pickFormat returns the supported format that ranks best in
// formats.Preferred.
func pickFormat(supported map[webcam.PixelFormat]string) (webcam.PixelFormat, formats.FourCC, bool) {
	var (
		best     webcam.PixelFormat
		bestCC   formats.FourCC
		bestRank = -1
	)
	for pf := range supported {
		cc := formats.FromUint32(uint32(pf))
		r := formats.Rank(cc)
		if r < 0 {
			continue
		}
		if bestRank < 0 || r < bestRank {
			best, bestCC, bestRank = pf, cc, r
		}
	}
	return best, bestCC, bestRank >= 0
}

func classify(path string, err error) error {
	switch {
	case errors.Is(err, unix.EBUSY):
		return fmt.Errorf("%s: %w: %w", path, ErrDeviceBusy, err)
	case errors.Is(err, unix.ENOENT), errors.Is(err, unix.ENODEV), errors.Is(err, unix.ENXIO):
		return fmt.Errorf("%s: %w: %w", path, ErrDeviceNotFound, err)
	}
	return fmt.Errorf("%s: %w", path, err)
}

func (d *v4l2Driver) SetFrameSize(width, height int) (int, int, error) {
	if width <= 0 || height <= 0 {
		return d.width, d.height, fmt.Errorf("invalid frame size %dx%d", width, height)
	}
	pf, w, h, err := d.cam.SetImageFormat(d.format, uint32(width), uint32(height))
	if err != nil {
		return d.width, d.height, err
	}
	if pf != d.format {
		cc := formats.FromUint32(uint32(pf))
		if formats.Rank(cc) < 0 {
			return d.width, d.height, fmt.Errorf("driver switched to unsupported format %s", cc)
		}
		d.format, d.fourcc = pf, cc
	}
	d.width, d.height = int(w), int(h)
	return d.width, d.height, nil
}

func (d *v4l2Driver) FrameSize() (int, int) { return d.width, d.height }

func (d *v4l2Driver) MaxFrameSize() (int, int, error) {
	w, h := d.width, d.height
	mw, mh, err := d.SetFrameSize(probeSize, probeSize)
	if err != nil {
		return 0, 0, err
	}
	if _, _, err := d.SetFrameSize(w, h); err != nil {
		d.log.Warn("restore frame size after probe", "err", err)
	}
	return mw, mh, nil
}

func (d *v4l2Driver) SetFocus(value int) error {
	// Not every camera with manual focus exposes an auto focus switch.
	if err := d.cam.SetControl(ctrlFocusAuto, 0); err != nil {
		d.log.Debug("disable autofocus", "err", err)
	}
	return d.cam.SetControl(ctrlFocusAbsolute, int32(value))
}

func (d *v4l2Driver) Autofocus() (bool, error) {
	v, err := d.cam.GetControl(ctrlFocusAuto)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

func (d *v4l2Driver) ReadFrame(timeout time.Duration) (*Frame, error) {
	if err := d.cam.StartStreaming(); err != nil {
		return nil, classify(d.path, err)
	}
	defer func() {
		if err := d.cam.StopStreaming(); err != nil {
			d.log.Debug("stop streaming", "err", err)
		}
	}()

	deadline := time.Now().Add(timeout)
	for {
		err := d.cam.WaitForFrame(1)
		var te *webcam.Timeout
		switch {
		case errors.As(err, &te):
			if timeout > 0 && time.Now().After(deadline) {
				return nil, fmt.Errorf("no frame within %s", timeout)
			}
			continue
		case err != nil:
			return nil, err
		}

		data, err := copyFrame(d.cam, d.log)
		if err != nil {
			return nil, err
		}
		// Some drivers hand out empty buffers while the sensor starts up.
		if len(data) == 0 {
			if timeout > 0 && time.Now().After(deadline) {
				return nil, fmt.Errorf("no frame within %s", timeout)
			}
			continue
		}
		return &Frame{
			Data:   data,
			Format: d.fourcc,
			Width:  d.width,
			Height: d.height,
		}, nil
	}
}

// frameBuffers is the dequeue/requeue half of *webcam.Webcam.
type frameBuffers interface {
	GetFrame() ([]byte, uint32, error)
	ReleaseFrame(index uint32) error
}

// copyFrame dequeues one buffer and copies it out before the buffer is queued
// back to the driver, which may start filling it immediately.
func copyFrame(src frameBuffers, log *logger.Logger) ([]byte, error) {
	buf, index, err := src.GetFrame()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := src.ReleaseFrame(index); err != nil {
			log.Debug("release frame buffer", "index", index, "err", err)
		}
	}()
	if len(buf) == 0 {
		return nil, nil
	}
	return append([]byte(nil), buf...), nil
}

func (d *v4l2Driver) Close() error {
	return d.cam.Close()
}
