// Package fakecam is an in-memory camgrab.Backend for tests.
package fakecam

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"sync"
	"time"

	"github.com/kevmo314/camgrab"
	"github.com/kevmo314/camgrab/pkg/formats"
)

// Camera describes one fake video device. Zero values give a 1920x1080 YUYV
// camera with autofocus enabled.
type Camera struct {
	Name string
	Path string

	MaxWidth  int
	MaxHeight int
	// Sizes switches the camera to a fixed list of frame sizes. A request
	// gets the largest size that fits in it, or the smallest size when none
	// does, the way Media Foundation and uvcvideo negotiate.
	Sizes []image.Point
	Format    formats.FourCC
	Autofocus bool

	OpenErr  error
	SizeErr  error
	FocusErr error
	ReadErr  error
	// NoAutofocus makes Autofocus fail as on devices without the control.
	NoAutofocus bool
}

// Backend serves a fixed set of fake devices and counts opens and closes.
type Backend struct {
	Video   []*Camera
	Audio   []camgrab.DeviceInfo
	EnumErr error

	mu     sync.Mutex
	opens  int
	closes int
}

func (b *Backend) Enumerate(c camgrab.Category) ([]camgrab.DeviceInfo, error) {
	if b.EnumErr != nil {
		return nil, b.EnumErr
	}
	if c == camgrab.Audio {
		return append([]camgrab.DeviceInfo(nil), b.Audio...), nil
	}
	infos := make([]camgrab.DeviceInfo, len(b.Video))
	for i, cam := range b.Video {
		infos[i] = camgrab.DeviceInfo{Name: cam.Name, Path: cam.Path}
	}
	return infos, nil
}

func (b *Backend) Open(index int) (camgrab.Driver, error) {
	if index < 0 || index >= len(b.Video) {
		return nil, fmt.Errorf("index %d of %d: %w", index, len(b.Video), camgrab.ErrDeviceNotFound)
	}
	cam := b.Video[index]
	if cam.OpenErr != nil {
		return nil, cam.OpenErr
	}
	b.mu.Lock()
	b.opens++
	b.mu.Unlock()

	d := &driver{backend: b, cam: cam, width: 640, height: 480, focus: camgrab.FocusAuto}
	d.width, d.height = d.clamp(d.width, d.height)
	return d, nil
}

// Opens returns how many devices were opened successfully.
func (b *Backend) Opens() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opens
}

// Closes returns how many opened devices were closed.
func (b *Backend) Closes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closes
}

type driver struct {
	backend *Backend
	cam     *Camera

	width, height int
	focus         int
	closed        bool
}

func (d *driver) max() (int, int) {
	if len(d.cam.Sizes) > 0 {
		best := d.cam.Sizes[0]
		for _, p := range d.cam.Sizes[1:] {
			if p.X*p.Y > best.X*best.Y {
				best = p
			}
		}
		return best.X, best.Y
	}
	w, h := d.cam.MaxWidth, d.cam.MaxHeight
	if w <= 0 {
		w = 1920
	}
	if h <= 0 {
		h = 1080
	}
	return w, h
}

// clamp mimics V4L2 drivers: sizes are limited to the supported range and
// widths are rounded down to an even number of pixels.
func (d *driver) clamp(w, h int) (int, int) {
	if len(d.cam.Sizes) > 0 {
		return d.nearest(w, h)
	}
	mw, mh := d.max()
	w = min(max(w, 2), mw) &^ 1
	h = min(max(h, 1), mh)
	return w, h
}

func (d *driver) nearest(w, h int) (int, int) {
	var fit, small image.Point
	for _, p := range d.cam.Sizes {
		if p.X <= w && p.Y <= h && p.X*p.Y > fit.X*fit.Y {
			fit = p
		}
		if small == (image.Point{}) || p.X*p.Y < small.X*small.Y {
			small = p
		}
	}
	if fit == (image.Point{}) {
		return small.X, small.Y
	}
	return fit.X, fit.Y
}

func (d *driver) SetFrameSize(width, height int) (int, int, error) {
	if d.closed {
		return 0, 0, errors.New("closed")
	}
	if d.cam.SizeErr != nil {
		return 0, 0, d.cam.SizeErr
	}
	d.width, d.height = d.clamp(width, height)
	return d.width, d.height, nil
}

func (d *driver) FrameSize() (int, int) { return d.width, d.height }

func (d *driver) MaxFrameSize() (int, int, error) {
	w, h := d.max()
	return w, h, nil
}

func (d *driver) SetFocus(value int) error {
	if d.cam.FocusErr != nil {
		return d.cam.FocusErr
	}
	d.focus = value
	d.cam.Autofocus = false
	return nil
}

func (d *driver) Autofocus() (bool, error) {
	if d.cam.NoAutofocus {
		return false, errors.New("control not supported")
	}
	return d.cam.Autofocus, nil
}

func (d *driver) ReadFrame(timeout time.Duration) (*camgrab.Frame, error) {
	if d.closed {
		return nil, errors.New("closed")
	}
	if d.cam.ReadErr != nil {
		return nil, d.cam.ReadErr
	}
	f := &camgrab.Frame{Format: d.cam.Format, Width: d.width, Height: d.height}
	switch f.Format {
	case formats.MJPG:
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, Pattern(d.width, d.height), nil); err != nil {
			return nil, err
		}
		f.Data = buf.Bytes()
	default:
		f.Format = formats.YUYV
		f.Data = yuyvPattern(d.width, d.height)
	}
	return f, nil
}

func (d *driver) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.backend.mu.Lock()
	d.backend.closes++
	d.backend.mu.Unlock()
	return nil
}

// Pattern returns a horizontal luma gradient of the given size.
func Pattern(width, height int) image.Image {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x * 255 / max(width-1, 1))})
		}
	}
	return img
}

func yuyvPattern(width, height int) []byte {
	data := make([]byte, width*height*2)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := (y*width + x) * 2
			data[i] = uint8(x * 255 / max(width-1, 1))
			data[i+1] = 128
		}
	}
	return data
}
