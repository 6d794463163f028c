package camgrab

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/kevmo314/camgrab/pkg/decode"
	"github.com/kevmo314/camgrab/pkg/logger"
	"github.com/kevmo314/camgrab/pkg/sink"
)

// FocusAuto leaves focus under the device's automatic control.
const FocusAuto = -1

// DefaultFrameTimeout bounds ReadFrame unless SetFrameTimeout is called.
const DefaultFrameTimeout = 5 * time.Second

// Settings is a configuration request for a Session.
type Settings struct {
	Width  int
	Height int
	Focus  int
}

// Applied is the configuration the device accepted.
type Applied struct {
	Width  int
	Height int
	Focus  int
}

// Session is an open video device. It is not safe for concurrent use apart
// from Close.
type Session struct {
	index   int
	drv     Driver
	log     *logger.Logger
	timeout time.Duration

	width, height int
	focus         int

	closeOnce sync.Once
	closeErr  error
	closed    bool
}

// Index returns the enumeration index the session was opened with.
func (s *Session) Index() int { return s.index }

// SetFrameTimeout changes how long ReadFrame waits for a frame.
func (s *Session) SetFrameTimeout(d time.Duration) { s.timeout = d }

// Configure applies width, then height, then focus. Focus is only touched when
// it is not FocusAuto. Every step is attempted; failed steps are returned
// together as ConfigErrors. The returned Applied always holds the size the
// device reports after all steps.
func (s *Session) Configure(cfg Settings) (Applied, error) {
	if s.closed {
		return Applied{}, fmt.Errorf("%w: session closed", ErrConfiguration)
	}
	var errs ConfigErrors

	// Each step sends the requested pair. Drivers with discrete sizes round
	// a mixed pair like 1280x480 back down to the current size.
	width := cfg.Width
	if w, h, err := s.drv.SetFrameSize(cfg.Width, cfg.Height); err != nil {
		errs = append(errs, &ConfigError{Field: "width", Value: cfg.Width, Err: err})
		width = s.width
	} else {
		s.width, s.height = w, h
	}

	if w, h, err := s.drv.SetFrameSize(width, cfg.Height); err != nil {
		errs = append(errs, &ConfigError{Field: "height", Value: cfg.Height, Err: err})
	} else {
		s.width, s.height = w, h
	}

	if cfg.Focus != FocusAuto {
		if err := s.drv.SetFocus(cfg.Focus); err != nil {
			errs = append(errs, &ConfigError{Field: "focus", Value: cfg.Focus, Err: err})
		} else {
			s.focus = cfg.Focus
		}
	}

	applied := Applied{Width: s.width, Height: s.height, Focus: s.focus}
	s.log.Debug("configured", "requested", cfg, "applied", applied)
	if len(errs) > 0 {
		return applied, errs
	}
	return applied, nil
}

// ReadFrame captures exactly one frame.
func (s *Session) ReadFrame() (*Frame, error) {
	if s.closed {
		return nil, fmt.Errorf("%w: session closed", ErrCapture)
	}
	start := time.Now()
	f, err := s.drv.ReadFrame(s.timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCapture, err)
	}
	if f == nil || len(f.Data) == 0 {
		return nil, fmt.Errorf("%w: empty frame", ErrCapture)
	}
	s.log.Debug("frame read", "format", f.Format.String(), "bytes", len(f.Data),
		"width", f.Width, "height", f.Height, "elapsed", time.Since(start))
	return f, nil
}

// QueryMaxResolution reports the largest frame size the device supports. It
// does not change the session's configured size.
func (s *Session) QueryMaxResolution() (int, int, error) {
	if s.closed {
		return 0, 0, fmt.Errorf("%w: session closed", ErrConfiguration)
	}
	w, h, err := s.drv.MaxFrameSize()
	if err != nil {
		return 0, 0, fmt.Errorf("%w: query max resolution: %w", ErrConfiguration, err)
	}
	return w, h, nil
}

// Autofocus reports whether the device's automatic focus is enabled.
func (s *Session) Autofocus() (bool, error) {
	if s.closed {
		return false, fmt.Errorf("%w: session closed", ErrConfiguration)
	}
	on, err := s.drv.Autofocus()
	if err != nil {
		return false, fmt.Errorf("%w: read autofocus: %w", ErrConfiguration, err)
	}
	return on, nil
}

// Close releases the device. It is safe to call more than once and on a nil
// Session.
func (s *Session) Close() error {
	if s == nil || s.drv == nil {
		return nil
	}
	s.closeOnce.Do(func() {
		s.closed = true
		s.closeErr = s.drv.Close()
		s.log.Debug("closed", "err", s.closeErr)
	})
	return s.closeErr
}

// Image decodes the frame into an image. Errors wrap sink.ErrEncode.
func (f *Frame) Image() (image.Image, error) {
	img, err := decode.Decode(f.Format, f.Data, f.Width, f.Height)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", sink.ErrEncode, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: decoded frame is empty", sink.ErrEncode)
	}
	return img, nil
}
