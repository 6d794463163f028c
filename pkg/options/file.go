package options

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/kevmo314/camgrab/pkg/sink"
	"gopkg.in/yaml.v3"
)

// settings holds the options that were given explicitly. Nil fields keep the
// value of the layer below.
type settings struct {
	Device       *int           `yaml:"device"`
	Output       *string        `yaml:"output"`
	Format       *sink.Format   `yaml:"-"`
	Focus        *int           `yaml:"focus"`
	Width        *int           `yaml:"width"`
	Height       *int           `yaml:"height"`
	FrameTimeout *time.Duration `yaml:"frame_timeout"`
	JPEGQuality  *int           `yaml:"jpeg_quality"`
	LogLevel     *string        `yaml:"log_level"`
	LogFormat    *string        `yaml:"log_format"`

	RawFormat *string `yaml:"format"`
}

func (s *settings) apply(cfg *Config) {
	if s.Device != nil {
		cfg.Device = *s.Device
	}
	if s.Output != nil {
		cfg.Output = *s.Output
	}
	if s.Format != nil {
		cfg.Format = *s.Format
	}
	if s.Focus != nil {
		cfg.Focus = *s.Focus
	}
	if s.Width != nil {
		cfg.Width = *s.Width
	}
	if s.Height != nil {
		cfg.Height = *s.Height
	}
	if s.FrameTimeout != nil {
		cfg.FrameTimeout = *s.FrameTimeout
	}
	if s.JPEGQuality != nil {
		cfg.JPEGQuality = *s.JPEGQuality
	}
	if s.LogLevel != nil {
		cfg.LogLevel = *s.LogLevel
	}
	if s.LogFormat != nil {
		cfg.LogFormat = *s.LogFormat
	}
}

// loadFile reads a YAML defaults file. Unknown keys are rejected and every value
// is validated the same way as its command line counterpart.
func loadFile(path string) (*settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var s settings
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *settings) validate() error {
	ints := []struct {
		key   string
		v     *int
		valid func(int) error
	}{
		{"device", s.Device, validDevice},
		{"focus", s.Focus, validFocus},
		{"width", s.Width, validSize},
		{"height", s.Height, validSize},
		{"jpeg_quality", s.JPEGQuality, validQuality},
	}
	for _, f := range ints {
		if f.v == nil {
			continue
		}
		if err := checkInt(f.key, strconv.Itoa(*f.v), f.key, *f.v, f.valid); err != nil {
			return err
		}
	}

	if s.RawFormat != nil {
		f, err := formatOption("format", *s.RawFormat)
		if err != nil {
			return err
		}
		s.Format = &f
	}
	if s.Output != nil && *s.Output == "" {
		return invalid("output", "", "output")
	}
	if s.FrameTimeout != nil && *s.FrameTimeout <= 0 {
		return invalid("frame_timeout", s.FrameTimeout.String(), "frame timeout")
	}
	if s.LogLevel != nil {
		switch *s.LogLevel {
		case "debug", "info", "warn", "error":
		default:
			return invalid("log_level", *s.LogLevel, "log level")
		}
	}
	if s.LogFormat != nil && *s.LogFormat != "text" && *s.LogFormat != "json" {
		return invalid("log_format", *s.LogFormat, "log format")
	}
	return nil
}

func validQuality(v int) error {
	if v < 1 || v > 100 {
		return errOutOfRange
	}
	return nil
}
