// Package options parses the camgrab command line.
//
// Options use a leading slash (/d 0, /format png) and are case sensitive:
// /h prints help while /H sets the capture height.
package options

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kevmo314/camgrab/pkg/sink"
)

// Action is what the command should do after parsing.
type Action int

const (
	ActionCapture Action = iota
	ActionList
	ActionHelp
	ActionVersion
)

func (a Action) String() string {
	switch a {
	case ActionCapture:
		return "capture"
	case ActionList:
		return "list"
	case ActionHelp:
		return "help"
	case ActionVersion:
		return "version"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// FocusAuto leaves the device's autofocus untouched.
const FocusAuto = -1

// Config is the resolved configuration of one invocation.
type Config struct {
	Device int
	Output string
	Format sink.Format
	Focus  int
	Width  int
	Height int

	ListVideo bool
	ListAudio bool

	FrameTimeout time.Duration
	JPEGQuality  int
	LogLevel     string
	LogFormat    string
	Debug        bool
	ConfigFile   string
}

// Default returns the configuration used when no option is given.
func Default() Config {
	return Config{
		Device:       0,
		Output:       "output",
		Format:       sink.FormatUnset,
		Focus:        FocusAuto,
		Width:        640,
		Height:       480,
		FrameTimeout: 5 * time.Second,
		JPEGQuality:  sink.DefaultJPEGQuality,
		LogLevel:     "warn",
		LogFormat:    "text",
	}
}

// ArgumentError is a malformed or out of range option. Its message is meant to
// be shown to the user as is.
type ArgumentError struct {
	Option string
	Value  string
	msg    string
}

func (e *ArgumentError) Error() string { return e.msg }

var (
	errUsage = func(opt string) error {
		return &ArgumentError{Option: opt, msg: "Invalid usage /h or /help to display help"}
	}
	errOption = func(opt string) error {
		return &ArgumentError{Option: opt, msg: "Invalid option /h or /help to display help"}
	}
)

func invalid(opt, value, what string) error {
	return &ArgumentError{Option: opt, Value: value, msg: fmt.Sprintf("\"%s\" is not a valid %s.", value, what)}
}

// Parse parses args, not including the program name. Options are processed
// in order and the first error, /help or /version ends parsing. Values from a
// /config file fill in every option not given on the command line.
func Parse(args []string) (Config, Action, error) {
	var cli settings
	var configFile string
	cfg := Default()

	for n := 0; n < len(args); n++ {
		opt := args[n]
		switch opt {
		case "/h", "/help":
			return cfg, ActionHelp, nil
		case "/v", "/version":
			return cfg, ActionVersion, nil
		case "/l", "/list-device":
			cfg.ListVideo = true
			continue
		case "/A", "/list-audio":
			cfg.ListAudio = true
			continue
		case "/D", "/debug":
			cfg.Debug = true
			continue
		case "/d", "/device", "/o", "/output", "/f", "/focus", "/F", "/format",
			"/W", "/width", "/H", "/height", "/c", "/config":
		default:
			return cfg, ActionCapture, errOption(opt)
		}

		if n+1 >= len(args) {
			return cfg, ActionCapture, errUsage(opt)
		}
		n++
		value := args[n]

		var err error
		switch opt {
		case "/d", "/device":
			cli.Device, err = intOption(opt, value, "device", validDevice)
		case "/o", "/output":
			cli.Output = &value
		case "/f", "/focus":
			cli.Focus, err = intOption(opt, value, "focus", validFocus)
		case "/F", "/format":
			var f sink.Format
			if f, err = formatOption(opt, value); err == nil {
				cli.Format = &f
			}
		case "/W", "/width":
			cli.Width, err = intOption(opt, value, "width", validSize)
		case "/H", "/height":
			cli.Height, err = intOption(opt, value, "height", validSize)
		case "/c", "/config":
			configFile = value
		}
		if err != nil {
			return cfg, ActionCapture, err
		}
	}

	if configFile != "" {
		file, err := loadFile(configFile)
		if err != nil {
			return cfg, ActionCapture, &ArgumentError{Option: "/config", Value: configFile,
				msg: fmt.Sprintf("\"%s\" is not a valid config file: %v", configFile, err)}
		}
		file.apply(&cfg)
		cfg.ConfigFile = configFile
	}
	cli.apply(&cfg)

	if cfg.Debug {
		cfg.LogLevel = "debug"
	}

	action := ActionCapture
	if cfg.ListVideo || cfg.ListAudio {
		action = ActionList
	}
	return cfg, action, nil
}

// intOption parses a decimal value. Unlike atoi, trailing garbage and
// non-numeric values are rejected.
func intOption(opt, value, what string, valid func(int) error) (*int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return nil, invalid(opt, value, what)
	}
	if err := checkInt(opt, value, what, v, valid); err != nil {
		return nil, err
	}
	return &v, nil
}

func checkInt(opt, value, what string, v int, valid func(int) error) error {
	switch valid(v) {
	case nil:
		return nil
	case errNotMultiple:
		return &ArgumentError{Option: opt, Value: value, msg: fmt.Sprintf("\"%s\" must be multiple of 5.", value)}
	}
	return invalid(opt, value, what)
}

func formatOption(opt, value string) (sink.Format, error) {
	f, err := sink.ParseFormat(value)
	if err != nil {
		return f, &ArgumentError{Option: opt, Value: value, msg: fmt.Sprintf("\"%s\" is unknown extension", value)}
	}
	return f, nil
}

var (
	errOutOfRange  = errors.New("out of range")
	errNotMultiple = errors.New("not a multiple of 5")
)

func validDevice(v int) error {
	if v < 0 {
		return errOutOfRange
	}
	return nil
}

func validSize(v int) error {
	if v <= 0 {
		return errOutOfRange
	}
	return nil
}

// ValidFocus reports whether v is FocusAuto or a multiple of 5 in [0, 255].
func ValidFocus(v int) bool {
	return validFocus(v) == nil
}

func validFocus(v int) error {
	if v == FocusAuto {
		return nil
	}
	if v < 0 || v > 255 {
		return errOutOfRange
	}
	if v%5 != 0 {
		return errNotMultiple
	}
	return nil
}
