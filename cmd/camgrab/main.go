// Command camgrab lists local capture devices or grabs one frame from a video
// device and saves it as an image.
//
// Examples:
//
//	# List video devices with their maximum resolution.
//	camgrab /l
//
//	# Grab a 1280x720 frame from the second camera with manual focus.
//	camgrab /d 1 /W 1280 /H 720 /f 50 /o shot /F png
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/kevmo314/camgrab"
	"github.com/kevmo314/camgrab/pkg/logger"
	"github.com/kevmo314/camgrab/pkg/options"
	"github.com/kevmo314/camgrab/pkg/sink"
)

func main() {
	log.SetFlags(0)
	os.Exit(main0(os.Args[1:], os.Stdout, camgrab.NewBackend))
}

// main0 runs the command and returns the process exit code.
func main0(args []string, stdout io.Writer, newBackend func(*logger.Logger) camgrab.Backend) int {
	cfg, action, err := options.Parse(args)
	if err != nil {
		fmt.Fprintln(stdout, err)
		return -1
	}
	switch action {
	case options.ActionHelp:
		options.PrintUsage(stdout)
		return 0
	case options.ActionVersion:
		options.PrintVersion(stdout)
		return 0
	}

	l, err := logger.New(logger.LogConfig{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		log.Printf("logger: %v", err)
		l = logger.NewNopLogger()
	}
	defer l.Sync()

	if cfg.Debug {
		cfg.Dump(stdout)
	}
	l.Debug("starting", "action", action.String(), "config", cfg)

	dir := camgrab.NewDirectory(newBackend(l), l)
	if action == options.ActionList {
		return list(dir, cfg, stdout, l)
	}
	return capture(dir, cfg, stdout, l)
}

func list(dir *camgrab.Directory, cfg options.Config, w io.Writer, l *logger.Logger) int {
	if cfg.ListVideo {
		devices, err := dir.ListDevices(camgrab.Video)
		if err != nil {
			fmt.Fprintln(w, "Failed to list video devices.")
			l.Error("list video devices", "err", err)
			return -1
		}
		for _, dev := range devices {
			printVideoDevice(dir, dev, w, l)
		}
	}
	if cfg.ListAudio {
		devices, err := dir.ListDevices(camgrab.Audio)
		if err != nil {
			fmt.Fprintln(w, "Failed to list audio devices.")
			l.Error("list audio devices", "err", err)
			return -1
		}
		for _, dev := range devices {
			fmt.Fprintf(w, "== AUDIO DEVICE (id:%d) ==\n", dev.Index)
			fmt.Fprintf(w, " * Name: %s\n", dev.Name)
			fmt.Fprintf(w, " * Path: %s\n", dev.Path)
			fmt.Fprintln(w)
		}
	}
	return 0
}

// printVideoDevice prints one listing entry. The device is opened to probe
// its capabilities; failures are reported in the entry and do not stop the
// listing.
func printVideoDevice(dir *camgrab.Directory, dev camgrab.Device, w io.Writer, l *logger.Logger) {
	fmt.Fprintf(w, "== VIDEO DEVICE (id:%d) ==\n", dev.Index)
	fmt.Fprintf(w, " * Name: %s\n", dev.Name)
	fmt.Fprintf(w, " * Path: %s\n", dev.Path)
	if dev.USB != nil {
		fmt.Fprintf(w, " * USB: %s\n", dev.USB)
	}
	defer fmt.Fprintln(w)

	s, err := dir.Open(dev.Index)
	if err != nil {
		fmt.Fprintln(w, " * ERROR: Could not open camera")
		l.Warn("open for probe", "device", dev.Index, "err", err)
		return
	}
	defer s.Close()

	width, height, err := s.QueryMaxResolution()
	if err != nil {
		width, height = -1, -1
		l.Warn("query max resolution", "device", dev.Index, "err", err)
	}
	autofocus := -1
	if on, err := s.Autofocus(); err != nil {
		l.Debug("read autofocus", "device", dev.Index, "err", err)
	} else if on {
		autofocus = 1
	} else {
		autofocus = 0
	}

	fmt.Fprintf(w, " * Max width : %d\n", width)
	fmt.Fprintf(w, " * Max height : %d\n", height)
	fmt.Fprintf(w, " * Autofocus : %d\n", autofocus)
}

func capture(dir *camgrab.Directory, cfg options.Config, w io.Writer, l *logger.Logger) int {
	s, err := dir.Open(cfg.Device)
	if err != nil {
		fmt.Fprintln(w, "Failed to open camera.")
		l.Error("open camera", "device", cfg.Device, "err", err)
		return -1
	}
	defer s.Close()
	s.SetFrameTimeout(cfg.FrameTimeout)

	applied, err := s.Configure(camgrab.Settings{Width: cfg.Width, Height: cfg.Height, Focus: cfg.Focus})
	var errs camgrab.ConfigErrors
	if err != nil && !errors.As(err, &errs) {
		fmt.Fprintln(w, "Failed to configure camera.")
		l.Error("configure", "err", err)
		return -1
	}
	if e := errs.Field("width"); e != nil {
		fmt.Fprintf(w, "Failed to set Width to %d pixel\n", cfg.Width)
		l.Error("set width", "err", e)
	}
	if e := errs.Field("height"); e != nil {
		fmt.Fprintf(w, "Failed to set Height to %d pixel\n", cfg.Height)
		l.Error("set height", "err", e)
	}
	if cfg.Focus != options.FocusAuto {
		fmt.Fprintf(w, "Configure manual focus : %d\n", cfg.Focus)
		if e := errs.Field("focus"); e != nil {
			fmt.Fprintln(w, "Failed to configure manual focus")
			l.Error("set focus", "err", e)
		}
	}
	if len(errs) > 0 {
		return -1
	}
	if applied.Width != cfg.Width || applied.Height != cfg.Height {
		l.Warn("frame size adjusted by device", "requested", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
			"applied", fmt.Sprintf("%dx%d", applied.Width, applied.Height))
	}

	output := sink.Filename(cfg.Output, cfg.Format)
	l.Debug("output filename", "file", output)

	frame, err := s.ReadFrame()
	if err != nil {
		fmt.Fprintln(w, "Failed to read camera frame")
		l.Error("read frame", "err", err)
		return -1
	}
	img, err := frame.Image()
	if err != nil {
		fmt.Fprintf(w, "Failed to save camera frame to %s\n", output)
		l.Error("decode frame", "format", frame.Format.String(), "err", err)
		return -1
	}
	if _, err := sink.Write(img, cfg.Output, cfg.Format, sink.Options{JPEGQuality: cfg.JPEGQuality}); err != nil {
		fmt.Fprintf(w, "Failed to save camera frame to %s\n", output)
		l.Error("write frame", "err", err)
		return -1
	}

	fmt.Fprintf(w, "Camera frame save to %s\n", output)
	return 0
}
