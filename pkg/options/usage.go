package options

import (
	"fmt"
	"io"
)

// Name is the program name shown in help and version output.
const Name = "camgrab"

// Version is set at build time with -ldflags "-X ...options.Version=x.y.z".
var Version = "1.0.0"

// PrintUsage writes the option summary.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, "%s <option> <parameter>\n", Name)
	fmt.Fprintf(w, "options :\n")
	fmt.Fprintf(w, "\t[/h|/help]: Display this help.\n")
	fmt.Fprintf(w, "\t[/d|/device index]: Index of capture device.\n")
	fmt.Fprintf(w, "\t[/o|/output file]: File to save camera picture.\n")
	fmt.Fprintf(w, "\t[/f|/focus focus]: Set focus value (0 to 255, multiple of 5; -1 for autofocus).\n")
	fmt.Fprintf(w, "\t[/F|/format <bmp|jpg|png>]: Specify output format.\n")
	fmt.Fprintf(w, "\t[/l|/list-device]: List available video devices.\n")
	fmt.Fprintf(w, "\t[/A|/list-audio]: List available audio capture devices.\n")
	fmt.Fprintf(w, "\t[/W|/width width]: Width of capture device.\n")
	fmt.Fprintf(w, "\t[/H|/height height]: Height of capture device.\n")
	fmt.Fprintf(w, "\t[/c|/config file]: Read default values from a YAML file.\n")
	fmt.Fprintf(w, "\t[/D|/debug]: Print the configuration and debug logs.\n")
	fmt.Fprintf(w, "\t[/v|/version]: Display application version.\n")
}

// PrintVersion writes the version line.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "%s Version %s\n", Name, Version)
}

// Dump writes the resolved configuration in a human readable form.
func (c Config) Dump(w io.Writer) {
	fmt.Fprintf(w, "==== DEBUG ====\n\n")
	if c.ConfigFile != "" {
		fmt.Fprintf(w, "Config file : %s\n", c.ConfigFile)
	}
	if c.ListVideo || c.ListAudio {
		fmt.Fprintf(w, "Force device list.\n")
	} else {
		mode := "Manual"
		if c.Focus == FocusAuto {
			mode = "Autofocus"
		}
		fmt.Fprintf(w, "Device index : %d\n", c.Device)
		fmt.Fprintf(w, "Output file : %s\n", c.Output)
		fmt.Fprintf(w, "Extension : %s\n", c.Format.Extension())
		fmt.Fprintf(w, "Width : %d\n", c.Width)
		fmt.Fprintf(w, "Height : %d\n", c.Height)
		fmt.Fprintf(w, "Focus : %d(%s)\n", c.Focus, mode)
		fmt.Fprintf(w, "Frame timeout : %s\n", c.FrameTimeout)
		fmt.Fprintf(w, "JPEG quality : %d\n", c.JPEGQuality)
	}
	fmt.Fprintf(w, "==== END DEBUG ====\n\n")
}
