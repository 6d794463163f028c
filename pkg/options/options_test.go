package options

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kevmo314/camgrab/pkg/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, action, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, ActionCapture, action)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 0, cfg.Device)
	assert.Equal(t, "output", cfg.Output)
	assert.Equal(t, 640, cfg.Width)
	assert.Equal(t, 480, cfg.Height)
	assert.Equal(t, FocusAuto, cfg.Focus)
	assert.Equal(t, sink.FormatUnset, cfg.Format)
}

func TestParse(t *testing.T) {
	cfg, action, err := Parse(strings.Fields("/d 2 /W 320 /H 240 /o test /F BMP /f 125"))
	require.NoError(t, err)
	assert.Equal(t, ActionCapture, action)
	assert.Equal(t, 2, cfg.Device)
	assert.Equal(t, 320, cfg.Width)
	assert.Equal(t, 240, cfg.Height)
	assert.Equal(t, "test", cfg.Output)
	assert.Equal(t, sink.FormatBMP, cfg.Format)
	assert.Equal(t, 125, cfg.Focus)

	cfg, _, err = Parse(strings.Fields("/device 1 /width 800 /height 600 /output x /format png /focus -1"))
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Device)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 600, cfg.Height)
	assert.Equal(t, "x", cfg.Output)
	assert.Equal(t, sink.FormatPNG, cfg.Format)
	assert.Equal(t, FocusAuto, cfg.Focus)
}

func TestParseActions(t *testing.T) {
	tests := []struct {
		args string
		want Action
	}{
		{"/h", ActionHelp},
		{"/help /d 0", ActionHelp},
		{"/v", ActionVersion},
		{"/d 1 /version", ActionVersion},
		{"/l", ActionList},
		{"/list-device", ActionList},
		{"/A", ActionList},
		{"/list-audio /l", ActionList},
		{"/W 320", ActionCapture},
	}
	for _, tt := range tests {
		t.Run(tt.args, func(t *testing.T) {
			_, action, err := Parse(strings.Fields(tt.args))
			require.NoError(t, err)
			assert.Equal(t, tt.want, action)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		args string
		msg  string
	}{
		{"/focus 7", `"7" must be multiple of 5.`},
		{"/f 256", `"256" is not a valid focus.`},
		{"/f -5", `"-5" is not a valid focus.`},
		{"/f auto", `"auto" is not a valid focus.`},
		{"/d -1", `"-1" is not a valid device.`},
		{"/d 1x", `"1x" is not a valid device.`},
		{"/W 0", `"0" is not a valid width.`},
		{"/H -480", `"-480" is not a valid height.`},
		{"/F gif", `"gif" is unknown extension`},
		{"/d", "Invalid usage /h or /help to display help"},
		{"/o", "Invalid usage /h or /help to display help"},
		{"/x", "Invalid option /h or /help to display help"},
		{"-h", "Invalid option /h or /help to display help"},
		{"/focus 7 /h", `"7" must be multiple of 5.`},
	}
	for _, tt := range tests {
		t.Run(tt.args, func(t *testing.T) {
			_, _, err := Parse(strings.Fields(tt.args))
			require.Error(t, err)
			var ae *ArgumentError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, tt.msg, ae.Error())
		})
	}
}

func TestValidFocus(t *testing.T) {
	for f := -10; f <= 300; f++ {
		want := f == -1 || (f >= 0 && f <= 255 && f%5 == 0)
		assert.Equal(t, want, ValidFocus(f), "focus %d", f)
	}
}

func TestParseDebug(t *testing.T) {
	cfg, _, err := Parse([]string{"/D"})
	require.NoError(t, err)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "camgrab.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestParseConfigFile(t *testing.T) {
	path := writeConfig(t, `
device: 3
output: snapshot
format: png
focus: 40
width: 1280
height: 720
frame_timeout: 2s
jpeg_quality: 80
log_level: info
log_format: json
`)
	cfg, action, err := Parse([]string{"/c", path, "/W", "320"})
	require.NoError(t, err)
	assert.Equal(t, ActionCapture, action)
	assert.Equal(t, path, cfg.ConfigFile)
	assert.Equal(t, 3, cfg.Device)
	assert.Equal(t, "snapshot", cfg.Output)
	assert.Equal(t, sink.FormatPNG, cfg.Format)
	assert.Equal(t, 40, cfg.Focus)
	assert.Equal(t, 320, cfg.Width, "command line wins over the file")
	assert.Equal(t, 720, cfg.Height)
	assert.Equal(t, 2*time.Second, cfg.FrameTimeout)
	assert.Equal(t, 80, cfg.JPEGQuality)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)

	// The file is read after all options, wherever /config appears.
	cfg, _, err = Parse([]string{"/F", "bmp", "/config", path})
	require.NoError(t, err)
	assert.Equal(t, sink.FormatBMP, cfg.Format)
}

func TestParseConfigFileErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"focus", "focus: 7\n", `must be multiple of 5`},
		{"width", "width: 0\n", `"0" is not a valid width.`},
		{"format", "format: tiff\n", `"tiff" is unknown extension`},
		{"quality", "jpeg_quality: 101\n", `"101" is not a valid jpeg_quality.`},
		{"timeout", "frame_timeout: soon\n", "unmarshal yaml"},
		{"unknown key", "zoom: 3\n", "field zoom not found"},
		{"log format", "log_format: xml\n", `"xml" is not a valid log format.`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.body)
			_, _, err := Parse([]string{"/c", path})
			var ae *ArgumentError
			require.ErrorAs(t, err, &ae)
			assert.Contains(t, ae.Error(), tt.msg)
			assert.Contains(t, ae.Error(), "is not a valid config file")
		})
	}

	_, _, err := Parse([]string{"/c", filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestParseEmptyConfigFile(t *testing.T) {
	cfg, _, err := Parse([]string{"/c", writeConfig(t, "")})
	require.NoError(t, err)
	assert.Equal(t, 640, cfg.Width)
}

func TestUsageAndVersion(t *testing.T) {
	var buf bytes.Buffer
	PrintUsage(&buf)
	for _, opt := range []string{"/h|/help", "/d|/device", "/o|/output", "/f|/focus", "/F|/format",
		"/l|/list-device", "/A|/list-audio", "/W|/width", "/H|/height", "/c|/config", "/D|/debug", "/v|/version"} {
		assert.Contains(t, buf.String(), opt)
	}

	buf.Reset()
	PrintVersion(&buf)
	assert.Equal(t, "camgrab Version "+Version+"\n", buf.String())
}

func TestDump(t *testing.T) {
	var buf bytes.Buffer
	cfg := Default()
	cfg.Focus = 50
	cfg.Format = sink.FormatPNG
	cfg.Dump(&buf)
	out := buf.String()
	assert.Contains(t, out, "Device index : 0\n")
	assert.Contains(t, out, "Extension : .png\n")
	assert.Contains(t, out, "Focus : 50(Manual)\n")

	buf.Reset()
	cfg.ListVideo = true
	cfg.Dump(&buf)
	assert.Contains(t, buf.String(), "Force device list.")
	assert.NotContains(t, buf.String(), "Device index")
}
