// Package sink writes captured images to files.
package sink

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/disintegration/imaging"
)

var (
	// ErrEncode is returned when an image cannot be encoded.
	ErrEncode = errors.New("failed to encode image")
	// ErrWrite is returned when the encoded image cannot be written.
	ErrWrite = errors.New("failed to write image")
)

// Format selects the file encoding.
type Format int

const (
	// FormatUnset writes JPEG.
	FormatUnset Format = iota
	FormatBMP
	FormatJPEG
	FormatPNG
)

// DefaultJPEGQuality is used when Options.JPEGQuality is zero.
const DefaultJPEGQuality = 95

// ParseFormat parses bmp, jpg or png in any letter case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "bmp":
		return FormatBMP, nil
	case "jpg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	}
	return FormatUnset, fmt.Errorf("unknown format %q", s)
}

func (f Format) String() string {
	switch f {
	case FormatUnset:
		return "unset"
	case FormatBMP:
		return "bmp"
	case FormatJPEG:
		return "jpg"
	case FormatPNG:
		return "png"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// MarshalText encodes the format as its selector name.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatBMP:
		return ".bmp"
	case FormatPNG:
		return ".png"
	}
	return ".jpg"
}

func (f Format) imaging() imaging.Format {
	switch f {
	case FormatBMP:
		return imaging.BMP
	case FormatPNG:
		return imaging.PNG
	}
	return imaging.JPEG
}

// Filename appends the format's extension to base. The base name is used as
// given, so "photo.png" with an unset format becomes "photo.png.jpg".
func Filename(base string, f Format) string {
	return base + f.Extension()
}

// Options tunes encoding.
type Options struct {
	JPEGQuality int
}

// Write encodes img and writes it to base plus the format's extension. It
// returns the name of the written file.
func Write(img image.Image, base string, f Format, opts Options) (string, error) {
	name := Filename(base, f)
	if img == nil || img.Bounds().Empty() {
		return name, fmt.Errorf("%w: empty image", ErrEncode)
	}

	quality := opts.JPEGQuality
	if quality == 0 {
		quality = DefaultJPEGQuality
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, f.imaging(), imaging.JPEGQuality(quality)); err != nil {
		return name, fmt.Errorf("%w: %s: %w", ErrEncode, f, err)
	}
	if err := os.WriteFile(name, buf.Bytes(), 0o644); err != nil {
		return name, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return name, nil
}
