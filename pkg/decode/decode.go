// Package decode converts single frames in a device's native pixel format into
// image.Image values.
package decode

import (
	"errors"
	"fmt"
	"image"

	"github.com/kevmo314/camgrab/pkg/formats"
)

var (
	// ErrUnsupportedFormat is returned for pixel formats without a decoder.
	ErrUnsupportedFormat = errors.New("unsupported pixel format")
	// ErrShortFrame is returned when a frame holds fewer bytes than its
	// format and size require.
	ErrShortFrame = errors.New("frame data too short")
)

// Decode decodes one frame of the given format and size. MJPG frames carry
// their own dimensions; width and height are only used for raw formats.
func Decode(f formats.FourCC, data []byte, width, height int) (image.Image, error) {
	switch formats.Canonical(f) {
	case formats.MJPG:
		return DecodeMJPEG(data)
	case formats.YUYV:
		return decodeYUYV(data, width, height)
	case formats.NV12:
		return decodeNV12(data, width, height)
	case formats.I420:
		return decodeI420(data, width, height)
	case formats.RGB3, formats.BGR3:
		return decodeRGB24(f, data, width, height)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
}

func checkSize(f formats.FourCC, data []byte, width, height, want int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid %s frame size %dx%d", f, width, height)
	}
	if len(data) < want {
		return fmt.Errorf("%w: %s %dx%d needs %d bytes, got %d", ErrShortFrame, f, width, height, want, len(data))
	}
	return nil
}

func decodeRGB24(f formats.FourCC, data []byte, width, height int) (image.Image, error) {
	if err := checkSize(f, data, width, height, width*height*3); err != nil {
		return nil, err
	}
	pix := make([]uint8, width*height*3)
	copy(pix, data)
	return &RGB24{
		Pix:    pix,
		Stride: width * 3,
		Rect:   image.Rect(0, 0, width, height),
		BGR:    f == formats.BGR3,
	}, nil
}
