package camgrab_test

import (
	"errors"
	"image"
	"testing"

	"github.com/kevmo314/camgrab"
	"github.com/kevmo314/camgrab/pkg/decode"
	"github.com/kevmo314/camgrab/pkg/fakecam"
	"github.com/kevmo314/camgrab/pkg/formats"
	"github.com/kevmo314/camgrab/pkg/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T, cams ...*fakecam.Camera) (*fakecam.Backend, *camgrab.Session) {
	t.Helper()
	b := &fakecam.Backend{Video: cams}
	s, err := camgrab.NewDirectory(b, nil).Open(0)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return b, s
}

func TestConfigure(t *testing.T) {
	_, s := open(t, &fakecam.Camera{Autofocus: true})

	applied, err := s.Configure(camgrab.Settings{Width: 320, Height: 240, Focus: camgrab.FocusAuto})
	require.NoError(t, err)
	assert.Equal(t, camgrab.Applied{Width: 320, Height: 240, Focus: camgrab.FocusAuto}, applied)

	on, err := s.Autofocus()
	require.NoError(t, err)
	assert.True(t, on, "autofocus is left alone without a manual focus")

	applied, err = s.Configure(camgrab.Settings{Width: 320, Height: 240, Focus: 25})
	require.NoError(t, err)
	assert.Equal(t, 25, applied.Focus)

	on, err = s.Autofocus()
	require.NoError(t, err)
	assert.False(t, on)
}

func TestConfigureClamps(t *testing.T) {
	_, s := open(t, &fakecam.Camera{MaxWidth: 1280, MaxHeight: 720})

	applied, err := s.Configure(camgrab.Settings{Width: 4000, Height: 3000, Focus: camgrab.FocusAuto})
	require.NoError(t, err)
	assert.Equal(t, 1280, applied.Width)
	assert.Equal(t, 720, applied.Height)

	f, err := s.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, 1280, f.Width)
	assert.Equal(t, 720, f.Height)
}

func TestConfigureDiscreteSizes(t *testing.T) {
	_, s := open(t, &fakecam.Camera{
		Sizes: []image.Point{{640, 480}, {1280, 720}, {320, 240}},
	})

	tests := []struct {
		width, height int
		want          camgrab.Applied
	}{
		{1280, 720, camgrab.Applied{Width: 1280, Height: 720, Focus: camgrab.FocusAuto}},
		{320, 240, camgrab.Applied{Width: 320, Height: 240, Focus: camgrab.FocusAuto}},
		{1280, 720, camgrab.Applied{Width: 1280, Height: 720, Focus: camgrab.FocusAuto}},
		{1280, 600, camgrab.Applied{Width: 640, Height: 480, Focus: camgrab.FocusAuto}},
		{100, 100, camgrab.Applied{Width: 320, Height: 240, Focus: camgrab.FocusAuto}},
	}
	for _, tt := range tests {
		applied, err := s.Configure(camgrab.Settings{Width: tt.width, Height: tt.height, Focus: camgrab.FocusAuto})
		require.NoError(t, err)
		assert.Equal(t, tt.want, applied, "%dx%d", tt.width, tt.height)
	}
}

func TestConfigureCollectsErrors(t *testing.T) {
	_, s := open(t, &fakecam.Camera{
		SizeErr:  errors.New("EINVAL"),
		FocusErr: errors.New("no focus control"),
	})

	applied, err := s.Configure(camgrab.Settings{Width: 320, Height: 240, Focus: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, camgrab.ErrConfiguration)

	var errs camgrab.ConfigErrors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 3)
	assert.Equal(t, 320, errs.Field("width").Value)
	assert.Equal(t, 240, errs.Field("height").Value)
	assert.Equal(t, 10, errs.Field("focus").Value)
	assert.Nil(t, errs.Field("zoom"))

	// The session keeps the size it was opened with.
	assert.Equal(t, 640, applied.Width)
	assert.Equal(t, 480, applied.Height)
	assert.Equal(t, camgrab.FocusAuto, applied.Focus)
}

func TestReadFrame(t *testing.T) {
	_, s := open(t, &fakecam.Camera{})
	_, err := s.Configure(camgrab.Settings{Width: 64, Height: 48, Focus: camgrab.FocusAuto})
	require.NoError(t, err)

	f, err := s.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, formats.YUYV, f.Format)
	assert.Len(t, f.Data, 64*48*2)

	img, err := f.Image()
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 48, img.Bounds().Dy())
}

func TestReadFrameMJPEG(t *testing.T) {
	_, s := open(t, &fakecam.Camera{Format: formats.MJPG})
	f, err := s.ReadFrame()
	require.NoError(t, err)
	img, err := f.Image()
	require.NoError(t, err)
	assert.Equal(t, 640, img.Bounds().Dx())
}

func TestFrameImageUndecodable(t *testing.T) {
	f := &camgrab.Frame{Format: formats.FourCC{'H', '2', '6', '4'}, Data: []byte{0}, Width: 1, Height: 1}
	_, err := f.Image()
	assert.ErrorIs(t, err, sink.ErrEncode)
	assert.ErrorIs(t, err, decode.ErrUnsupportedFormat)

	f = &camgrab.Frame{Format: formats.YUYV, Data: []byte{0, 0}, Width: 4, Height: 2}
	_, err = f.Image()
	assert.ErrorIs(t, err, sink.ErrEncode)
	assert.ErrorIs(t, err, decode.ErrShortFrame)
}

func TestReadFrameError(t *testing.T) {
	_, s := open(t, &fakecam.Camera{ReadErr: errors.New("select timeout")})
	_, err := s.ReadFrame()
	assert.ErrorIs(t, err, camgrab.ErrCapture)
	assert.ErrorContains(t, err, "select timeout")
}

func TestQueryMaxResolution(t *testing.T) {
	_, s := open(t, &fakecam.Camera{MaxWidth: 2592, MaxHeight: 1944})
	w, h, err := s.QueryMaxResolution()
	require.NoError(t, err)
	assert.Equal(t, 2592, w)
	assert.Equal(t, 1944, h)

	f, err := s.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, 640, f.Width, "probing does not change the capture size")
}

func TestAutofocusUnsupported(t *testing.T) {
	_, s := open(t, &fakecam.Camera{NoAutofocus: true})
	_, err := s.Autofocus()
	assert.ErrorIs(t, err, camgrab.ErrConfiguration)
}

func TestCloseIdempotent(t *testing.T) {
	b, s := open(t, &fakecam.Camera{})
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, b.Opens())
	assert.Equal(t, 1, b.Closes())

	_, err := s.ReadFrame()
	assert.ErrorIs(t, err, camgrab.ErrCapture)
	_, err = s.Configure(camgrab.Settings{Width: 1, Height: 1, Focus: camgrab.FocusAuto})
	assert.ErrorIs(t, err, camgrab.ErrConfiguration)

	var nilSession *camgrab.Session
	assert.NoError(t, nilSession.Close())
}
