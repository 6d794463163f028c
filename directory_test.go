package camgrab_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/kevmo314/camgrab"
	"github.com/kevmo314/camgrab/pkg/fakecam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListDevices(t *testing.T) {
	b := &fakecam.Backend{
		Video: []*fakecam.Camera{
			{Name: "Integrated Camera", Path: "/dev/video0"},
			{Name: "USB \xffCam", Path: "/dev/video2"},
		},
		Audio: []camgrab.DeviceInfo{{Name: "Mic", Path: "hw:0,0"}},
	}
	dir := camgrab.NewDirectory(b, nil)

	devices, err := dir.ListDevices(camgrab.Video)
	require.NoError(t, err)
	require.Len(t, devices, 2)
	for i, d := range devices {
		assert.Equal(t, i, d.Index)
		assert.Equal(t, camgrab.Video, d.Category)
	}
	assert.Equal(t, "Integrated Camera", devices[0].Name)
	assert.Equal(t, "USB �Cam", devices[1].Name)
	assert.Equal(t, "/dev/video2", devices[1].Path)

	audio, err := dir.ListDevices(camgrab.Audio)
	require.NoError(t, err)
	require.Len(t, audio, 1)
	assert.Equal(t, camgrab.Audio, audio[0].Category)
	assert.Equal(t, "hw:0,0", audio[0].Path)

	assert.Zero(t, b.Opens(), "listing must not open devices")
}

func TestListDevicesEmpty(t *testing.T) {
	devices, err := camgrab.NewDirectory(&fakecam.Backend{}, nil).ListDevices(camgrab.Video)
	require.NoError(t, err)
	assert.NotNil(t, devices)
	assert.Empty(t, devices)
}

func TestListDevicesError(t *testing.T) {
	b := &fakecam.Backend{EnumErr: errors.New("no COM")}
	_, err := camgrab.NewDirectory(b, nil).ListDevices(camgrab.Video)
	assert.ErrorIs(t, err, camgrab.ErrEnumeration)
	assert.ErrorContains(t, err, "no COM")
}

func TestOpenErrors(t *testing.T) {
	busy := fmt.Errorf("/dev/video0: %w", camgrab.ErrDeviceBusy)
	b := &fakecam.Backend{Video: []*fakecam.Camera{{Name: "cam", OpenErr: busy}}}
	dir := camgrab.NewDirectory(b, nil)

	tests := []struct {
		name  string
		index int
		want  error
	}{
		{"negative", -1, camgrab.ErrDeviceNotFound},
		{"out of range", 5, camgrab.ErrDeviceNotFound},
		{"busy", 0, camgrab.ErrDeviceBusy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := dir.Open(tt.index)
			assert.Nil(t, s)
			assert.ErrorIs(t, err, camgrab.ErrDeviceOpen)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.ErrorContains(t, func() error { _, err := dir.Open(0); return err }(), "/dev/video0")
	assert.Zero(t, b.Opens())
}
