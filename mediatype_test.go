package camgrab

import (
	"testing"

	"github.com/kevmo314/camgrab/pkg/formats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var h264 = formats.FourCC{'H', '2', '6', '4'}

var testTypes = []mediaType{
	{0, formats.YUY2, 640, 480},
	{1, formats.MJPG, 640, 480},
	{2, formats.YUY2, 320, 240},
	{3, formats.MJPG, 1280, 720},
	{4, formats.NV12, 1920, 1080},
	{5, h264, 3840, 2160},
	{6, formats.MJPG, 160, 120},
}

func TestChooseMediaType(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		want          uint32
	}{
		{"exact prefers mjpg", 640, 480, 1},
		{"rounds down", 800, 600, 1},
		{"width limits", 1280, 480, 1},
		{"largest", 10000, 10000, 4},
		{"small", 320, 240, 2},
		{"too small", 100, 100, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := chooseMediaType(testTypes, tt.width, tt.height)
			require.True(t, ok)
			assert.Equal(t, tt.want, got.index)
		})
	}

	_, ok := chooseMediaType([]mediaType{{0, h264, 640, 480}}, 640, 480)
	assert.False(t, ok)
}

func TestLargestMediaType(t *testing.T) {
	got, ok := largestMediaType(testTypes)
	require.True(t, ok)
	assert.Equal(t, 1920, got.width)
	assert.Equal(t, 1080, got.height)

	_, ok = largestMediaType(nil)
	assert.False(t, ok)
}
