package backend

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(bs []Backend) []string {
	var out []string
	for _, b := range bs {
		out = append(out, b.Name)
	}
	return out
}

func TestRegistryLinux(t *testing.T) {
	r := For("linux")

	all := names(r.Backends())
	assert.Contains(t, all, "FFMPEG")
	assert.Contains(t, all, "V4L2")
	assert.NotContains(t, all, "DSHOW")
	assert.NotContains(t, all, "AVFOUNDATION")

	cams := names(r.CameraBackends())
	require.GreaterOrEqual(t, len(cams), 5)
	assert.Equal(t, []string{"GSTREAMER", "V4L2", "UEYE", "OBSENSOR", "ARAVIS"}, cams[:5])
	assert.NotContains(t, cams, "FFMPEG")
	assert.NotContains(t, cams, "WINRT")
}

func TestRegistryDarwin(t *testing.T) {
	cams := names(For("darwin").CameraBackends())
	require.GreaterOrEqual(t, len(cams), 2)
	assert.Equal(t, []string{"GSTREAMER", "AVFOUNDATION"}, cams[:2])
	assert.NotContains(t, cams, "V4L2")
	assert.NotContains(t, cams, "DSHOW")
}

func TestNewRegistry(t *testing.T) {
	bs := []Backend{
		{ID: FFmpeg, Name: "FFMPEG", Mode: CaptureByFilename},
		{ID: V4L2, Name: "V4L2", Mode: CaptureByIndex},
	}
	r := NewRegistry(bs...)
	bs[0].Name = "changed"
	assert.Equal(t, []string{"FFMPEG", "V4L2"}, names(r.Backends()))
	assert.Equal(t, []string{"V4L2"}, names(r.CameraBackends()))

	b, ok := r.Lookup(V4L2)
	require.True(t, ok)
	assert.Equal(t, "V4L2", b.Name)
	_, ok = r.Lookup(GStreamer)
	assert.False(t, ok)
}

func TestBackendsReturnsCopy(t *testing.T) {
	r := For("linux")
	bs := r.Backends()
	bs[0].Name = "changed"
	assert.Equal(t, "FFMPEG", r.Backends()[0].Name)
}

func TestParseAndName(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want ID
	}{
		{"", Any},
		{"any", Any},
		{"v4l", V4L2},
		{"V4L2", V4L2},
		{"gstreamer", GStreamer},
		{" ueye ", UEye},
		{"openni2_astra", OpenNI2Astra},
	} {
		t.Run(tc.in, func(t *testing.T) {
			id, err := Parse(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, id)
		})
	}

	_, err := Parse("quicktime")
	require.Error(t, err)

	assert.Equal(t, "ANY", Name(Any))
	assert.Equal(t, "UEYE", UEye.String())
	assert.Equal(t, "UNKNOWN(42)", Name(42))
}

func TestList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, List(&buf, "All Backends", []Backend{
		{ID: FFmpeg, Name: "FFMPEG"},
		{ID: V4L2, Name: "V4L2"},
	}))
	assert.Equal(t, "All Backends\n----------\n\tFFMPEG\n\tV4L2\n\n", buf.String())
}
