package source

import (
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"camfwd/video/backend"
	"camfwd/video/format"
)

// writeClip records n black 64x48 frames at 10 fps.
func writeClip(t *testing.T, n int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.avi")
	vw, err := gocv.VideoWriterFile(path, "MJPG", 10, 64, 48, true)
	require.NoError(t, err)
	require.True(t, vw.IsOpened())

	m := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	defer m.Close()
	for i := 0; i < n; i++ {
		require.NoError(t, vw.Write(m))
	}
	require.NoError(t, vw.Close())
	return path
}

func openClip(t *testing.T, path string) *Device {
	t.Helper()
	cap, err := gocv.VideoCaptureFile(path)
	require.NoError(t, err)
	require.True(t, cap.IsOpened())
	opts := Options{Index: -1, Width: 1280, Height: 720, FPS: 30}
	return negotiate(cap, opts, log.WithField("device", path))
}

func TestOpenUnavailable(t *testing.T) {
	d, err := Open(Options{Index: 99, Backend: backend.Any, Width: 640, Height: 480, FPS: 10})
	require.Error(t, err)
	assert.Nil(t, d)
	assert.True(t, errors.Is(err, ErrDeviceUnavailable))
	assert.Contains(t, err.Error(), "Unable to open default camera")
}

func TestDeviceReportsNegotiatedGeometry(t *testing.T) {
	d := openClip(t, writeClip(t, 1))
	defer d.Close()

	assert.Equal(t, format.Geometry{Width: 64, Height: 48, FPS: 10}, d.Geometry())
}

func TestDeviceRead(t *testing.T) {
	d := openClip(t, writeClip(t, 3))
	f := NewFrame()
	defer f.Close()

	for i := 1; i <= 3; i++ {
		require.NoError(t, d.Read(f))
		require.False(t, f.Empty(), "frame %d", i)
		assert.Equal(t, uint64(i), f.Seq)
		assert.False(t, f.Time.IsZero())
	}

	// The capture stays open at end of file; the grab just comes back empty.
	require.NoError(t, d.Read(f))
	assert.True(t, f.Empty())

	require.NoError(t, d.Close())
	assert.Equal(t, ErrDeviceClosed, d.Read(f))
	assert.NoError(t, d.Close())
}
