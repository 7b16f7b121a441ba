package sink

import (
	"bufio"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"camfwd/config"
	"camfwd/video/backend"
	"camfwd/video/format"
	"camfwd/video/source"
)

var smallGeometry = format.Geometry{Width: 64, Height: 48, FPS: 10}

func testFrame(t *testing.T) *source.Frame {
	t.Helper()
	f := &source.Frame{
		Mat:  gocv.NewMatWithSize(smallGeometry.Height, smallGeometry.Width, gocv.MatTypeCV8UC3),
		Time: time.Unix(1700000000, 500000000),
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestFFmpegArgs(t *testing.T) {
	args := ffmpegArgs(FileOptions{
		Path:     "/tmp/out.mp4",
		Codec:    format.CodecH264,
		Geometry: format.Geometry{Width: 640, Height: 480, FPS: 10},
		Color:    false,
	})
	joined := strings.Join(args, " ")

	assert.Contains(t, joined, "-video_size 640x480")
	assert.Contains(t, joined, "-framerate 10")
	assert.Contains(t, joined, "-c:v libx264 -preset superfast")
	assert.Contains(t, joined, "-vf format=gray")
	assert.Equal(t, "/tmp/out.mp4", args[len(args)-1])

	args = ffmpegArgs(FileOptions{Path: "o.avi", Codec: format.CodecMJPG, Geometry: smallGeometry, Color: true})
	joined = strings.Join(args, " ")
	assert.Contains(t, joined, "-c:v mjpeg")
	assert.NotContains(t, joined, "-preset")
	assert.NotContains(t, joined, "format=gray")
}

func TestVideoUnopened(t *testing.T) {
	v, err := NewVideo(FileOptions{
		Path:     filepath.Join(t.TempDir(), "missing", "dir", "out.avi"),
		Codec:    format.CodecMJPG,
		Geometry: smallGeometry,
		Color:    true,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSinkUnavailable))
	assert.Contains(t, err.Error(), "videowriter is not open")
	require.NotNil(t, v)

	assert.Equal(t, ErrSinkNotOpen, v.Put(testFrame(t)))
	assert.NoError(t, v.Close())
	assert.NoError(t, v.Close())
}

func TestVideoWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.avi")
	v, err := NewVideo(FileOptions{Path: path, Codec: format.CodecMJPG, Geometry: smallGeometry, Color: true})
	require.NoError(t, err)

	f := testFrame(t)
	for i := 0; i < 10; i++ {
		require.NoError(t, v.Put(f))
	}
	require.NoError(t, v.Close())

	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, st.Size(), int64(0))

	p, ok := FilePath(v)
	assert.True(t, ok)
	assert.Equal(t, path, p)
}

func TestMJPEGStream(t *testing.T) {
	server := NewMJPEGServer()
	ms, err := server.NewStream(DefaultMJPEGStream)
	require.NoError(t, err)

	_, err = server.NewStream(DefaultMJPEGStream)
	require.Error(t, err)

	ts := httptest.NewServer(server)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/mjpeg?name=nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/mjpeg")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Contains(t, resp.Header.Get("Content-Type"), "multipart/x-mixed-replace")

	require.Eventually(t, func() bool { return ms.Clients() == 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, ms.Put(testFrame(t)))

	r := bufio.NewReader(resp.Body)
	var lines []string
	for len(lines) < 5 {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		lines = append(lines, strings.TrimSpace(line))
	}
	assert.Equal(t, "--"+boundaryWord, lines[1])
	assert.Equal(t, "Content-Type: image/jpeg", lines[2])
	assert.Equal(t, "X-Timestamp: 1700000000.500000", lines[4])

	require.NoError(t, ms.Close())
	assert.Nil(t, server.getStream(DefaultMJPEGStream))
}

func TestMJPEGPutWithoutClients(t *testing.T) {
	ms, err := NewMJPEGServer().NewStream("idle")
	require.NoError(t, err)
	assert.NoError(t, ms.Put(testFrame(t)))
	assert.Zero(t, ms.Clients())
}

func TestOpen(t *testing.T) {
	t.Run("mjpeg_without_server", func(t *testing.T) {
		c := config.Default()
		c.Sink.Mode = config.ModeMJPEG
		s, err := Open(c, smallGeometry, nil)
		require.Error(t, err)
		assert.Nil(t, s)
	})

	t.Run("mjpeg", func(t *testing.T) {
		c := config.Default()
		c.Sink.Mode = config.ModeMJPEG
		s, err := Open(c, smallGeometry, NewMJPEGServer())
		require.NoError(t, err)
		assert.IsType(t, &MJPEG{}, s)
		_, ok := FilePath(s)
		assert.False(t, ok)
	})

	t.Run("unknown", func(t *testing.T) {
		c := config.Default()
		c.Sink.Mode = "window"
		_, err := Open(c, smallGeometry, nil)
		require.Error(t, err)
	})

	t.Run("file_unopened", func(t *testing.T) {
		c := config.Default()
		c.Sink.Mode = config.ModeFile
		c.Sink.File.Path = filepath.Join(t.TempDir(), "no", "such", "dir.avi")
		c.Sink.File.Codec = "MJPG"
		s, err := Open(c, smallGeometry, nil)
		require.True(t, errors.Is(err, ErrSinkUnavailable))
		require.NotNil(t, s)
		assert.Equal(t, ErrSinkNotOpen, s.Put(testFrame(t)))
	})

	// The device negotiated smallGeometry although 1280x720@30 was requested.
	requested := func() *config.Config {
		c := config.Default()
		c.Device.Width, c.Device.Height, c.Device.FPS = 1280, 720, 30
		return c
	}

	t.Run("file_uses_device_geometry", func(t *testing.T) {
		c := requested()
		c.Sink.Mode = config.ModeFile
		c.Sink.File.Path = filepath.Join(t.TempDir(), "out.avi")
		c.Sink.File.Codec = "MJPG"
		s, err := Open(c, smallGeometry, nil)
		require.NoError(t, err)
		defer s.Close()
		require.IsType(t, &Video{}, s)
		assert.Equal(t, smallGeometry, s.(*Video).opts.Geometry)
	})

	t.Run("ffmpeg_uses_device_geometry", func(t *testing.T) {
		t.Setenv("FFMPEG", filepath.Join(t.TempDir(), "missing-ffmpeg"))
		c := requested()
		c.Sink.Mode = config.ModeFile
		c.Sink.File.Writer = config.WriterFFmpeg
		c.Sink.File.Path = filepath.Join(t.TempDir(), "out.mp4")
		s, err := Open(c, smallGeometry, nil)
		require.True(t, errors.Is(err, ErrSinkUnavailable))
		require.IsType(t, &FFmpeg{}, s)
		assert.Equal(t, smallGeometry, s.(*FFmpeg).opts.Geometry)
	})

	t.Run("stream_without_gstreamer_writer", func(t *testing.T) {
		old := available
		available = func() *backend.Registry {
			return backend.NewRegistry(backend.Backend{ID: backend.FFmpeg, Name: "FFMPEG", Mode: backend.Writer})
		}
		defer func() { available = old }()

		c := requested()
		c.Sink.Stream.Backend = config.StreamOpenCV
		s, err := Open(c, smallGeometry, nil)
		require.True(t, errors.Is(err, ErrSinkUnavailable))
		require.IsType(t, &Stream{}, s)
		st := s.(*Stream)
		assert.Equal(t, smallGeometry, st.desc.Geometry)
		assert.Equal(t, c.Target(), st.desc.Target)
		assert.Equal(t, ErrSinkNotOpen, s.Put(testFrame(t)))
	})

	t.Run("gst_bad_pipeline", func(t *testing.T) {
		c := requested()
		require.Equal(t, config.StreamGst, c.Sink.Stream.Backend)
		c.Sink.Stream.Format = "YV12 ! !"
		s, err := Open(c, smallGeometry, nil)
		require.True(t, errors.Is(err, ErrSinkUnavailable))
		require.IsType(t, &GstStream{}, s)
		assert.Equal(t, smallGeometry, s.(*GstStream).desc.Geometry)
		assert.Equal(t, ErrSinkNotOpen, s.Put(testFrame(t)))
		assert.NoError(t, s.Close())
	})
}
