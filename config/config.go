package config

import (
	"time"

	"github.com/pkg/errors"

	"camfwd/video/backend"
	"camfwd/video/format"
)

const (
	ModeFile   = "file"
	ModeStream = "stream"
	ModeMJPEG  = "mjpeg"

	WriterOpenCV = "opencv"
	WriterFFmpeg = "ffmpeg"

	StreamOpenCV = "opencv"
	StreamGst    = "gst"

	OnOpenFailureFail     = "fail"
	OnOpenFailureContinue = "continue"

	MinDeviceIndex = -1
	MaxDeviceIndex = 99
)

type Device struct {
	// Index selects the camera; -1 lets the backend pick any device.
	Index   int
	Backend string
	Width   int
	Height  int
	FPS     int
}

type File struct {
	Path   string
	Codec  string
	Color  bool
	Writer string
}

type Stream struct {
	Host    string
	Port    int
	Format  string
	Backend string
}

type Sink struct {
	Mode string
	// DurationSec stops the loop after this many seconds. Zero runs until
	// interrupted.
	DurationSec   int
	OnOpenFailure string

	File   File
	Stream Stream
}

type Config struct {
	Device Device
	Sink   Sink

	// HTTPAddr hosts /metrics, /status, /statusws, /recordings and /mjpeg.
	// Empty disables the HTTP server.
	HTTPAddr string

	// CatalogDSN is a MySQL DSN for the recordings catalog. Empty disables it.
	CatalogDSN string

	// ExitOnConfigChange stops the loop cleanly when the config file changes.
	ExitOnConfigChange bool

	// DisableRecognition is accepted for compatibility and has no effect.
	DisableRecognition bool
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Device: Device{
			Index:   0,
			Backend: "ANY",
			Width:   640,
			Height:  480,
			FPS:     10,
		},
		Sink: Sink{
			Mode:          ModeStream,
			OnOpenFailure: OnOpenFailureFail,
			File: File{
				Path:   "video.mp4",
				Codec:  string(format.CodecMP4V),
				Color:  true,
				Writer: WriterOpenCV,
			},
			Stream: Stream{
				Host:    "192.168.86.108",
				Port:    5200,
				Format:  format.DefaultPixelFormat,
				Backend: StreamGst,
			},
		},
	}
}

// Duration returns the loop bound. File mode defaults to ten seconds.
func (c *Config) Duration() time.Duration {
	if c.Sink.DurationSec == 0 && c.Sink.Mode == ModeFile {
		return 10 * time.Second
	}
	return time.Duration(c.Sink.DurationSec) * time.Second
}

// BackendID resolves the configured capture backend.
func (c *Config) BackendID() backend.ID {
	id, _ := backend.Parse(c.Device.Backend)
	return id
}

// Codec resolves the configured file codec.
func (c *Config) Codec() format.Codec {
	codec, _ := format.ParseCodec(c.Sink.File.Codec)
	return codec
}

// Target returns the stream destination.
func (c *Config) Target() format.Target {
	return format.Target{Host: c.Sink.Stream.Host, Port: c.Sink.Stream.Port}
}

// ValidDeviceIndex reports whether i is an accepted device index.
func ValidDeviceIndex(i int) bool {
	return i >= MinDeviceIndex && i <= MaxDeviceIndex
}

func (c *Config) Validate() error {
	d := c.Device
	if !ValidDeviceIndex(d.Index) {
		return errors.Errorf("video device %d out of range [%d, %d]", d.Index, MinDeviceIndex, MaxDeviceIndex)
	}
	if d.Width <= 0 || d.Height <= 0 || d.FPS <= 0 {
		return errors.Errorf("device geometry must be positive, got %dx%d@%d", d.Width, d.Height, d.FPS)
	}
	if _, err := backend.Parse(d.Backend); err != nil {
		return err
	}

	s := c.Sink
	if s.DurationSec < 0 {
		return errors.Errorf("negative duration %d", s.DurationSec)
	}
	switch s.OnOpenFailure {
	case OnOpenFailureFail, OnOpenFailureContinue:
	default:
		return errors.Errorf("unknown sink open failure policy %q", s.OnOpenFailure)
	}

	switch s.Mode {
	case ModeFile:
		if s.File.Path == "" {
			return errors.New("file sink needs a path")
		}
		if _, err := format.ParseCodec(s.File.Codec); err != nil {
			return err
		}
		switch s.File.Writer {
		case WriterOpenCV, WriterFFmpeg:
		default:
			return errors.Errorf("unknown file writer %q", s.File.Writer)
		}
		// OpenCV's grayscale writer drops the 3-channel frames a camera hands us.
		if !s.File.Color && s.File.Writer != WriterFFmpeg {
			return errors.Errorf("grayscale output needs the %q writer", WriterFFmpeg)
		}
	case ModeStream:
		if s.Stream.Host == "" {
			return errors.New("stream sink needs a host")
		}
		if s.Stream.Port < 1 || s.Stream.Port > 65535 {
			return errors.Errorf("stream port %d out of range", s.Stream.Port)
		}
		switch s.Stream.Backend {
		case StreamOpenCV, StreamGst:
		default:
			return errors.Errorf("unknown stream backend %q", s.Stream.Backend)
		}
	case ModeMJPEG:
		if c.HTTPAddr == "" {
			return errors.New("mjpeg sink needs HTTPAddr")
		}
	default:
		return errors.Errorf("unknown sink mode %q", s.Mode)
	}
	return nil
}
