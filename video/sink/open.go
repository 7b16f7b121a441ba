package sink

import (
	"github.com/pkg/errors"

	"camfwd/config"
	"camfwd/video/format"
)

// Open builds the sink selected by the configuration for frames of geometry
// g, which must be the geometry reported by the capture device. mjpeg is only
// used in MJPEG mode.
//
// When the underlying writer fails to open, Open returns a non-nil Sink that
// rejects every frame together with an error wrapping ErrSinkUnavailable, so
// the caller can choose between failing fast and running on.
func Open(c *config.Config, g format.Geometry, mjpeg *MJPEGServer) (Sink, error) {
	switch c.Sink.Mode {
	case config.ModeFile:
		opts := FileOptions{
			Path:     c.Sink.File.Path,
			Codec:    c.Codec(),
			Geometry: g,
			Color:    c.Sink.File.Color,
		}
		if c.Sink.File.Writer == config.WriterFFmpeg {
			return NewFFmpeg(opts)
		}
		return NewVideo(opts)

	case config.ModeStream:
		desc := format.NewDescription(g, c.Target())
		if c.Sink.Stream.Format != "" {
			desc.Format = c.Sink.Stream.Format
		}
		if c.Sink.Stream.Backend == config.StreamGst {
			return NewGstStream(desc)
		}
		return NewStream(desc)

	case config.ModeMJPEG:
		if mjpeg == nil {
			return nil, errors.New("mjpeg sink needs an MJPEG server")
		}
		ms, err := mjpeg.NewStream(DefaultMJPEGStream)
		if err != nil {
			return nil, err
		}
		return ms, nil
	}
	return nil, errors.Errorf("unknown sink mode %q", c.Sink.Mode)
}

// FilePath returns the output path of file sinks.
func FilePath(s Sink) (string, bool) {
	p, ok := s.(interface{ Path() string })
	if !ok {
		return "", false
	}
	return p.Path(), true
}
