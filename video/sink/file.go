package sink

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"camfwd/video/format"
)

type FileOptions struct {
	Path     string
	Codec    format.Codec
	Geometry format.Geometry
	// Color selects three channel frames; false writes grayscale.
	Color bool
}

// Video writes frames to a local container file through OpenCV.
type Video struct {
	writer
	opts FileOptions
}

// NewVideo opens a container writer. When the writer cannot be opened the
// returned Video is still usable as a Sink whose Put fails with
// ErrSinkNotOpen, and the error wraps ErrSinkUnavailable.
func NewVideo(opts FileOptions) (*Video, error) {
	v := &Video{opts: opts}
	vw, err := gocv.VideoWriterFile(opts.Path, opts.Codec.FourCC(), opts.Geometry.FPS,
		opts.Geometry.Width, opts.Geometry.Height, opts.Color)
	if err != nil {
		return v, errors.Wrapf(ErrSinkUnavailable, "%s: %v", opts.Path, err)
	}
	v.vw = vw
	if !v.opened() {
		return v, errors.Wrapf(ErrSinkUnavailable, "%s (%s)", opts.Path, opts.Codec)
	}
	log.WithFields(log.Fields{
		"path":     opts.Path,
		"codec":    opts.Codec,
		"geometry": opts.Geometry,
		"color":    opts.Color,
	}).Info("Opened video file")
	return v, nil
}

func (v *Video) Path() string {
	return v.opts.Path
}
