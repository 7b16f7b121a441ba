package sink

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"camfwd/video/backend"
	"camfwd/video/format"
)

// available reports the videoio backends of the linked OpenCV build.
var available = backend.Available

// Stream hands frames to a GStreamer pipeline built by OpenCV from a textual
// description.
type Stream struct {
	writer
	desc format.Description
}

// NewStream opens the pipeline through OpenCV. gocv does not take a writer API
// preference, so the description is only accepted when the linked OpenCV has
// a GStreamer writer; the other writers reject a pipeline description as a
// file name. The GStreamer writer ignores the fourcc.
func NewStream(desc format.Description) (*Stream, error) {
	s := &Stream{desc: desc}
	if b, ok := available().Lookup(backend.GStreamer); !ok || b.Mode&backend.Writer == 0 {
		return s, errors.Wrap(ErrSinkUnavailable, "opencv is built without a GStreamer writer")
	}
	g := desc.Geometry
	vw, err := gocv.VideoWriterFile(desc.String(), string(format.CodecMJPG), g.FPS, g.Width, g.Height, true)
	if err != nil {
		return s, errors.Wrapf(ErrSinkUnavailable, "%v: %v", desc.Target, err)
	}
	s.vw = vw
	if !s.opened() {
		return s, errors.Wrapf(ErrSinkUnavailable, "pipeline %q", desc.String())
	}
	log.WithFields(log.Fields{
		"target":   desc.Target,
		"pipeline": desc.String(),
	}).Info("Opened stream")
	return s, nil
}
