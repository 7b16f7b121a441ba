package sink

import (
	"sync"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"camfwd/video/source"
)

var (
	// ErrSinkUnavailable is returned when a sink could not be opened.
	ErrSinkUnavailable = errors.New("videowriter is not open")

	// ErrSinkNotOpen is returned by Put on a sink that never opened.
	ErrSinkNotOpen = errors.New("write to unopened sink")
)

// Sink defines a destination for a stream of frames, such as a video file or
// a network stream.
type Sink interface {
	// Put writes a frame to the sink. The sink must not keep references to
	// the frame's Mat after returning.
	Put(f *source.Frame) error

	// Close finalizes the sink and flushes buffered output. Calling it more
	// than once is allowed.
	Close() error
}

// writer wraps an OpenCV VideoWriter, which handles both container files
// and GStreamer pipeline descriptions.
type writer struct {
	vw   *gocv.VideoWriter
	once sync.Once
}

func (w *writer) opened() bool {
	return w.vw != nil && w.vw.IsOpened()
}

func (w *writer) Put(f *source.Frame) error {
	if !w.opened() {
		return ErrSinkNotOpen
	}
	return w.vw.Write(f.Mat)
}

func (w *writer) Close() error {
	var err error
	w.once.Do(func() {
		if w.vw != nil {
			err = w.vw.Close()
		}
	})
	return err
}
