package source

import (
	"time"

	"gocv.io/x/gocv"
)

// Frame is a single captured image. The Mat is reused by every read into the
// same Frame, so nothing may hold on to it past one loop iteration.
type Frame struct {
	Mat  gocv.Mat
	Time time.Time
	Seq  uint64
}

func NewFrame() *Frame {
	return &Frame{
		Mat: gocv.NewMat(),
	}
}

// Empty reports whether the last read produced no image.
func (f *Frame) Empty() bool {
	return f.Mat.Empty()
}

func (f *Frame) Close() error {
	return f.Mat.Close()
}
