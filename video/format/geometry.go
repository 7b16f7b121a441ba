// Package format holds the plain descriptions shared between capture and
// output: frame geometry, container codecs and GStreamer pipeline text.
package format

import "fmt"

// Geometry is the frame size and rate of a stream.
type Geometry struct {
	Width  int
	Height int
	FPS    float64
}

// Rate returns the frame rate as a whole number of frames per second.
// Fractional rates are truncated.
func (g Geometry) Rate() int {
	return int(g.FPS)
}

// Valid reports whether every dimension is positive.
func (g Geometry) Valid() bool {
	return g.Width > 0 && g.Height > 0 && g.FPS > 0
}

func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d@%v", g.Width, g.Height, g.FPS)
}
