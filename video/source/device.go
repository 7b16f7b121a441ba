package source

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"camfwd/video/backend"
	"camfwd/video/format"
)

var (
	// ErrDeviceUnavailable is returned when the capture device cannot be opened.
	ErrDeviceUnavailable = errors.New("Unable to open default camera")

	// ErrDeviceClosed is returned by Read once the device has gone away.
	ErrDeviceClosed = errors.New("capture device closed")
)

type Options struct {
	// Index of the camera; -1 selects any device.
	Index   int
	Backend backend.ID
	Width   int
	Height  int
	FPS     int
}

// Device is an opened camera. It is owned by a single goroutine.
type Device struct {
	opts Options
	cap  *gocv.VideoCapture
	geom format.Geometry
	seq  uint64

	closed    bool
	closeOnce sync.Once
}

// Open acquires the camera and applies the requested geometry. The geometry
// actually negotiated is available from Geometry and may differ from the
// request.
func Open(opts Options) (*Device, error) {
	dlog := log.WithFields(log.Fields{
		"device":  opts.Index,
		"backend": opts.Backend,
	})

	cap, err := gocv.OpenVideoCaptureWithAPI(opts.Index, gocv.VideoCaptureAPI(opts.Backend))
	if err != nil {
		if cap != nil {
			cap.Close()
		}
		return nil, errors.Wrapf(ErrDeviceUnavailable, "device %d via %v: %v", opts.Index, opts.Backend, err)
	}
	if !cap.IsOpened() {
		cap.Close()
		return nil, errors.Wrapf(ErrDeviceUnavailable, "device %d via %v", opts.Index, opts.Backend)
	}

	cap.Set(gocv.VideoCaptureFrameWidth, float64(opts.Width))
	cap.Set(gocv.VideoCaptureFrameHeight, float64(opts.Height))
	cap.Set(gocv.VideoCaptureFPS, float64(opts.FPS))
	return negotiate(cap, opts, dlog), nil
}

// negotiate wraps an opened capture and reads back the geometry it settled on.
func negotiate(cap *gocv.VideoCapture, opts Options, dlog *log.Entry) *Device {
	d := &Device{
		opts: opts,
		cap:  cap,
		geom: format.Geometry{
			Width:  int(cap.Get(gocv.VideoCaptureFrameWidth)),
			Height: int(cap.Get(gocv.VideoCaptureFrameHeight)),
			FPS:    cap.Get(gocv.VideoCaptureFPS),
		},
	}
	if d.geom.FPS <= 0 {
		// Some drivers never report a rate; writers refuse a zero rate.
		dlog.Warnf("Device reported no frame rate, assuming requested %d", opts.FPS)
		d.geom.FPS = float64(opts.FPS)
	}

	dlog.WithFields(log.Fields{
		"requested":  format.Geometry{Width: opts.Width, Height: opts.Height, FPS: float64(opts.FPS)},
		"negotiated": d.geom,
		"codec":      cap.CodecString(),
	}).Info("Opened capture device")
	return d
}

// Geometry returns the size and rate reported by the device after opening.
func (d *Device) Geometry() format.Geometry {
	return d.geom
}

// Read blocks for the next frame. A failed grab leaves the frame empty; it
// only becomes an error once the device reports itself closed.
func (d *Device) Read(f *Frame) error {
	if d.closed {
		return ErrDeviceClosed
	}
	ok := d.cap.Read(&f.Mat)
	f.Time = time.Now()
	if !ok && !d.cap.IsOpened() {
		return ErrDeviceClosed
	}
	d.seq++
	f.Seq = d.seq
	return nil
}

// Close releases the device. It is safe to call more than once.
func (d *Device) Close() error {
	var err error
	d.closeOnce.Do(func() {
		d.closed = true
		err = d.cap.Close()
	})
	return err
}
