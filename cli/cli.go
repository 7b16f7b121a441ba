// Package cli parses the command line and performs the actions that never
// touch a device.
package cli

import (
	"flag"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"camfwd/config"
	"camfwd/video/backend"
)

// ErrUsage marks errors caused by bad arguments or configuration.
var ErrUsage = errors.New("usage")

type Args struct {
	ConfigPath         string
	DisableRecognition bool
	VideoDevice        int
	ListCameraBackends bool
	ListBackends       bool

	Mode     string
	Output   string
	Duration int
	HTTPAddr string

	set map[string]bool
}

// Parse reads the command line. Help requests return flag.ErrHelp; every
// other failure wraps ErrUsage.
func Parse(name string, args []string, stderr io.Writer) (*Args, error) {
	a := &Args{set: make(map[string]bool)}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Capture frames from a camera and forward them to a file or a network stream.\n\nUsage of %s:\n", name)
		fs.PrintDefaults()
	}

	fs.StringVar(&a.ConfigPath, "config", "", "Path to a JSON configuration file.")
	fs.BoolVar(&a.DisableRecognition, "disable-recognition", false, "Accepted for compatibility; has no effect.")
	fs.BoolVar(&a.DisableRecognition, "d", false, "Shorthand for --disable-recognition.")
	fs.IntVar(&a.VideoDevice, "video-device", 0, fmt.Sprintf("Video device to use (%d..%d, -1 for any).", config.MinDeviceIndex, config.MaxDeviceIndex))
	fs.BoolVar(&a.ListCameraBackends, "list-camera-backends", false, "List camera backends available and exit.")
	fs.BoolVar(&a.ListBackends, "list-backends", false, "List all backends and exit.")
	fs.StringVar(&a.Mode, "sink", "", "Sink mode: file, stream or mjpeg.")
	fs.StringVar(&a.Output, "output", "", "Output path for the file sink.")
	fs.IntVar(&a.Duration, "duration", 0, "Stop after this many seconds (0 uses the configured value).")
	fs.StringVar(&a.HTTPAddr, "http", "", "Address for metrics, status and MJPEG preview, e.g. :8080.")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, err
		}
		return nil, errors.Wrap(ErrUsage, err.Error())
	}
	if fs.NArg() > 0 {
		return nil, errors.Wrapf(ErrUsage, "unexpected arguments %v", fs.Args())
	}
	fs.Visit(func(f *flag.Flag) { a.set[f.Name] = true })

	if !config.ValidDeviceIndex(a.VideoDevice) {
		return nil, errors.Wrapf(ErrUsage, "--video-device %d not in range [%d, %d]",
			a.VideoDevice, config.MinDeviceIndex, config.MaxDeviceIndex)
	}
	if a.Duration < 0 {
		return nil, errors.Wrapf(ErrUsage, "--duration %d is negative", a.Duration)
	}
	return a, nil
}

// Listing reports whether the invocation only lists backends.
func (a *Args) Listing() bool {
	return a.ListCameraBackends || a.ListBackends
}

// Apply overrides c with every flag given on the command line.
func (a *Args) Apply(c *config.Config) {
	if a.set["video-device"] {
		c.Device.Index = a.VideoDevice
	}
	if a.set["sink"] {
		c.Sink.Mode = a.Mode
	}
	if a.set["output"] {
		c.Sink.File.Path = a.Output
	}
	if a.set["duration"] {
		c.Sink.DurationSec = a.Duration
	}
	if a.set["http"] {
		c.HTTPAddr = a.HTTPAddr
	}
	if a.DisableRecognition {
		c.DisableRecognition = true
	}
}

// Config loads the configuration file, if any, applies the flags and
// validates the result.
func (a *Args) Config() (*config.Config, error) {
	c := config.Default()
	if a.ConfigPath != "" {
		var err error
		if c, err = config.Load(a.ConfigPath); err != nil {
			return nil, errors.Wrap(ErrUsage, err.Error())
		}
	}
	a.Apply(c)
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(ErrUsage, err.Error())
	}
	return c, nil
}

// ListBackends prints the backend listings requested by a.
func ListBackends(w io.Writer, a *Args, r *backend.Registry) error {
	if a.ListCameraBackends {
		if err := backend.List(w, "Available Camera Backends", r.CameraBackends()); err != nil {
			return err
		}
	}
	if a.ListBackends {
		if err := backend.List(w, "All Backends", r.Backends()); err != nil {
			return err
		}
	}
	return nil
}
