// Package backend describes the OpenCV videoio backends that can serve a
// capture device or a writer.
package backend

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// ID is an OpenCV videoio API preference (cv::VideoCaptureAPIs).
type ID int

const (
	Any          ID = 0
	V4L2         ID = 200
	Firewire     ID = 300
	DShow        ID = 700
	PvAPI        ID = 800
	OpenNI       ID = 900
	Android      ID = 1000
	XIAPI        ID = 1100
	AVFoundation ID = 1200
	Giganetix    ID = 1300
	MSMF         ID = 1400
	WinRT        ID = 1410
	IntelPerc    ID = 1500
	OpenNI2      ID = 1600
	OpenNI2Asus  ID = 1610
	OpenNI2Astra ID = 1620
	GPhoto2      ID = 1700
	GStreamer    ID = 1800
	FFmpeg       ID = 1900
	Images       ID = 2000
	Aravis       ID = 2100
	OpenCVMJPEG  ID = 2200
	IntelMFX     ID = 2300
	XINE         ID = 2400
	UEye         ID = 2500
	OBSensor     ID = 2600
)

// Mode flags what a backend can do.
type Mode uint8

const (
	CaptureByIndex Mode = 1 << iota
	CaptureByFilename
	Writer
)

// Backend is one entry of the registry.
type Backend struct {
	ID   ID
	Name string
	Mode Mode
	// OS lists the GOOS values the backend is built for. Empty means all.
	OS []string
}

// Camera reports whether the backend can open a device by index.
func (b Backend) Camera() bool {
	return b.Mode&CaptureByIndex != 0
}

func (b Backend) availableOn(goos string) bool {
	if len(b.OS) == 0 {
		return true
	}
	for _, os := range b.OS {
		if os == goos {
			return true
		}
	}
	return false
}

// known maps every videoio backend ID to its name. The first entries are
// ordered by the default OpenCV priority. Which of them a binary can use is
// only known at runtime, see Available.
var known = []Backend{
	{ID: FFmpeg, Name: "FFMPEG", Mode: CaptureByFilename | Writer},
	{ID: GStreamer, Name: "GSTREAMER", Mode: CaptureByIndex | CaptureByFilename | Writer},
	{ID: IntelMFX, Name: "INTEL_MFX", Mode: CaptureByFilename | Writer, OS: []string{"linux", "windows"}},
	{ID: MSMF, Name: "MSMF", Mode: CaptureByIndex | CaptureByFilename | Writer, OS: []string{"windows"}},
	{ID: DShow, Name: "DSHOW", Mode: CaptureByIndex, OS: []string{"windows"}},
	{ID: V4L2, Name: "V4L2", Mode: CaptureByIndex | CaptureByFilename, OS: []string{"linux"}},
	{ID: AVFoundation, Name: "AVFOUNDATION", Mode: CaptureByIndex | CaptureByFilename | Writer, OS: []string{"darwin", "ios"}},
	{ID: Android, Name: "ANDROID_NATIVE", Mode: CaptureByIndex | CaptureByFilename, OS: []string{"android"}},
	{ID: UEye, Name: "UEYE", Mode: CaptureByIndex, OS: []string{"linux", "windows"}},
	{ID: OBSensor, Name: "OBSENSOR", Mode: CaptureByIndex, OS: []string{"linux", "windows"}},
	{ID: Aravis, Name: "ARAVIS", Mode: CaptureByIndex, OS: []string{"linux"}},
	{ID: Images, Name: "CV_IMAGES", Mode: CaptureByFilename | Writer},
	{ID: OpenCVMJPEG, Name: "CV_MJPEG", Mode: CaptureByFilename | Writer},
	{ID: Firewire, Name: "FIREWIRE", Mode: CaptureByIndex, OS: []string{"linux", "darwin"}},
	{ID: PvAPI, Name: "PVAPI", Mode: CaptureByIndex, OS: []string{"linux", "windows"}},
	{ID: OpenNI, Name: "OPENNI", Mode: CaptureByIndex},
	{ID: OpenNI2, Name: "OPENNI2", Mode: CaptureByIndex | CaptureByFilename},
	{ID: OpenNI2Asus, Name: "OPENNI2_ASUS", Mode: CaptureByIndex},
	{ID: OpenNI2Astra, Name: "OPENNI2_ASTRA", Mode: CaptureByIndex},
	{ID: XIAPI, Name: "XIMEA", Mode: CaptureByIndex},
	{ID: Giganetix, Name: "GIGANETIX", Mode: CaptureByIndex},
	{ID: WinRT, Name: "WINRT", Mode: CaptureByIndex, OS: []string{"windows"}},
	{ID: IntelPerc, Name: "INTEL_PERC", Mode: CaptureByIndex},
	{ID: GPhoto2, Name: "GPHOTO2", Mode: CaptureByIndex, OS: []string{"linux", "darwin"}},
	{ID: XINE, Name: "XINE", Mode: CaptureByFilename, OS: []string{"linux"}},
}

func lookup(id ID) (Backend, bool) {
	for _, b := range known {
		if b.ID == id {
			return b, true
		}
	}
	return Backend{}, false
}

// Registry is an ordered set of backends.
type Registry struct {
	backends []Backend
}

// NewRegistry returns a registry holding bs in order.
func NewRegistry(bs ...Backend) *Registry {
	return &Registry{backends: append([]Backend(nil), bs...)}
}

// For returns the backends the name table lists for the given GOOS value,
// whether or not the linked OpenCV build carries them.
func For(goos string) *Registry {
	r := &Registry{}
	for _, b := range known {
		if b.availableOn(goos) {
			r.backends = append(r.backends, b)
		}
	}
	return r
}

// Backends returns every backend of the registry.
func (r *Registry) Backends() []Backend {
	return append([]Backend(nil), r.backends...)
}

// Lookup returns the registry entry for id.
func (r *Registry) Lookup(id ID) (Backend, bool) {
	for _, b := range r.backends {
		if b.ID == id {
			return b, true
		}
	}
	return Backend{}, false
}

// CameraBackends returns the backends that can open a device by index.
func (r *Registry) CameraBackends() []Backend {
	var out []Backend
	for _, b := range r.backends {
		if b.Camera() {
			out = append(out, b)
		}
	}
	return out
}

// Name maps an ID to its human readable name.
func Name(id ID) string {
	if id == Any {
		return "ANY"
	}
	if b, ok := lookup(id); ok {
		return b.Name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(id))
}

func (id ID) String() string {
	return Name(id)
}

// Parse maps a backend name, in any case, to its ID. "ANY" and the empty
// string select automatic backend choice.
func Parse(name string) (ID, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	switch n {
	case "", "ANY":
		return Any, nil
	case "V4L":
		return V4L2, nil
	case "XIAPI":
		return XIAPI, nil
	}
	for _, b := range known {
		if b.Name == n {
			return b.ID, nil
		}
	}
	return Any, errors.Errorf("unknown backend %q", name)
}

// List writes a titled listing of backends, one tab-indented name per line.
func List(w io.Writer, title string, backends []Backend) error {
	if _, err := fmt.Fprintf(w, "%s\n%s\n", title, strings.Repeat("-", 10)); err != nil {
		return err
	}
	for _, b := range backends {
		if _, err := fmt.Fprintf(w, "\t%s\n", b.Name); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
