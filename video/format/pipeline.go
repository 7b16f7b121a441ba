package format

import (
	"fmt"
	"net"
	"strconv"
)

// DefaultPixelFormat is the raw format negotiated ahead of jpegenc.
const DefaultPixelFormat = "YV12"

// Target is the UDP destination of an RTP stream.
type Target struct {
	Host string
	Port int
}

func (t Target) String() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// Description is a GStreamer pipeline that converts raw frames pushed into an
// appsrc to JPEG, packs them as RTP and sends them over UDP.
type Description struct {
	Geometry Geometry
	Format   string
	Target   Target
}

// NewDescription builds a description for frames of the given geometry. The
// geometry must be the one reported by the capture device.
func NewDescription(g Geometry, t Target) Description {
	return Description{
		Geometry: g,
		Format:   DefaultPixelFormat,
		Target:   t,
	}
}

// String renders the pipeline with an anonymous appsrc, as used by the OpenCV
// GStreamer writer.
func (d Description) String() string {
	return d.render("appsrc")
}

// Launch renders the pipeline with a named appsrc so that it can be looked up
// after parsing. The appsrc is live, timestamps buffers in time format and
// announces SourceCaps.
func (d Description) Launch(srcName string) string {
	return d.render(fmt.Sprintf("appsrc name=%s format=time is-live=true do-timestamp=true caps=%q",
		srcName, d.SourceCaps()))
}

// SourceCaps describes the raw BGR frames fed into the appsrc.
func (d Description) SourceCaps() string {
	return fmt.Sprintf("video/x-raw,format=BGR,width=%d,height=%d,framerate=%d/1",
		d.Geometry.Width, d.Geometry.Height, d.Geometry.Rate())
}

func (d Description) render(src string) string {
	pixfmt := d.Format
	if pixfmt == "" {
		pixfmt = DefaultPixelFormat
	}
	return fmt.Sprintf("%s ! "+
		"videoconvert ! "+
		"videoscale ! "+
		"videorate ! "+
		"video/x-raw,width=%d,height=%d,framerate=%d/1,format=%s ! "+
		"jpegenc ! "+
		"rtpjpegpay ! "+
		"udpsink host=%s port=%d",
		src,
		d.Geometry.Width, d.Geometry.Height, d.Geometry.Rate(), pixfmt,
		d.Target.Host, d.Target.Port)
}
