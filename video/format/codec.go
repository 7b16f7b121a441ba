package format

import (
	"strings"

	"github.com/pkg/errors"
)

// Codec is a four character code selecting the compression used by a
// container writer.
type Codec string

const (
	CodecMJPG Codec = "MJPG"
	CodecXVID Codec = "XVID"
	CodecMP4V Codec = "MP4V"
	CodecH264 Codec = "H264"
)

// Codecs lists every supported codec.
var Codecs = []Codec{CodecMJPG, CodecXVID, CodecMP4V, CodecH264}

// ParseCodec accepts a codec name in any case.
func ParseCodec(s string) (Codec, error) {
	c := Codec(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Codecs {
		if c == known {
			return c, nil
		}
	}
	return "", errors.Errorf("unknown codec %q", s)
}

// FourCC returns the tag as OpenCV expects it.
func (c Codec) FourCC() string {
	if c == CodecMP4V {
		return "mp4v"
	}
	return string(c)
}

// FFmpegEncoder maps the codec to the matching ffmpeg encoder name.
func (c Codec) FFmpegEncoder() string {
	switch c {
	case CodecMJPG:
		return "mjpeg"
	case CodecXVID:
		return "libxvid"
	case CodecMP4V:
		return "mpeg4"
	default:
		return "libx264"
	}
}
