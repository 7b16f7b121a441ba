package sink

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"camfwd/video/source"
)

// LocateFFmpeg finds the ffmpeg binary, preferring the FFMPEG environment
// variable over $PATH.
func LocateFFmpeg() (string, error) {
	if p := os.Getenv("FFMPEG"); p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", err
		}
		return p, nil
	}
	return exec.LookPath("ffmpeg")
}

func ffmpegArgs(opts FileOptions) []string {
	g := opts.Geometry
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		// Read raw frames as OpenCV lays them out.
		"-f", "rawvideo",
		"-pixel_format", "bgr24",
		"-video_size", fmt.Sprintf("%dx%d", g.Width, g.Height),
		"-framerate", fmt.Sprintf("%d", g.Rate()),
		"-i", "-", // Read from stdin.
		"-c:v", opts.Codec.FFmpegEncoder(),
	}
	if opts.Codec.FFmpegEncoder() == "libx264" {
		args = append(args, "-preset", "superfast", "-crf", "30")
	}
	if !opts.Color {
		args = append(args, "-vf", "format=gray")
	}
	// Enable fast-start so mp4 files play before they are fully downloaded.
	args = append(args, "-movflags", "+faststart", opts.Path)
	return args
}

// FFmpeg writes frames to a file by piping raw video into an ffmpeg process.
type FFmpeg struct {
	opts FileOptions
	cmd  *exec.Cmd
	pipe io.WriteCloser

	once sync.Once
}

func NewFFmpeg(opts FileOptions) (*FFmpeg, error) {
	f := &FFmpeg{opts: opts}
	bin, err := LocateFFmpeg()
	if err != nil {
		return f, errors.Wrapf(ErrSinkUnavailable, "locate ffmpeg: %v", err)
	}

	c := exec.Command(bin, ffmpegArgs(opts)...)
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	pipe, err := c.StdinPipe()
	if err != nil {
		return f, errors.Wrapf(ErrSinkUnavailable, "ffmpeg stdin: %v", err)
	}
	if err := c.Start(); err != nil {
		return f, errors.Wrapf(ErrSinkUnavailable, "start ffmpeg: %v", err)
	}
	f.cmd = c
	f.pipe = pipe
	log.WithFields(log.Fields{
		"path":   opts.Path,
		"ffmpeg": bin,
		"codec":  opts.Codec.FFmpegEncoder(),
	}).Info("Started ffmpeg writer")
	return f, nil
}

func (f *FFmpeg) Path() string {
	return f.opts.Path
}

func (f *FFmpeg) Put(frame *source.Frame) error {
	if f.pipe == nil {
		return ErrSinkNotOpen
	}
	if _, err := f.pipe.Write(frame.Mat.ToBytes()); err != nil {
		return errors.Wrap(err, "write to ffmpeg")
	}
	return nil
}

// Close ends the input and waits for ffmpeg to finish the file.
func (f *FFmpeg) Close() error {
	var err error
	f.once.Do(func() {
		if f.cmd == nil {
			return
		}
		f.pipe.Close()
		log.Info("Waiting for ffmpeg shutdown")
		err = f.cmd.Wait()
		log.Infof("ffmpeg exit with status %v", err)
	})
	return err
}
