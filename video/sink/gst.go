package sink

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	"camfwd/video/format"
	"camfwd/video/source"
)

const (
	gstSourceName = "src"
	eosTimeout    = 5 * time.Second
)

var gstInit sync.Once

// GstStream pushes raw BGR frames into a named appsrc of a pipeline parsed
// by GStreamer directly.
type GstStream struct {
	desc     format.Description
	pipeline *gst.Pipeline
	src      *app.Source
	bus      *gst.Bus

	once sync.Once
}

func NewGstStream(desc format.Description) (*GstStream, error) {
	gstInit.Do(func() { gst.Init(nil) })

	s := &GstStream{desc: desc}
	launch := desc.Launch(gstSourceName)
	pipeline, err := gst.NewPipelineFromString(launch)
	if err != nil {
		return s, errors.Wrapf(ErrSinkUnavailable, "parse pipeline %q: %v", launch, err)
	}
	elem, err := pipeline.GetElementByName(gstSourceName)
	if err != nil {
		pipeline.SetState(gst.StateNull)
		return s, errors.Wrapf(ErrSinkUnavailable, "appsrc %q: %v", gstSourceName, err)
	}

	// format, is-live, do-timestamp and caps are set by the launch line.
	src := app.SrcFromElement(elem)

	if err := pipeline.SetState(gst.StatePlaying); err != nil {
		pipeline.SetState(gst.StateNull)
		return s, errors.Wrapf(ErrSinkUnavailable, "start pipeline: %v", err)
	}

	s.pipeline = pipeline
	s.src = src
	s.bus = pipeline.GetPipelineBus()
	log.WithFields(log.Fields{
		"target":   desc.Target,
		"pipeline": launch,
		"caps":     desc.SourceCaps(),
	}).Info("Started GStreamer stream")
	return s, nil
}

// pipelineError drains pending bus messages and returns the first error.
func (s *GstStream) pipelineError() error {
	for {
		msg := s.bus.TimedPop(0)
		if msg == nil {
			return nil
		}
		if msg.Type() == gst.MessageError {
			gerr := msg.ParseError()
			return errors.Errorf("pipeline: %s (%s)", gerr.Error(), gerr.DebugString())
		}
	}
}

func (s *GstStream) Put(f *source.Frame) error {
	if s.src == nil {
		return ErrSinkNotOpen
	}
	if err := s.pipelineError(); err != nil {
		return err
	}
	buf := gst.NewBufferFromBytes(f.Mat.ToBytes())
	if ret := s.src.PushBuffer(buf); ret != gst.FlowOK {
		return errors.Errorf("push buffer: %v", ret)
	}
	return nil
}

// Close sends end-of-stream, waits for it to drain and tears the pipeline
// down.
func (s *GstStream) Close() error {
	var err error
	s.once.Do(func() {
		if s.pipeline == nil {
			return
		}
		defer s.pipeline.SetState(gst.StateNull)

		s.src.EndStream()
		deadline := time.Now().Add(eosTimeout)
		for time.Now().Before(deadline) {
			msg := s.bus.TimedPop(time.Until(deadline))
			if msg == nil {
				break
			}
			switch msg.Type() {
			case gst.MessageEOS:
				return
			case gst.MessageError:
				gerr := msg.ParseError()
				err = errors.Errorf("pipeline: %s", gerr.Error())
				return
			}
		}
		log.Warnf("GStreamer pipeline did not drain within %v", eosTimeout)
	})
	return err
}
