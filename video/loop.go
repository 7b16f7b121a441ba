package video

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Frame is the unit moved through the loop. A frame is only valid until the
// next read into the same buffer.
type Frame interface {
	Empty() bool
}

// Source fills a frame with the next image. Read blocks until a frame is
// available or the source fails.
type Source[F Frame] interface {
	Read(f F) error
}

// Sink accepts frames. Close finalizes any buffered output.
type Sink[F Frame] interface {
	Put(f F) error
	Close() error
}

// Loop reads frames from Source and forwards every non-empty frame to Sink,
// strictly one read then one write per iteration.
type Loop[F Frame] struct {
	Source Source[F]
	Sink   Sink[F]

	// Frame is the buffer reused by every read.
	Frame F

	// Duration bounds the run. Zero runs until the context is done or an
	// operation fails.
	Duration time.Duration

	Stats   *Stats
	Metrics *Metrics

	now func() time.Time
}

// Run drives the loop until it stops. On a duration or cancellation stop the
// sink is finalized and the finalize error, if any, is returned. On a read or
// write failure the error is returned and the sink is left to the caller.
func (l *Loop[F]) Run(ctx context.Context) error {
	if l.now == nil {
		l.now = time.Now
	}
	if l.Stats == nil {
		l.Stats = &Stats{}
	}

	start := l.now()
	l.Stats.begin(start)
	log.WithField("duration", l.Duration).Info("Frame loop started")

	for {
		if ctx.Err() != nil {
			return l.finish(StopCanceled)
		}

		if err := l.Source.Read(l.Frame); err != nil {
			l.Stats.end(l.now(), StopError)
			l.Metrics.failed("read")
			return errors.Wrap(err, "read frame")
		}
		l.Stats.Read.Add(1)
		l.Metrics.read()

		if l.Frame.Empty() {
			l.Stats.Empty.Add(1)
			l.Metrics.empty()
			log.Debug("Dropped empty frame")
		} else {
			if err := l.Sink.Put(l.Frame); err != nil {
				l.Stats.end(l.now(), StopError)
				l.Metrics.failed("write")
				return errors.Wrap(err, "write frame")
			}
			l.Stats.Forwarded.Add(1)
			l.Metrics.forwarded()
		}

		if l.Duration > 0 && l.now().Sub(start) >= l.Duration {
			return l.finish(StopDuration)
		}
	}
}

func (l *Loop[F]) finish(reason StopReason) error {
	l.Stats.end(l.now(), reason)
	s := l.Stats.Snapshot()
	log.WithFields(log.Fields{
		"reason":    reason,
		"read":      s.Read,
		"forwarded": s.Forwarded,
		"empty":     s.Empty,
	}).Info("Frame loop stopped, finalizing sink")
	if err := l.Sink.Close(); err != nil {
		l.Metrics.failed("finalize")
		return errors.Wrap(err, "finalize sink")
	}
	return nil
}
