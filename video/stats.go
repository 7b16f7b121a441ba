package video

import (
	"sync"
	"sync/atomic"
	"time"
)

type StopReason int

const (
	Running StopReason = iota
	StopDuration
	StopCanceled
	StopError
)

func (r StopReason) String() string {
	switch r {
	case Running:
		return "running"
	case StopDuration:
		return "duration"
	case StopCanceled:
		return "canceled"
	case StopError:
		return "error"
	}
	return "unknown"
}

// Stats counts loop activity. Counters may be read while the loop runs.
type Stats struct {
	Read      atomic.Uint64
	Forwarded atomic.Uint64
	Empty     atomic.Uint64

	l       sync.Mutex
	started time.Time
	stopped time.Time
	reason  StopReason
}

type Snapshot struct {
	Read      uint64
	Forwarded uint64
	Empty     uint64

	Started    time.Time
	ElapsedSec float64
	Running    bool
	Reason     string
}

func (s *Stats) begin(t time.Time) {
	s.l.Lock()
	defer s.l.Unlock()
	s.started = t
	s.stopped = time.Time{}
	s.reason = Running
}

func (s *Stats) end(t time.Time, r StopReason) {
	s.l.Lock()
	defer s.l.Unlock()
	s.stopped = t
	s.reason = r
}

// Reason returns why the loop stopped, or Running.
func (s *Stats) Reason() StopReason {
	s.l.Lock()
	defer s.l.Unlock()
	return s.reason
}

func (s *Stats) Snapshot() Snapshot {
	s.l.Lock()
	started, stopped, reason := s.started, s.stopped, s.reason
	s.l.Unlock()

	snap := Snapshot{
		Read:      s.Read.Load(),
		Forwarded: s.Forwarded.Load(),
		Empty:     s.Empty.Load(),
		Started:   started,
		Running:   reason == Running && !started.IsZero(),
		Reason:    reason.String(),
	}
	if !started.IsZero() {
		end := stopped
		if end.IsZero() {
			end = time.Now()
		}
		snap.ElapsedSec = end.Sub(started).Seconds()
	}
	return snap
}
