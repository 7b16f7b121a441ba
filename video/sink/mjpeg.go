package sink

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"camfwd/video/source"
)

// MJPEG multi-streaming, based on implementation by saljam:
// https://github.com/saljam/mjpeg/blob/master/stream.go

const boundaryWord = "MJPEGBOUNDARY"
const headerf = "\r\n" +
	"--" + boundaryWord + "\r\n" +
	"Content-Type: image/jpeg\r\n" +
	"Content-Length: %d\r\n" +
	"X-Timestamp: %d.%06d\r\n" +
	"\r\n"

// MJPEGServer serves named multipart JPEG streams over HTTP.
type MJPEGServer struct {
	m map[string]*MJPEG

	lock sync.Mutex
}

func NewMJPEGServer() *MJPEGServer {
	return &MJPEGServer{
		m: make(map[string]*MJPEG),
	}
}

// NewStream registers a stream under name. Names must be unique.
func (s *MJPEGServer) NewStream(name string) (*MJPEG, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.m[name]; ok {
		return nil, errors.Errorf("a stream named %q already exists", name)
	}

	ms := &MJPEG{
		name:    name,
		clients: make(map[chan []byte]bool),
		parent:  s,
	}
	s.m[name] = ms
	return ms, nil
}

func (s *MJPEGServer) getStream(name string) *MJPEG {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.m[name]
}

// ServeHTTP implements http.Handler interface, serving MJPEG.
func (s *MJPEGServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	name := r.Form.Get("name")
	if name == "" {
		name = DefaultMJPEGStream
	}

	stream := s.getStream(name)
	if stream == nil {
		http.Error(w, "unknown stream", http.StatusNotFound)
		return
	}

	clog := log.WithField("addr", r.RemoteAddr)
	clog.Infof("MJPEG stream connected to %v", name)
	w.Header().Add("Content-Type", "multipart/x-mixed-replace;boundary="+boundaryWord)

	c := make(chan []byte, 1)
	stream.lock.Lock()
	stream.clients[c] = true
	stream.lock.Unlock()

	defer func() {
		stream.lock.Lock()
		delete(stream.clients, c)
		stream.lock.Unlock()
		clog.Infof("MJPEG stream disconnected from %v", name)
	}()

	flusher, _ := w.(http.Flusher)
	w.WriteHeader(http.StatusOK)
	if flusher != nil {
		flusher.Flush()
	}
	for {
		select {
		case <-r.Context().Done():
			return
		case b, ok := <-c:
			if !ok {
				return
			}
			if _, err := w.Write(b); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

// DefaultMJPEGStream is served when a request names no stream.
const DefaultMJPEGStream = "default"

// MJPEG is a Sink that encodes frames to JPEG for every connected HTTP client.
type MJPEG struct {
	name    string
	clients map[chan []byte]bool
	closed  bool

	parent *MJPEGServer
	lock   sync.Mutex
}

// Clients returns the number of connected viewers.
func (s *MJPEG) Clients() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.clients)
}

func (s *MJPEG) Put(f *source.Frame) error {
	if s.Clients() == 0 {
		// Nobody is listening; don't bother encoding.
		return nil
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, f.Mat)
	if err != nil {
		return errors.Wrapf(err, "encode frame for MJPEG stream %v", s.name)
	}
	defer buf.Close()
	jpeg := buf.GetBytes()

	ts := f.Time.UnixNano()
	header := fmt.Sprintf(headerf, len(jpeg), ts/1e9, (ts%1e9)/1e3)
	frame := make([]byte, len(header)+len(jpeg))
	copy(frame, header)
	copy(frame[len(header):], jpeg)

	s.lock.Lock()
	defer s.lock.Unlock()
	for c := range s.clients {
		select {
		case c <- frame:
		default:
			// Skip listeners not ready for next frame.
		}
	}
	return nil
}

// Close unregisters the stream and disconnects its viewers.
func (s *MJPEG) Close() error {
	s.parent.lock.Lock()
	delete(s.parent.m, s.name)
	s.parent.lock.Unlock()

	s.lock.Lock()
	defer s.lock.Unlock()
	if !s.closed {
		s.closed = true
		for c := range s.clients {
			close(c)
		}
		s.clients = make(map[chan []byte]bool)
	}
	return nil
}
