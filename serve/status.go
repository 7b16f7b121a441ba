package serve

import (
	"encoding/json"
	"net/http"

	"camfwd/video"
	"camfwd/video/format"
)

// StatusResponse is the JSON document served at /status.
type StatusResponse struct {
	Device   int
	Backend  string
	Geometry format.Geometry
	Sink     string
	Loop     video.Snapshot
}

// StatusServer reports the live state of the frame loop.
type StatusServer struct {
	Device   int
	Backend  string
	Geometry format.Geometry
	Sink     string
	Stats    *video.Stats
}

func (s *StatusServer) BuildResponse() *StatusResponse {
	return &StatusResponse{
		Device:   s.Device,
		Backend:  s.Backend,
		Geometry: s.Geometry,
		Sink:     s.Sink,
		Loop:     s.Stats.Snapshot(),
	}
}

func (s *StatusServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	js, err := json.Marshal(s.BuildResponse())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(js)
}
