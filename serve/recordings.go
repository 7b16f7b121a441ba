package serve

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"camfwd/catalog"
)

const defaultRecordings = 20

// Recordings is the part of the catalog served over HTTP.
type Recordings interface {
	Recent(n int) ([]catalog.Recording, error)
	Get(id uint) (*catalog.Recording, error)
	Delete(r *catalog.Recording) error
}

// lookup resolves the "id" form value to a recording, writing an HTTP error
// and returning nil when that fails.
func lookup(c Recordings, w http.ResponseWriter, r *http.Request) *catalog.Recording {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}
	id, err := strconv.ParseUint(r.Form.Get("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return nil
	}
	rec, err := c.Get(uint(id))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil
	}
	if rec == nil {
		http.Error(w, fmt.Sprintf("No record found for id %v", id), http.StatusNotFound)
		return nil
	}
	return rec
}

type RecordingEntry struct {
	ID          uint
	Path        string
	Codec       string
	Width       int
	Height      int
	Frames      uint64
	DurationSec int
	SizeBytes   int64
	Finished    int64
}

// RecordingsServer lists recently finished files as JSON.
type RecordingsServer struct {
	Catalog Recordings
}

func (s *RecordingsServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	n := defaultRecordings
	if v := r.Form.Get("n"); v != "" {
		var err error
		if n, err = strconv.Atoi(v); err != nil || n <= 0 {
			http.Error(w, "invalid n", http.StatusBadRequest)
			return
		}
	}

	recs, err := s.Catalog.Recent(n)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	items := make([]*RecordingEntry, 0, len(recs))
	for _, rec := range recs {
		items = append(items, &RecordingEntry{
			ID:          rec.ID,
			Path:        rec.Path,
			Codec:       rec.Codec,
			Width:       rec.Width,
			Height:      rec.Height,
			Frames:      rec.Frames,
			DurationSec: rec.DurationSec,
			SizeBytes:   rec.SizeBytes,
			Finished:    rec.FinishedAt.Unix(),
		})
	}

	js, err := json.Marshal(items)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(js)
}
