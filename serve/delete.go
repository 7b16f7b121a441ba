package serve

import (
	"net/http"
)

// DeleteServer removes a recording and its file.
type DeleteServer struct {
	Catalog Recordings
}

func (s *DeleteServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Invalid request method", http.StatusMethodNotAllowed)
		return
	}

	rec := lookup(s.Catalog, w, r)
	if rec == nil {
		return
	}

	if err := s.Catalog.Delete(rec); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
