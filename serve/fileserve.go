package serve

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// TODO limit read parallelism to avoid disk thrashing?

var contentTypes = map[string]string{
	".mp4": "video/mp4",
	".avi": "video/x-msvideo",
	".mkv": "video/x-matroska",
}

// FileServer serves the video file of a catalogued recording.
type FileServer struct {
	Catalog Recordings
}

func (s *FileServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := lookup(s.Catalog, w, r)
	if rec == nil {
		return
	}

	f, err := os.Open(rec.Path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	defer f.Close()

	ct, ok := contentTypes[strings.ToLower(filepath.Ext(rec.Path))]
	if !ok {
		ct = "application/octet-stream"
	}
	w.Header().Add("Content-Type", ct)
	io.Copy(w, f)
}
