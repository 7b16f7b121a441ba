package video

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// TimePlaceholder in an output path is replaced by the start time.
	TimePlaceholder = "{time}"

	// FileTimeLayout defines the format of time stamps in filenames.
	// See https://golang.org/src/time/format.go.
	FileTimeLayout = "20060102-150405-Z0700"
)

// OutputPath expands the time placeholder in pattern and creates the parent
// directory of the result.
func OutputPath(pattern string, t time.Time) (string, error) {
	p := strings.ReplaceAll(pattern, TimePlaceholder, t.Format(FileTimeLayout))
	if dir := filepath.Dir(p); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", err
		}
	}
	return p, nil
}
