package main

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pillash/mp4util"
	log "github.com/sirupsen/logrus"

	"camfwd/catalog"
	"camfwd/config"
	"camfwd/video"
	"camfwd/video/format"
)

// recordFinished logs the finalized file and adds it to the catalog, if one
// is configured.
func recordFinished(cat *catalog.Catalog, path string, c *config.Config, g format.Geometry, s video.Snapshot, started time.Time) {
	flog := log.WithField("path", path)

	st, err := os.Stat(path)
	if err != nil {
		flog.Warnf("Finalized file is missing: %v", err)
		return
	}

	durationSec := int(s.ElapsedSec)
	if strings.EqualFold(filepath.Ext(path), ".mp4") {
		if d, err := mp4util.Duration(path); err != nil {
			flog.Warnf("Failed to read mp4 duration: %v", err)
		} else {
			durationSec = d
		}
	}

	flog.WithFields(log.Fields{
		"bytes":    st.Size(),
		"frames":   s.Forwarded,
		"duration": durationSec,
	}).Info("Video file finalized")

	if cat == nil {
		return
	}
	rec := &catalog.Recording{
		Path:        path,
		Codec:       string(c.Codec()),
		Width:       g.Width,
		Height:      g.Height,
		FPS:         g.FPS,
		Frames:      s.Forwarded,
		Dropped:     s.Empty,
		DurationSec: durationSec,
		SizeBytes:   st.Size(),
		StartedAt:   started,
		FinishedAt:  time.Now(),
	}
	if err := cat.Add(rec); err != nil {
		flog.Errorf("Failed to add recording to catalog: %v", err)
	}
}
