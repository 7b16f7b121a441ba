package config

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Load reads a JSON config file on top of the defaults.
func Load(path string) (*Config, error) {
	config := Default()
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p := json.NewDecoder(f)
	p.DisallowUnknownFields()
	if err := p.Decode(config); err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	log.Debugf("Loaded configuration: %v", spew.Sdump(config))
	return config, nil
}

func waitForChange(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(path); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-watcher.Errors:
		return err
	case <-watcher.Events:
	}
	// Editors write in bursts.
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Second / 10):
	}
	return ctx.Err()
}

// Watch calls onChange with the reloaded config every time the file at path
// changes, until ctx is done. Files that fail to load or validate are logged
// and skipped.
func Watch(ctx context.Context, path string, onChange func(*Config)) {
	go func() {
		for ctx.Err() == nil {
			if err := waitForChange(ctx, path); err != nil {
				if ctx.Err() == nil {
					log.Errorf("Error waiting for config change: %v", err)
					time.Sleep(time.Second)
				}
				continue
			}

			config, err := Load(path)
			if err != nil {
				log.Errorf("Failed to load new config: %v", err)
				continue
			}
			if err := config.Validate(); err != nil {
				log.Errorf("Ignoring invalid config: %v", err)
				continue
			}
			onChange(config)
		}
	}()
}
