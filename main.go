package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"

	"camfwd/catalog"
	"camfwd/cli"
	"camfwd/config"
	"camfwd/serve"
	"camfwd/video"
	"camfwd/video/backend"
	"camfwd/video/sink"
	"camfwd/video/source"
)

const (
	exitOK                = 0
	exitFailure           = 1
	exitUsage             = 2
	exitDeviceUnavailable = 3
	exitSinkUnavailable   = 4
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// interruptContext is cancelled by the first of sigs. Signal handling then
// reverts to the default, so a second signal kills a run stuck in a read.
func interruptContext(parent context.Context, sigs ...os.Signal) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, sigs...)
	go func() {
		<-ctx.Done()
		stop()
	}()
	return ctx, stop
}

func run(argv []string) int {
	args, err := cli.Parse(os.Args[0], argv, os.Stderr)
	if err == flag.ErrHelp {
		return exitOK
	}
	if err != nil {
		log.Error(err)
		return exitUsage
	}

	if args.Listing() {
		if err := cli.ListBackends(os.Stdout, args, backend.Available()); err != nil {
			log.Errorf("Failed to list backends: %v", err)
			return exitFailure
		}
		return exitOK
	}

	c, err := args.Config()
	if err != nil {
		log.Error(err)
		return exitUsage
	}
	if c.DisableRecognition {
		log.Info("Recognition is not available; --disable-recognition has no effect")
	}

	ctx, cancel := interruptContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if args.ConfigPath != "" && c.ExitOnConfigChange {
		config.Watch(ctx, args.ConfigPath, func(*config.Config) {
			log.WithField("path", args.ConfigPath).Info("Configuration changed, stopping")
			cancel()
		})
	}

	log.Infof("video device: %d", c.Device.Index)
	dev, err := source.Open(source.Options{
		Index:   c.Device.Index,
		Backend: c.BackendID(),
		Width:   c.Device.Width,
		Height:  c.Device.Height,
		FPS:     c.Device.FPS,
	})
	if err != nil {
		log.Error(err)
		return exitDeviceUnavailable
	}
	defer dev.Close()
	geom := dev.Geometry()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := video.NewMetrics(reg)
	metrics.SetGeometry(geom)
	stats := &video.Stats{}

	var cat *catalog.Catalog
	if c.CatalogDSN != "" {
		if cat, err = catalog.OpenMySQL(c.CatalogDSN); err != nil {
			log.Errorf("Failed to open recordings catalog: %v", err)
			return exitFailure
		}
		defer cat.Close()
	}

	var mjpeg *sink.MJPEGServer
	if c.HTTPAddr != "" {
		mjpeg = sink.NewMJPEGServer()
		status := &serve.StatusServer{
			Device:   c.Device.Index,
			Backend:  c.BackendID().String(),
			Geometry: geom,
			Sink:     c.Sink.Mode,
			Stats:    stats,
		}
		srv := startHTTP(c.HTTPAddr, reg, mjpeg, status, cat)
		defer srv.Close()
	}

	started := time.Now()
	if c.Sink.Mode == config.ModeFile {
		if c.Sink.File.Path, err = video.OutputPath(c.Sink.File.Path, started); err != nil {
			log.Errorf("Failed to prepare output path: %v", err)
			return exitSinkUnavailable
		}
	}

	out, err := sink.Open(c, geom, mjpeg)
	switch {
	case err == nil:
	case errors.Is(err, sink.ErrSinkUnavailable) && c.Sink.OnOpenFailure == config.OnOpenFailureContinue:
		// Run on; the first write reports the failure.
		log.Warn(err)
	case errors.Is(err, sink.ErrSinkUnavailable):
		log.Error(err)
		if out != nil {
			out.Close()
		}
		return exitSinkUnavailable
	default:
		log.Errorf("Failed to create sink: %v", err)
		return exitFailure
	}
	defer out.Close()

	frame := source.NewFrame()
	defer frame.Close()

	loop := &video.Loop[*source.Frame]{
		Source:   dev,
		Sink:     out,
		Frame:    frame,
		Duration: c.Duration(),
		Stats:    stats,
		Metrics:  metrics,
	}
	if err := loop.Run(ctx); err != nil {
		log.Errorf("Frame loop failed: %v", err)
		return exitFailure
	}

	if path, ok := sink.FilePath(out); ok {
		recordFinished(cat, path, c, geom, stats.Snapshot(), started)
	}
	return exitOK
}
