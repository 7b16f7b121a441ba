package main

import (
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"camfwd/catalog"
	"camfwd/serve"
	"camfwd/video/sink"
)

const statusInterval = time.Second

func startHTTP(addr string, reg *prometheus.Registry, mjpeg *sink.MJPEGServer, status *serve.StatusServer, cat *catalog.Catalog) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.Handle("/mjpeg", mjpeg)
	mux.Handle("/status", status)
	mux.Handle("/statusws", serve.NewStatusUpdater(status, statusInterval))
	if cat != nil {
		mux.Handle("/recordings", &serve.RecordingsServer{Catalog: cat})
		mux.Handle("/video", &serve.FileServer{Catalog: cat})
		mux.Handle("/delete", &serve.DeleteServer{Catalog: cat})
	}
	mux.Handle("/debug/pprof/", http.DefaultServeMux)

	access := log.StandardLogger().WriterLevel(log.DebugLevel)
	srv := &http.Server{
		Addr:    addr,
		Handler: handlers.CombinedLoggingHandler(access, mux),
	}
	go func() {
		log.Printf("Hosting HTTP endpoints on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("HTTP server failed: %v", err)
		}
	}()
	return srv
}
