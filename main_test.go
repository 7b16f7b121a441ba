package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunExitCodes(t *testing.T) {
	for _, tc := range []struct {
		name string
		args []string
		want int
	}{
		{"help", []string{"-h"}, exitOK},
		{"list_backends", []string{"--list-backends"}, exitOK},
		{"list_camera_backends", []string{"--list-camera-backends", "--video-device", "5"}, exitOK},
		{"device_out_of_range", []string{"--video-device", "100"}, exitUsage},
		{"device_below_range", []string{"--video-device", "-2"}, exitUsage},
		{"bad_sink", []string{"--sink", "window"}, exitUsage},
		{"device_unavailable", []string{"--video-device", "99"}, exitDeviceUnavailable},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, run(tc.args))
		})
	}
}

func TestRunDeviceUnavailableDiagnostic(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	require.Equal(t, exitDeviceUnavailable, run([]string{"--video-device", "99"}))

	var found bool
	for _, e := range hook.AllEntries() {
		if e.Level == log.ErrorLevel {
			assert.Contains(t, e.Message, "Unable to open default camera")
			found = true
		}
	}
	assert.True(t, found, "no error logged")
}

func TestInterruptContext(t *testing.T) {
	// Keeps SIGUSR1 from terminating the test binary once the context has
	// given up its registration.
	guard := make(chan os.Signal, 2)
	signal.Notify(guard, syscall.SIGUSR1)
	defer signal.Stop(guard)

	ctx, cancel := interruptContext(context.Background(), syscall.SIGUSR1)
	defer cancel()

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGUSR1))
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context not cancelled by signal")
	}
	assert.Equal(t, context.Canceled, ctx.Err())

	// A second signal is still delivered without cancelling anything new.
	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGUSR1))
	select {
	case <-guard:
	case <-time.After(5 * time.Second):
		t.Fatal("second signal not delivered")
	}
}

func TestInterruptContextParent(t *testing.T) {
	parent, stop := context.WithCancel(context.Background())
	ctx, cancel := interruptContext(parent, syscall.SIGUSR2)
	defer cancel()

	stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context not cancelled with parent")
	}
}
