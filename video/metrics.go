package video

import (
	"github.com/prometheus/client_golang/prometheus"

	"camfwd/video/format"
)

// Metrics exports loop counters to prometheus. A nil *Metrics is a no-op.
type Metrics struct {
	framesRead      prometheus.Counter
	framesForwarded prometheus.Counter
	framesEmpty     prometheus.Counter
	errors          *prometheus.CounterVec

	width  prometheus.Gauge
	height prometheus.Gauge
	fps    prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		framesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "camfwd_frames_read_total",
			Help: "Frames read from the capture device, including empty ones.",
		}),
		framesForwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "camfwd_frames_forwarded_total",
			Help: "Frames written to the sink.",
		}),
		framesEmpty: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "camfwd_frames_empty_total",
			Help: "Empty frames dropped before the sink.",
		}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "camfwd_loop_errors_total",
			Help: "Loop failures by stage.",
		}, []string{"stage"}),
		width: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "camfwd_device_width_pixels",
			Help: "Negotiated capture width.",
		}),
		height: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "camfwd_device_height_pixels",
			Help: "Negotiated capture height.",
		}),
		fps: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "camfwd_device_fps",
			Help: "Negotiated capture frame rate.",
		}),
	}
	reg.MustRegister(m.framesRead, m.framesForwarded, m.framesEmpty, m.errors, m.width, m.height, m.fps)
	return m
}

// SetGeometry records the geometry negotiated with the device.
func (m *Metrics) SetGeometry(g format.Geometry) {
	if m == nil {
		return
	}
	m.width.Set(float64(g.Width))
	m.height.Set(float64(g.Height))
	m.fps.Set(g.FPS)
}

func (m *Metrics) read() {
	if m != nil {
		m.framesRead.Inc()
	}
}

func (m *Metrics) forwarded() {
	if m != nil {
		m.framesForwarded.Inc()
	}
}

func (m *Metrics) empty() {
	if m != nil {
		m.framesEmpty.Inc()
	}
}

func (m *Metrics) failed(stage string) {
	if m != nil {
		m.errors.WithLabelValues(stage).Inc()
	}
}
