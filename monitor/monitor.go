// monitor/monitor.go
package monitor

import (
	"expvar"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	OnlinePlayers prometheus.Gauge
	SpinsTotal    prometheus.Counter
	CoinsWagered  prometheus.Counter
	CoinsWon      prometheus.Counter
	DroppedFrames prometheus.Counter
	SpinLatency   prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		OnlinePlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "online_players",
			Help:      "Number of joined players",
		}),
		SpinsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spins_total",
			Help:      "Total number of settled spins",
		}),
		CoinsWagered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coins_wagered_total",
			Help:      "Total coins wagered",
		}),
		CoinsWon: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coins_won_total",
			Help:      "Total coins paid out",
		}),
		DroppedFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_frames_total",
			Help:      "Outbound frames dropped on full or closed connections",
		}),
		SpinLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "spin_latency_seconds",
			Help:      "Spin settlement and fan-out latency",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
	}

	prometheus.MustRegister(
		m.OnlinePlayers,
		m.SpinsTotal,
		m.CoinsWagered,
		m.CoinsWon,
		m.DroppedFrames,
		m.SpinLatency,
	)

	return m
}

type Monitor struct {
	metrics   *Metrics
	startTime time.Time
	spinCount int64
	mutex     sync.Mutex
}

func NewMonitor(namespace string) *Monitor {
	m := &Monitor{
		metrics:   NewMetrics(namespace),
		startTime: time.Now(),
	}

	expvar.Publish("uptime", expvar.Func(func() interface{} {
		return time.Since(m.startTime).Seconds()
	}))

	expvar.Publish("spins", expvar.Func(func() interface{} {
		m.mutex.Lock()
		defer m.mutex.Unlock()
		return m.spinCount
	}))

	return m
}

func (m *Monitor) IncOnlinePlayers() {
	m.metrics.OnlinePlayers.Inc()
}

func (m *Monitor) DecOnlinePlayers() {
	m.metrics.OnlinePlayers.Dec()
}

func (m *Monitor) ObserveSpin(bet, win int, duration time.Duration) {
	m.metrics.SpinsTotal.Inc()
	m.metrics.CoinsWagered.Add(float64(bet))
	m.metrics.CoinsWon.Add(float64(win))
	m.metrics.SpinLatency.Observe(duration.Seconds())

	m.mutex.Lock()
	m.spinCount++
	m.mutex.Unlock()
}

func (m *Monitor) IncDroppedFrames() {
	m.metrics.DroppedFrames.Inc()
}
