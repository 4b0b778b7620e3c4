package pipeline

import (
	"sync"
	"time"
)

// Metrics contains activation counters
type Metrics struct {
	Activations    int64         `json:"activations"`
	Settled        int64         `json:"settled"`
	Aborted        int64         `json:"aborted"`
	Superseded     int64         `json:"superseded"`
	Redirects      int64         `json:"redirects"`
	CacheHits      int64         `json:"cache_hits"`
	AverageLatency time.Duration `json:"average_latency"`
	LastSettled    time.Time     `json:"last_settled,omitempty"`
}

type metricsRecorder struct {
	mu      sync.Mutex
	m       Metrics
	settled time.Duration
}

func (r *metricsRecorder) begin() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m.Activations++
}

func (r *metricsRecorder) redirect() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m.Redirects++
}

func (r *metricsRecorder) finish(a *Activation, superseded bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case superseded:
		r.m.Superseded++
	case a.State == StateSettled:
		r.m.Settled++
		r.settled += a.Duration
		r.m.AverageLatency = r.settled / time.Duration(r.m.Settled)
		r.m.LastSettled = a.StartedAt.Add(a.Duration)
		if a.Cached() {
			r.m.CacheHits++
		}
	default:
		r.m.Aborted++
	}
}

func (r *metricsRecorder) snapshot() Metrics {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.m
}
