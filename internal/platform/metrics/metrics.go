// Package metrics keeps cheap in-process counters for the dashboard API:
// request volume, error and throttle counts, and report exports. Snapshot
// feeds the admin /metrics endpoint.
package metrics

import (
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	exportsTotal    uint64
	totalDurationMs uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

// RecordExport counts workbook and PDF downloads; they are the heaviest
// requests the service handles. Nil-safe so handlers can run without a
// collector in tests.
func (c *Collector) RecordExport() {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.exportsTotal, 1)
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	limited := atomic.LoadUint64(&c.rateLimited)
	exports := atomic.LoadUint64(&c.exportsTotal)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":    total,
		"errorsTotal":      errs,
		"rateLimitedTotal": limited,
		"exportsTotal":     exports,
		"avgDurationMs":    avg,
		"totalDurationMs":  totalMs,
	}
}
