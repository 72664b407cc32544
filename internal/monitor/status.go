// Package monitor reports console process health for the health endpoint.
package monitor

import (
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"
)

// Status is a point-in-time health snapshot
type Status struct {
	Timestamp      time.Time `json:"timestamp"`
	UptimeSeconds  float64   `json:"uptime_seconds"`
	CPUPercent     float64   `json:"cpu_percent"`
	MemoryPercent  float64   `json:"memory_percent"`
	MemoryUsed     uint64    `json:"memory_used_bytes"`
	RuleFetches    int64     `json:"rule_fetches"`
	RuleMutations  int64     `json:"rule_mutations"`
	FailedRequests int64     `json:"failed_requests"`
}

// Collector produces Status snapshots and tracks request counters
type Collector struct {
	logger    *zap.Logger
	startedAt time.Time

	fetches   atomic.Int64
	mutations atomic.Int64
	failures  atomic.Int64
}

// NewCollector creates a status collector
func NewCollector(logger *zap.Logger) *Collector {
	return &Collector{
		logger:    logger.Named("monitor"),
		startedAt: time.Now(),
	}
}

// CountFetch records one rule list request
func (c *Collector) CountFetch() { c.fetches.Add(1) }

// CountMutation records one toggle/delete/create request
func (c *Collector) CountMutation() { c.mutations.Add(1) }

// CountFailure records one failed request
func (c *Collector) CountFailure() { c.failures.Add(1) }

// Snapshot collects current system and counter values. CPU usage is
// measured since the previous snapshot, so the first call reports zero.
func (c *Collector) Snapshot() Status {
	status := Status{
		Timestamp:      time.Now(),
		UptimeSeconds:  time.Since(c.startedAt).Seconds(),
		RuleFetches:    c.fetches.Load(),
		RuleMutations:  c.mutations.Load(),
		FailedRequests: c.failures.Load(),
	}

	cpuPercent, err := cpu.Percent(0, false)
	if err != nil {
		c.logger.Warn("Failed to get CPU usage", zap.Error(err))
	} else if len(cpuPercent) > 0 {
		status.CPUPercent = cpuPercent[0]
	}

	memInfo, err := mem.VirtualMemory()
	if err != nil {
		c.logger.Warn("Failed to get memory usage", zap.Error(err))
	} else {
		status.MemoryPercent = memInfo.UsedPercent
		status.MemoryUsed = memInfo.Used
	}

	return status
}
