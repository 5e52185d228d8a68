package monitoring

import (
	"math"
	"runtime"
	"time"
)

// Health thresholds
const (
	maxHealthyMemoryBytes = 500 * 1024 * 1024
	maxHealthyGoroutines  = 1000
)

// GetUptime returns time since the monitor was created
func (m *Monitor) GetUptime() time.Duration {
	return time.Since(m.startTime)
}

// IsHealthy performs a basic memory and goroutine check
func (m *Monitor) IsHealthy() bool {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return safeUint64ToInt64(memStats.Alloc) < maxHealthyMemoryBytes &&
		runtime.NumGoroutine() < maxHealthyGoroutines
}

// GetHealthStatus returns a summary for the health endpoint
func (m *Monitor) GetHealthStatus() map[string]interface{} {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return map[string]interface{}{
		"healthy":    m.IsHealthy(),
		"uptime":     m.GetUptime().Round(time.Second).String(),
		"memory_mb":  safeUint64ToInt64(memStats.Alloc) / (1024 * 1024),
		"goroutines": runtime.NumGoroutine(),
		"gc_cycles":  memStats.NumGC,
	}
}

// safeUint64ToInt64 converts val, capping at math.MaxInt64
func safeUint64ToInt64(val uint64) int64 {
	if val > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(val)
}
