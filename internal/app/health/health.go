// Package health periodically samples the appliance's own CPU and memory
// usage and emits it into the event log as eventlog.SystemHealth.
package health

import (
	"context"
	"math"
	"os"
	"time"

	"github.com/shirou/gopsutil/v4/process"

	"barracuda/internal/app/eventlog"
	"barracuda/internal/config"
	"barracuda/internal/config/logger"
)

// Sampler periodically records CPU/memory usage for the current process.
type Sampler struct {
	events *eventlog.Buffer
	log    logger.Logger
	pid    int32
}

// New returns a Sampler for the current process.
func New(events *eventlog.Buffer, log logger.Logger) *Sampler {
	pid := os.Getpid()
	if pid <= 0 || pid > math.MaxInt32 {
		pid = 0
	}

	return &Sampler{
		events: events,
		log:    log.WithComponent("HEALTH"),
		pid:    int32(pid), // #nosec G115 -- range checked above
	}
}

// Sample takes one CPU/memory reading and pushes it to the event log.
func (s *Sampler) Sample(ctx context.Context) {
	proc, err := process.NewProcessWithContext(ctx, s.pid)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to open process handle")
		return
	}

	var ev eventlog.SystemHealth

	if cpu, err := proc.CPUPercentWithContext(ctx); err == nil {
		ev.CPUPercent = cpu
	}

	if mem, err := proc.MemoryInfoWithContext(ctx); err == nil {
		ev.MemMB = float64(mem.RSS) / 1024 / 1024
	}

	s.events.Push(ev)
}

// Run samples every config.HealthSampleInterval until stop closes.
func (s *Sampler) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(config.HealthSampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.Sample(context.Background())
		}
	}
}
