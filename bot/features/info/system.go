package info

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// Usage is a host load reading
type Usage struct {
	CPUPercent float64
	RAMPercent float64
}

// SystemStats reads host load
type SystemStats interface {
	Usage(ctx context.Context) (Usage, error)
}

type hostStats struct {
	sample time.Duration
}

// NewHostStats samples CPU over one second and reads virtual memory
func NewHostStats() SystemStats {
	return hostStats{sample: time.Second}
}

func (h hostStats) Usage(ctx context.Context) (Usage, error) {
	percents, err := cpu.PercentWithContext(ctx, h.sample, false)
	if err != nil {
		return Usage{}, fmt.Errorf("failed to read cpu usage: %w", err)
	}
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Usage{}, fmt.Errorf("failed to read memory usage: %w", err)
	}

	usage := Usage{RAMPercent: vm.UsedPercent}
	if len(percents) > 0 {
		usage.CPUPercent = percents[0]
	}
	return usage, nil
}
