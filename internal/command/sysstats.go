package command

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
)

// cpuSampleWindow is how long the utilization sample runs. Short enough not
// to be audible in the response latency.
const cpuSampleWindow = 200 * time.Millisecond

// HostStats reads CPU utilization from the local machine.
type HostStats struct{}

func NewHostStats() *HostStats { return &HostStats{} }

func (HostStats) CPUPercent(ctx context.Context) (float64, error) {
	percents, err := cpu.PercentWithContext(ctx, cpuSampleWindow, false)
	if err != nil {
		return 0, err
	}
	if len(percents) == 0 {
		return 0, fmt.Errorf("no cpu sample available")
	}
	return percents[0], nil
}
