// Package telemetry reports the health of the host machine running a
// long-lived boardwire process (the proxy server, chiefly). This is the
// operator workstation's CPU and memory, not the per-board temperature
// and fan readings in the timing log, which come from board hardware.
package telemetry

import (
	"log/slog"

	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/load"
	"github.com/shirou/gopsutil/mem"
)

// Snapshot is a point-in-time reading of the host's load.
type Snapshot struct {
	Load1          float64
	Load5          float64
	Load15         float64
	MemUsedPercent float64
	MemUsedBytes   uint64
	UptimeSeconds  uint64
}

// HostSnapshot samples the host's load averages, memory pressure and
// uptime.
func HostSnapshot() (Snapshot, error) {
	avg, err := load.Avg()
	if err != nil {
		return Snapshot{}, err
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return Snapshot{}, err
	}
	uptime, err := host.Uptime()
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		Load1:          avg.Load1,
		Load5:          avg.Load5,
		Load15:         avg.Load15,
		MemUsedPercent: vm.UsedPercent,
		MemUsedBytes:   vm.Used,
		UptimeSeconds:  uptime,
	}, nil
}

// Log writes the snapshot through logger at info level, one attribute
// per field.
func (s Snapshot) Log(logger *slog.Logger, msg string) {
	logger.Info(msg,
		"load1", s.Load1,
		"load5", s.Load5,
		"load15", s.Load15,
		"mem_used_percent", s.MemUsedPercent,
		"mem_used_bytes", s.MemUsedBytes,
		"uptime_s", s.UptimeSeconds,
	)
}
