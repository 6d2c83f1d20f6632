package cmd

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
)

// Get the default number of cpu tracers; one per logical core.
func defaultWorkers() int {
	count, err := cpu.Counts(true)
	if err != nil || count <= 0 {
		logger.Debugf("could not query logical core count (%v); using runtime.NumCPU", err)
		return runtime.NumCPU()
	}
	return count
}
