package bench

import (
	"time"

	"golang.org/x/sys/unix"
)

// CPUTime is processor time consumed by the process.
type CPUTime struct {
	User   time.Duration
	System time.Duration
}

// Sub returns c - o.
func (c CPUTime) Sub(o CPUTime) CPUTime {
	return CPUTime{User: c.User - o.User, System: c.System - o.System}
}

// Total returns user plus system time.
func (c CPUTime) Total() time.Duration {
	return c.User + c.System
}

// sampleCPU reads the process rusage. A failed sample reads as zero so a
// run never fails on accounting.
func sampleCPU() CPUTime {
	var ru unix.Rusage

	err := unix.Getrusage(unix.RUSAGE_SELF, &ru)
	if err != nil {
		return CPUTime{}
	}

	return CPUTime{
		User:   time.Duration(ru.Utime.Nano()),
		System: time.Duration(ru.Stime.Nano()),
	}
}
