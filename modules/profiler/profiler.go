package profiler

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"time"
)

// Profiler writes a CPU profile for the life of the process and a heap
// profile when it stops. Either path may be empty.
type Profiler struct {
	CPUProfile *os.File
	memPath    string
	StartTime  time.Time
}

func New() *Profiler {
	return &Profiler{}
}

func (p *Profiler) Start(cpuProfilePath, memProfilePath string) error {
	p.StartTime = time.Now()
	p.memPath = memProfilePath

	if cpuProfilePath == "" {
		return nil
	}

	f, err := os.Create(cpuProfilePath)
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return fmt.Errorf("could not start CPU profile: %w", err)
	}
	p.CPUProfile = f
	return nil
}

func (p *Profiler) Stop() error {
	var errs []error

	if p.CPUProfile != nil {
		pprof.StopCPUProfile()
		errs = append(errs, p.CPUProfile.Close())
		p.CPUProfile = nil
	}

	if p.memPath != "" {
		errs = append(errs, writeHeapProfile(p.memPath))
	}

	return errors.Join(errs...)
}

func writeHeapProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create memory profile: %w", err)
	}
	defer f.Close()

	runtime.GC() // get up-to-date statistics
	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("could not write memory profile: %w", err)
	}
	return nil
}

func (p *Profiler) GetStats() ProfileStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return ProfileStats{
		Uptime:       time.Since(p.StartTime),
		AllocatedMem: m.Alloc,
		TotalAlloc:   m.TotalAlloc,
		Sys:          m.Sys,
		NumGC:        m.NumGC,
	}
}

type ProfileStats struct {
	Uptime       time.Duration
	AllocatedMem uint64
	TotalAlloc   uint64
	Sys          uint64
	NumGC        uint32
}
