package profiler

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/plat4rs-go/common"
)

// FrameOutcome classifies how a frame ended.
type FrameOutcome int

const (
	// FrameRendered is a frame that was drawn and presented.
	FrameRendered FrameOutcome = iota

	// FrameSkipped is a frame dropped on a transient surface error.
	FrameSkipped

	// FrameReconfigured is a frame lost to a surface loss, after which the surface was reconfigured.
	FrameReconfigured
)

// String returns the log name of the outcome.
func (o FrameOutcome) String() string {
	switch o {
	case FrameRendered:
		return "rendered"
	case FrameSkipped:
		return "skipped"
	case FrameReconfigured:
		return "reconfigured"
	default:
		return "unknown"
	}
}

// Stats is a snapshot of the frame counters.
type Stats struct {
	Rendered     uint64
	Skipped      uint64
	Reconfigured uint64

	// FPS is the rendered frame rate over the last completed interval.
	FPS float64
}

// Profiler counts frame outcomes and reports frame rate and memory statistics.
// Outputs stats to the shared logger at a configurable interval.
type Profiler struct {
	mu *sync.Mutex

	stats          Stats
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	now func() time.Time
}

// NewProfiler creates a new Profiler.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		mu:             &sync.Mutex{},
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Record counts one frame outcome. Rendered frames also feed the FPS measurement.
//
// Parameters:
//   - outcome: how the frame ended
func (p *Profiler) Record(outcome FrameOutcome) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch outcome {
	case FrameRendered:
		p.stats.Rendered++
		p.frameCount++
	case FrameSkipped:
		p.stats.Skipped++
	case FrameReconfigured:
		p.stats.Reconfigured++
	}
}

// Stats returns a snapshot of the counters.
//
// Returns:
//   - Stats: the current counters
func (p *Profiler) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Tick should be called once per loop iteration.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, frame outcomes, heap usage, allocation rate, GC count/pause times, total memory.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval || elapsed <= 0 {
		return false
	}

	p.stats.FPS = float64(p.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024

	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			pause := p.memStats.PauseNs[i%256] / 1000
			if pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	common.Logger().Info("frame stats",
		"fps", p.stats.FPS,
		"rendered", p.stats.Rendered,
		"skipped", p.stats.Skipped,
		"reconfigured", p.stats.Reconfigured,
		"heap_mb", allocMB,
		"alloc_rate_mb_s", allocRateMB,
		"gc", gcCount,
		"gc_last_us", lastPauseUs,
		"gc_max_us", maxPauseUs,
		"sys_mb", sysMB,
	)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
