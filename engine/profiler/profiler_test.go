package profiler

import (
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestRecordCountsOutcomes(t *testing.T) {
	p := NewProfiler()
	p.Record(FrameRendered)
	p.Record(FrameRendered)
	p.Record(FrameSkipped)
	p.Record(FrameReconfigured)

	got := p.Stats()
	if got.Rendered != 2 || got.Skipped != 1 || got.Reconfigured != 1 {
		t.Fatalf("Stats = %+v, want 2 rendered, 1 skipped, 1 reconfigured", got)
	}
}

func TestTickReportsFPSAfterInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithClock(clock.now), WithInterval(time.Second))

	for i := 0; i < 30; i++ {
		p.Record(FrameRendered)
	}
	p.Record(FrameSkipped)

	clock.advance(500 * time.Millisecond)
	if p.Tick() {
		t.Fatalf("Tick reported before the interval elapsed")
	}

	clock.advance(time.Second)
	if !p.Tick() {
		t.Fatalf("Tick did not report after the interval")
	}
	if fps := p.Stats().FPS; fps != 20 {
		t.Fatalf("FPS = %v, want 20 (30 rendered frames over 1.5s)", fps)
	}

	clock.advance(2 * time.Second)
	if !p.Tick() {
		t.Fatalf("second interval not reported")
	}
	if fps := p.Stats().FPS; fps != 0 {
		t.Fatalf("FPS = %v after an idle interval, want 0", fps)
	}
}

func TestFrameOutcomeString(t *testing.T) {
	cases := map[FrameOutcome]string{
		FrameRendered:     "rendered",
		FrameSkipped:      "skipped",
		FrameReconfigured: "reconfigured",
		FrameOutcome(42):  "unknown",
	}
	for o, want := range cases {
		if o.String() != want {
			t.Errorf("%d.String() = %q, want %q", int(o), o.String(), want)
		}
	}
}
