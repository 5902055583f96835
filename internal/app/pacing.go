package app

import (
	"fmt"
	"time"
)

// TitlePeriod is how often the window title statistics refresh.
const TitlePeriod = 300 * time.Millisecond

// Pacer caps the frame rate. A frame is due once the interval has passed
// since the previous due frame.
type Pacer struct {
	interval time.Duration
	last     time.Time
}

// NewPacer returns a pacer for fps frames per second, starting at now.
// fps <= 0 disables the cap.
func NewPacer(fps int, now time.Time) *Pacer {
	p := &Pacer{last: now}
	if fps > 0 {
		p.interval = time.Second / time.Duration(fps)
	}
	return p
}

// Due reports whether a frame should run at now and returns the time since
// the previous due frame.
func (p *Pacer) Due(now time.Time) (time.Duration, bool) {
	dt := now.Sub(p.last)
	if dt < p.interval {
		return dt, false
	}
	p.last = now
	return dt, true
}

// Interval returns the minimum frame time.
func (p *Pacer) Interval() time.Duration {
	return p.interval
}

// Meter formats frame statistics for the window title at most once per period.
type Meter struct {
	period time.Duration
	last   time.Time
}

// NewMeter returns a meter that first reports one period after now.
func NewMeter(now time.Time) *Meter {
	return &Meter{period: TitlePeriod, last: now}
}

// Title returns the title for a frame that took dt, and false while the
// previous title is still fresh.
func (m *Meter) Title(now time.Time, dt time.Duration) (string, bool) {
	if now.Sub(m.last) < m.period || dt <= 0 {
		return "", false
	}
	m.last = now
	return FormatTitle(dt), true
}

// FormatTitle formats the frame rate and frame time of a frame that took dt.
func FormatTitle(dt time.Duration) string {
	fps := int(time.Second / dt)
	return fmt.Sprintf("FPS: %d / %.5f ms", fps, float64(dt)/float64(time.Millisecond))
}
