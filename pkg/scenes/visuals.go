package scenes

import (
	"time"

	"github.com/decker502/carnival/pkg/timing"
)

// toggle 可显示/隐藏的视图，记录最近一次切换的时间用于淡入淡出
type toggle struct {
	clock   timing.Clock
	visible bool
	since   time.Duration
}

func newToggle(clock timing.Clock, visible bool) *toggle {
	return &toggle{clock: clock, visible: visible, since: clock.Now()}
}

func (t *toggle) Show() {
	if t.visible {
		return
	}
	t.visible = true
	t.since = t.clock.Now()
}

func (t *toggle) Hide() {
	if !t.visible {
		return
	}
	t.visible = false
	t.since = t.clock.Now()
}

// Visible 当前是否可见
func (t *toggle) Visible() bool {
	return t.visible
}

// Elapsed 距最近一次切换经过的秒数
func (t *toggle) Elapsed() float64 {
	return (t.clock.Now() - t.since).Seconds()
}
