// Package scrollphase 实现首屏的三段式滚轮门控：
// Centered（居中）→ Animating（展开动画，锁定输入）→ Expanded（已展开，终态）。
//
// 控制器只在首屏区块足够可见时挂载滚轮监听，展开后永久卸载，之后页面恢复正常滚动。
package scrollphase

import (
	"log"
	"time"

	"github.com/decker502/carnival/pkg/config"
	"github.com/decker502/carnival/pkg/event"
	"github.com/decker502/carnival/pkg/input"
	"github.com/decker502/carnival/pkg/timing"
)

// Phase 首屏阶段
type Phase int

const (
	// PhaseCentered 初始状态，等待第一次向下滚动
	PhaseCentered Phase = iota
	// PhaseAnimating 展开动画进行中，所有滚轮输入被吞掉
	PhaseAnimating
	// PhaseExpanded 已展开，终态
	PhaseExpanded
)

// String 返回阶段名称
func (p Phase) String() string {
	switch p {
	case PhaseCentered:
		return "centered"
	case PhaseAnimating:
		return "animating"
	case PhaseExpanded:
		return "expanded"
	default:
		return "unknown"
	}
}

// PhaseChange 阶段变化事件
type PhaseChange struct {
	From, To Phase
}

// Controller 首屏滚轮门控控制器
type Controller struct {
	cfg   config.HeroConfig
	wheel input.WheelSource
	clock timing.Clock

	phase       Phase
	hasExpanded bool // 独立于 phase 的永久锁存
	tornDown    bool

	listener  event.Subscription
	timer     *timing.Task
	animStart time.Duration

	changed event.Signal[PhaseChange]
}

// NewController 创建控制器
// 创建时不挂载监听，由 ObserveVisibility 决定何时挂载。
func NewController(wheel input.WheelSource, clock timing.Clock, cfg config.HeroConfig) *Controller {
	return &Controller{
		cfg:   cfg,
		wheel: wheel,
		clock: clock,
		phase: PhaseCentered,
	}
}

// Phase 返回当前阶段
func (c *Controller) Phase() Phase {
	return c.phase
}

// HasExpanded 是否曾经展开过
func (c *Controller) HasExpanded() bool {
	return c.hasExpanded
}

// Listening 滚轮监听是否已挂载
func (c *Controller) Listening() bool {
	return c.listener != nil
}

// OnPhaseChange 订阅阶段变化
func (c *Controller) OnPhaseChange(fn func(PhaseChange)) event.Subscription {
	return c.changed.Subscribe(fn)
}

// Progress 返回展开动画进度 [0, 1]，仅用于渲染
func (c *Controller) Progress() float64 {
	switch c.phase {
	case PhaseCentered:
		return 0
	case PhaseAnimating:
		elapsed := c.clock.Now() - c.animStart
		p := float64(elapsed) / float64(c.cfg.TransitionDuration)
		if p > 1 {
			return 1
		}
		return p
	default:
		return 1
	}
}

// ObserveVisibility 根据首屏可见比例挂载或卸载滚轮监听
// 可见比例 >= 阈值且尚未展开时挂载，否则卸载。重复调用不会重复挂载。
func (c *Controller) ObserveVisibility(ratio float64) {
	if c.tornDown || c.hasExpanded {
		c.detach()
		return
	}
	if ratio >= c.cfg.VisibilityThreshold {
		c.attach()
	} else {
		c.detach()
	}
}

// HandleWheel 处理滚轮输入
// 挂载时作为监听回调被调用；未挂载时调用方不应直接调用。
func (c *Controller) HandleWheel(e *input.WheelEvent) {
	if c.hasExpanded || c.tornDown {
		return
	}

	switch c.phase {
	case PhaseCentered:
		if e.DeltaY <= 0 {
			return
		}
		e.PreventDefault()
		c.startAnimating()
	case PhaseAnimating:
		e.PreventDefault()
	}
}

// Teardown 取消待执行的过渡并卸载监听
func (c *Controller) Teardown() {
	if c.tornDown {
		return
	}
	c.tornDown = true
	if c.timer.Cancel() {
		log.Printf("[ScrollPhase] Teardown cancelled pending expansion")
	}
	c.timer = nil
	c.detach()
	c.changed.Clear()
}

func (c *Controller) startAnimating() {
	c.animStart = c.clock.Now()
	c.setPhase(PhaseAnimating)
	c.timer = c.clock.After(c.cfg.TransitionDuration, c.finishExpansion)
}

func (c *Controller) finishExpansion() {
	c.timer = nil
	if c.tornDown || c.phase != PhaseAnimating {
		return
	}
	c.hasExpanded = true
	c.detach()
	c.setPhase(PhaseExpanded)
}

// setPhase 只允许向前推进
func (c *Controller) setPhase(next Phase) {
	if next <= c.phase {
		log.Printf("[ScrollPhase] Warning: ignored backward transition %s -> %s", c.phase, next)
		return
	}
	prev := c.phase
	c.phase = next
	log.Printf("[ScrollPhase] %s -> %s", prev, next)
	c.changed.Emit(PhaseChange{From: prev, To: next})
}

func (c *Controller) attach() {
	if c.listener != nil {
		return
	}
	c.listener = c.wheel.OnWheel(c.HandleWheel)
}

func (c *Controller) detach() {
	if c.listener == nil {
		return
	}
	c.listener.Unsubscribe()
	c.listener = nil
}
