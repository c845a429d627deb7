// Package sequence 编排跨组件的一次性时序事件：
//
//  1. 连接 → 揭幕：收到 Connected 后闪烁，再隐藏拖拽层、显示主内容
//  2. 滚动深度 → 条款对话框：首次越过深度阈值时打开，之后永不自动重开
//  3. 接受 → 通知：显示通知并定时自动关闭，手动关闭会取消定时
//
// 每条链只执行一次，所有定时任务和订阅都在 Teardown 时撤销。
package sequence

import (
	"log"
	"time"

	"github.com/decker502/carnival/pkg/config"
	"github.com/decker502/carnival/pkg/event"
	"github.com/decker502/carnival/pkg/gesture"
	"github.com/decker502/carnival/pkg/input"
	"github.com/decker502/carnival/pkg/timing"
)

// Visual 被编排的视图，只接收显示/隐藏指令
type Visual interface {
	Show()
	Hide()
}

// Visuals 编排涉及的全部视图
type Visuals struct {
	Flicker      Visual // 全屏闪烁层
	DragOverlay  Visual // 插头拖拽层
	MainContent  Visual // 主页面
	Dialog       Visual // 条款对话框
	Notification Visual // 通知
}

// ConnectSource 可订阅连接事件（即 gesture.DragController）
type ConnectSource interface {
	OnConnected(fn func(gesture.ConnectedEvent)) event.Subscription
}

// Revealed 主内容揭幕事件
type Revealed struct {
	At time.Duration
}

// Accepted 条款被接受事件
type Accepted struct {
	At time.Duration
}

// State 编排状态快照
type State struct {
	RevealStarted       bool // 揭幕链已启动（锁存）
	Flickering          bool
	Revealed            bool
	DialogTriggered     bool // 对话框已自动触发过（锁存）
	DialogOpen          bool
	Accepted            bool // 锁存
	NotificationVisible bool
}

// Orchestrator 时序编排器
type Orchestrator struct {
	cfg     config.SequenceConfig
	visuals Visuals
	tasks   *timing.Group
	subs    event.Group

	scrollSub   event.Subscription
	connectSub  event.Subscription
	dismissTask *timing.Task
	state       State
	tornDown    bool

	revealed event.Signal[Revealed]
	accepted event.Signal[Accepted]
}

// NewOrchestrator 创建编排器并订阅连接和滚动事件
func NewOrchestrator(connect ConnectSource, scroll input.ScrollSource, clock timing.Clock, visuals Visuals, cfg config.SequenceConfig) *Orchestrator {
	o := &Orchestrator{
		cfg:     cfg,
		visuals: visuals,
		tasks:   timing.NewGroup(clock),
	}
	o.connectSub = connect.OnConnected(o.handleConnected)
	o.scrollSub = scroll.OnScroll(o.handleScroll)
	o.subs.Add(o.connectSub)
	o.subs.Add(o.scrollSub)
	return o
}

// State 返回状态快照
func (o *Orchestrator) State() State {
	return o.state
}

// OnRevealed 订阅揭幕事件
func (o *Orchestrator) OnRevealed(fn func(Revealed)) event.Subscription {
	return o.revealed.Subscribe(fn)
}

// OnAccepted 订阅接受事件
func (o *Orchestrator) OnAccepted(fn func(Accepted)) event.Subscription {
	return o.accepted.Subscribe(fn)
}

// RevealNow 跳过插头环节直接揭幕（无闪烁），与连接触发共用同一个锁存
func (o *Orchestrator) RevealNow() {
	if o.tornDown || o.state.RevealStarted {
		return
	}
	o.state.RevealStarted = true
	o.connectSub.Unsubscribe()
	o.finishReveal()
}

// Accept 用户接受条款
// 返回 false 表示已经接受过，本次调用被忽略。
func (o *Orchestrator) Accept() bool {
	if o.tornDown || o.state.Accepted {
		return false
	}
	o.state.Accepted = true
	o.scrollSub.Unsubscribe()

	if o.state.DialogOpen {
		o.state.DialogOpen = false
		o.visuals.Dialog.Hide()
	}

	o.state.NotificationVisible = true
	o.visuals.Notification.Show()
	o.dismissTask = o.tasks.After(o.cfg.NotificationDuration, o.autoDismissNotification)

	log.Printf("[Sequence] Terms accepted, notification scheduled to close in %v", o.cfg.NotificationDuration)
	o.accepted.Emit(Accepted{At: o.tasks.Now()})
	return true
}

// DismissNotification 手动关闭通知并取消待执行的自动关闭
func (o *Orchestrator) DismissNotification() {
	if !o.state.NotificationVisible {
		return
	}
	o.dismissTask.Cancel()
	o.dismissTask = nil
	o.hideNotification()
}

// DismissDialog 未接受而关闭对话框，之后不会再自动打开
func (o *Orchestrator) DismissDialog() {
	if !o.state.DialogOpen {
		return
	}
	o.state.DialogOpen = false
	o.visuals.Dialog.Hide()
	log.Printf("[Sequence] Dialog dismissed without acceptance")
}

// Teardown 取消全部定时任务和订阅
func (o *Orchestrator) Teardown() {
	if o.tornDown {
		return
	}
	o.tornDown = true
	o.tasks.CancelAll()
	o.subs.UnsubscribeAll()
	o.revealed.Clear()
	o.accepted.Clear()
	o.dismissTask = nil
}

func (o *Orchestrator) handleConnected(gesture.ConnectedEvent) {
	if o.tornDown || o.state.RevealStarted {
		return
	}
	o.state.RevealStarted = true
	o.connectSub.Unsubscribe()

	log.Printf("[Sequence] Connected, flicker in %v", o.cfg.HandoffDelay)
	o.tasks.After(o.cfg.HandoffDelay, o.startFlicker)
}

func (o *Orchestrator) startFlicker() {
	o.state.Flickering = true
	o.visuals.Flicker.Show()
	o.tasks.After(o.cfg.FlickerDuration, func() {
		o.state.Flickering = false
		o.visuals.Flicker.Hide()
		o.finishReveal()
	})
}

func (o *Orchestrator) finishReveal() {
	o.visuals.DragOverlay.Hide()
	o.visuals.MainContent.Show()
	o.state.Revealed = true
	log.Printf("[Sequence] Main content revealed")
	o.revealed.Emit(Revealed{At: o.tasks.Now()})
}

func (o *Orchestrator) handleScroll(e input.ScrollEvent) {
	if o.state.DialogTriggered || o.state.Accepted {
		return
	}
	if e.OffsetY <= o.cfg.DialogScrollDepth {
		return
	}
	o.state.DialogTriggered = true
	o.scrollSub.Unsubscribe()

	o.state.DialogOpen = true
	o.visuals.Dialog.Show()
	log.Printf("[Sequence] Scroll offset %.0f passed %.0f, dialog opened", e.OffsetY, o.cfg.DialogScrollDepth)
}

func (o *Orchestrator) autoDismissNotification() {
	o.dismissTask = nil
	o.hideNotification()
}

func (o *Orchestrator) hideNotification() {
	o.state.NotificationVisible = false
	o.visuals.Notification.Hide()
}
