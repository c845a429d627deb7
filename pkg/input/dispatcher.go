// Package input 提供全局输入事件的订阅能力
//
// Dispatcher 取代浏览器中的 window 级事件监听：场景每帧把采样到的输入派发给它，
// 控制器通过注入的 Source 接口订阅/撤销，从而可以在没有真实窗口的情况下测试。
package input

import (
	"github.com/decker502/carnival/pkg/event"
)

// WheelEvent 滚轮事件
// DeltaY > 0 表示向下（向前）滚动。监听器可调用 PreventDefault 阻止页面滚动。
type WheelEvent struct {
	DeltaX, DeltaY float64

	defaultPrevented bool
}

// PreventDefault 阻止本次滚轮输入的默认滚动行为
func (e *WheelEvent) PreventDefault() {
	e.defaultPrevented = true
}

// DefaultPrevented 是否已被某个监听器阻止
func (e *WheelEvent) DefaultPrevented() bool {
	return e.defaultPrevented
}

// ScrollEvent 页面滚动事件，OffsetY 为滚动后的纵向偏移
type ScrollEvent struct {
	OffsetY float64
}

// ClickEvent 点击事件（鼠标左键或触摸按下）
type ClickEvent struct {
	X, Y float64
}

// KeyEvent 按键事件
type KeyEvent struct {
	Key string
}

// WheelSource 可订阅滚轮事件
type WheelSource interface {
	OnWheel(fn func(*WheelEvent)) event.Subscription
}

// ScrollSource 可订阅页面滚动事件
type ScrollSource interface {
	OnScroll(fn func(ScrollEvent)) event.Subscription
}

// GestureSource 可订阅能视为"用户手势"的事件（点击、滚动、按键）
type GestureSource interface {
	ScrollSource
	OnClick(fn func(ClickEvent)) event.Subscription
	OnKeyDown(fn func(KeyEvent)) event.Subscription
}

// Dispatcher 输入事件分发器
type Dispatcher struct {
	wheel  event.Signal[*WheelEvent]
	scroll event.Signal[ScrollEvent]
	click  event.Signal[ClickEvent]
	key    event.Signal[KeyEvent]
}

// NewDispatcher 创建分发器
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// OnWheel 订阅滚轮事件
func (d *Dispatcher) OnWheel(fn func(*WheelEvent)) event.Subscription {
	return d.wheel.Subscribe(fn)
}

// OnScroll 订阅页面滚动事件
func (d *Dispatcher) OnScroll(fn func(ScrollEvent)) event.Subscription {
	return d.scroll.Subscribe(fn)
}

// OnClick 订阅点击事件
func (d *Dispatcher) OnClick(fn func(ClickEvent)) event.Subscription {
	return d.click.Subscribe(fn)
}

// OnKeyDown 订阅按键事件
func (d *Dispatcher) OnKeyDown(fn func(KeyEvent)) event.Subscription {
	return d.key.Subscribe(fn)
}

// DispatchWheel 派发滚轮事件
// 返回 true 表示默认滚动被阻止
func (d *Dispatcher) DispatchWheel(e *WheelEvent) bool {
	d.wheel.Emit(e)
	return e.DefaultPrevented()
}

// DispatchScroll 派发页面滚动事件
func (d *Dispatcher) DispatchScroll(e ScrollEvent) {
	d.scroll.Emit(e)
}

// DispatchClick 派发点击事件
func (d *Dispatcher) DispatchClick(e ClickEvent) {
	d.click.Emit(e)
}

// DispatchKeyDown 派发按键事件
func (d *Dispatcher) DispatchKeyDown(e KeyEvent) {
	d.key.Emit(e)
}

// ListenerCounts 返回各类事件的监听器数量（调试和测试用）
func (d *Dispatcher) ListenerCounts() (wheel, scroll, click, key int) {
	return d.wheel.Len(), d.scroll.Len(), d.click.Len(), d.key.Len()
}
