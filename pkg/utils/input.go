// Package utils 提供通用工具函数
package utils

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// PointerSample 一帧的指针采样
type PointerSample struct {
	Pressed bool // 鼠标左键或触摸是否按下
	X, Y    int  // 指针位置；触摸释放时无位置
	Touch   bool // 是否为触摸输入
}

// PointerSampler 读取当前帧的指针状态
type PointerSampler interface {
	Sample() PointerSample
}

// ebitenSampler 从 Ebitengine 读取鼠标和触摸状态，优先触摸
type ebitenSampler struct {
	touchID ebiten.TouchID
	hasID   bool
}

func (s *ebitenSampler) Sample() PointerSample {
	// 跟踪第一个按下的触摸点，直到它抬起
	if !s.hasID {
		if ids := inpututil.AppendJustPressedTouchIDs(nil); len(ids) > 0 {
			s.touchID, s.hasID = ids[0], true
		}
	}
	if s.hasID {
		if inpututil.IsTouchJustReleased(s.touchID) {
			s.hasID = false
			return PointerSample{Touch: true}
		}
		x, y := ebiten.TouchPosition(s.touchID)
		return PointerSample{Pressed: true, X: x, Y: y, Touch: true}
	}

	x, y := ebiten.CursorPosition()
	return PointerSample{
		Pressed: ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		X:       x,
		Y:       y,
	}
}

// PointerPhase 指针事件阶段
type PointerPhase int

const (
	// PointerNone 本帧无按下/移动/抬起
	PointerNone PointerPhase = iota
	// PointerDown 刚按下
	PointerDown
	// PointerMove 按住移动
	PointerMove
	// PointerUp 刚抬起
	PointerUp
)

// PointerEvent 指针事件
type PointerEvent struct {
	Phase PointerPhase
	X, Y  int
	Touch bool
}

// PointerTracker 把逐帧采样转换为按下/移动/抬起事件
// 触摸抬起时使用最后一次已知位置。
type PointerTracker struct {
	sampler PointerSampler
	pressed bool
	touch   bool
	x, y    int
}

// NewPointerTracker 创建指针跟踪器
// sampler 为 nil 时读取 Ebitengine 的真实输入
func NewPointerTracker(sampler PointerSampler) *PointerTracker {
	if sampler == nil {
		sampler = &ebitenSampler{}
	}
	return &PointerTracker{sampler: sampler}
}

// Update 采样一次并返回本帧事件（每帧调用一次）
func (pt *PointerTracker) Update() PointerEvent {
	s := pt.sampler.Sample()
	wasPressed := pt.pressed
	pt.pressed = s.Pressed

	// 触摸抬起的采样没有位置，保留上一帧的坐标
	if s.Pressed || !s.Touch {
		moved := s.X != pt.x || s.Y != pt.y
		pt.x, pt.y = s.X, s.Y
		pt.touch = s.Touch
		switch {
		case s.Pressed && !wasPressed:
			return pt.event(PointerDown)
		case s.Pressed && moved:
			return pt.event(PointerMove)
		}
	}
	if wasPressed && !s.Pressed {
		return pt.event(PointerUp)
	}
	return pt.event(PointerNone)
}

// Position 返回最后一次已知的指针位置（可用于悬停检测）
func (pt *PointerTracker) Position() (int, int) {
	return pt.x, pt.y
}

// Pressed 指针当前是否按下
func (pt *PointerTracker) Pressed() bool {
	return pt.pressed
}

// IsTouch 最近一次输入是否来自触摸
func (pt *PointerTracker) IsTouch() bool {
	return pt.touch
}

func (pt *PointerTracker) event(phase PointerPhase) PointerEvent {
	return PointerEvent{Phase: phase, X: pt.x, Y: pt.y, Touch: pt.touch}
}
