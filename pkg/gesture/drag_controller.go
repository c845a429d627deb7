// Package gesture 实现插头拖拽手势：跟踪拖拽位置，检测与插座的接近程度，
// 并在首次进入阈值时发出一次性的 Connected 通知。
//
// 控制器只维护状态，不接触任何绘制。视图每帧调用 ComputeLayout 获取渲染模型。
package gesture

import (
	"log"
	"math"

	"github.com/decker502/carnival/pkg/config"
	"github.com/decker502/carnival/pkg/event"
)

// Point 二维坐标
type Point struct {
	X, Y float64
}

// Add 返回 p + v
func (p Point) Add(v config.Vec) Point {
	return Point{X: p.X + v.X, Y: p.Y + v.Y}
}

// Distance 返回两点间的欧氏距离
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Size 视口尺寸
type Size struct {
	Width, Height float64
}

// DragState 拖拽状态
// Connected 是单向锁存：一旦为 true 永不回退。
type DragState struct {
	Position  Point // 插头左上角
	Dragging  bool
	Connected bool
}

// Geometry 拖拽的几何参数
type Geometry struct {
	Viewport Size
	Target   Point // 插座中心
	Start    Point // 插头初始位置
}

// GeometryForViewport 按视口计算插座和初始位置
// 插座位于右侧垂直居中，插头位于左下角
func GeometryForViewport(viewport Size, cfg config.GestureConfig) Geometry {
	return Geometry{
		Viewport: viewport,
		Target:   Point{X: viewport.Width - cfg.TargetInset, Y: viewport.Height / 2},
		Start:    Point{X: cfg.StartX, Y: viewport.Height - cfg.StartInsetY},
	}
}

// ConnectedEvent 连接完成事件
type ConnectedEvent struct {
	Position Point // 吸附后的插头位置
}

// DragController 插头拖拽控制器
type DragController struct {
	cfg       config.GestureConfig
	geometry  Geometry
	state     DragState
	connected event.Signal[ConnectedEvent]
}

// NewDragController 创建拖拽控制器，插头位于 geometry.Start
func NewDragController(geometry Geometry, cfg config.GestureConfig) *DragController {
	return &DragController{
		cfg:      cfg,
		geometry: geometry,
		state:    DragState{Position: geometry.Start},
	}
}

// State 返回当前状态副本
func (c *DragController) State() DragState {
	return c.state
}

// Geometry 返回当前几何参数
func (c *DragController) Geometry() Geometry {
	return c.geometry
}

// Config 返回拖拽参数
func (c *DragController) Config() config.GestureConfig {
	return c.cfg
}

// OnConnected 订阅连接事件
func (c *DragController) OnConnected(fn func(ConnectedEvent)) event.Subscription {
	return c.connected.Subscribe(fn)
}

// Resize 视口变化时更新几何参数
// 连接后不再调整，避免插头离开插座
func (c *DragController) Resize(geometry Geometry) {
	if c.state.Connected {
		return
	}
	c.geometry = geometry
	if !c.state.Dragging {
		c.state.Position = c.clamp(c.state.Position)
	}
}

// PointerDown 开始拖拽（已连接时忽略）
func (c *DragController) PointerDown(p Point) {
	if c.state.Connected {
		return
	}
	c.state.Dragging = true
}

// PointerMove 拖拽中移动插头，并检测是否进入插座阈值
func (c *DragController) PointerMove(p Point) {
	if !c.state.Dragging || c.state.Connected {
		return
	}

	c.state.Position = c.clamp(Point{X: p.X - c.cfg.GrabOffset.X, Y: p.Y - c.cfg.GrabOffset.Y})

	if c.ProbeDistance() < c.cfg.ProximityThreshold {
		c.connect()
	}
}

// PointerUp 结束拖拽，没有其他副作用
func (c *DragController) PointerUp() {
	c.state.Dragging = false
}

// ProbeDistance 插头有效中心到插座中心的距离
func (c *DragController) ProbeDistance() float64 {
	return c.state.Position.Add(c.cfg.ProbeOffset).Distance(c.geometry.Target)
}

// connect 完成连接：锁存、吸附、通知。重入时为空操作。
func (c *DragController) connect() {
	if c.state.Connected {
		return
	}
	c.state.Connected = true
	c.state.Dragging = false
	c.state.Position = c.geometry.Target.Add(c.cfg.SnapOffset)

	log.Printf("[GestureDrag] Connected at (%.0f, %.0f)", c.state.Position.X, c.state.Position.Y)
	c.connected.Emit(ConnectedEvent{Position: c.state.Position})
}

// clamp 将插头限制在视口内（扣除插头尺寸和边距）
func (c *DragController) clamp(p Point) Point {
	minX, minY := c.cfg.EdgeMargin, c.cfg.EdgeMargin
	maxX := c.geometry.Viewport.Width - c.cfg.TokenSize - c.cfg.EdgeMargin
	maxY := c.geometry.Viewport.Height - c.cfg.TokenSize - c.cfg.EdgeMargin
	return Point{X: clampRange(p.X, minX, maxX), Y: clampRange(p.Y, minY, maxY)}
}

// clampRange 视口过小（max < min）时取 min
func clampRange(v, min, max float64) float64 {
	return math.Max(min, math.Min(v, max))
}
