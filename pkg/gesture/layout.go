package gesture

import "math"

// 电线锚点（相对插头左上角）
const (
	wireAnchorX = 20.0
	wireAnchorY = 35.0

	// wireSegments 贝塞尔曲线采样段数
	wireSegments = 32
)

// Rect 矩形区域
type Rect struct {
	X, Y, Width, Height float64
}

// Center 返回矩形中心
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contains 判断点是否在矩形内
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// RenderModel 一帧的插头/插座/电线渲染数据
type RenderModel struct {
	Token     Rect    // 插头
	Target    Rect    // 插座
	Wire      []Point // 从左边缘到插头的电线折线
	Dragging  bool
	Connected bool
}

// ComputeLayout 由状态计算渲染模型
// 纯函数：相同输入得到相同输出，不修改任何状态。
func ComputeLayout(state DragState, geometry Geometry, tokenSize float64) RenderModel {
	return RenderModel{
		Token: Rect{X: state.Position.X, Y: state.Position.Y, Width: tokenSize, Height: tokenSize},
		Target: Rect{
			X:      geometry.Target.X - tokenSize/2,
			Y:      geometry.Target.Y - tokenSize/2,
			Width:  tokenSize,
			Height: tokenSize,
		},
		Wire:      WirePath(state.Position, wireSegments),
		Dragging:  state.Dragging,
		Connected: state.Connected,
	}
}

// WirePath 采样从窗口左边缘到插头的三次贝塞尔曲线
// 控制点随水平跨度做正弦摆动，让电线看起来自然下垂。
func WirePath(token Point, segments int) []Point {
	if segments < 1 {
		segments = 1
	}
	start := Point{X: 0, Y: token.Y + wireAnchorY}
	end := Point{X: token.X + wireAnchorX, Y: token.Y + wireAnchorY}
	dx := end.X - start.X
	sway := math.Sin(dx * 0.01)

	c1 := Point{X: start.X + dx*0.3, Y: start.Y + 50*sway}
	c2 := Point{X: start.X + dx*0.7, Y: end.Y - 30*sway}

	points := make([]Point, 0, segments+1)
	for i := 0; i <= segments; i++ {
		t := float64(i) / float64(segments)
		points = append(points, cubicBezier(start, c1, c2, end, t))
	}
	return points
}

func cubicBezier(p0, p1, p2, p3 Point, t float64) Point {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	d := t * t * t
	return Point{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}
