package scenes

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/decker502/carnival/pkg/gesture"
)

// 场景内统一使用拖拽包的几何类型
type (
	rect  = gesture.Rect
	point = gesture.Point
)

// 调色板
var (
	colorNight      = color.RGBA{26, 10, 46, 255}
	colorNightLight = color.RGBA{58, 20, 84, 255}
	colorPink       = color.RGBA{255, 64, 160, 255}
	colorCyan       = color.RGBA{64, 224, 255, 255}
	colorYellow     = color.RGBA{255, 214, 10, 255}
	colorWhite      = color.RGBA{255, 255, 255, 255}
	colorMuted      = color.RGBA{200, 190, 215, 255}
	colorXPBeige    = color.RGBA{236, 233, 216, 255}
	colorXPBlue     = color.RGBA{0, 84, 227, 255}
	colorXPRed      = color.RGBA{220, 38, 38, 255}
	colorInk        = color.RGBA{30, 30, 30, 255}
	colorCard       = color.RGBA{250, 248, 252, 255}
	colorShade      = color.RGBA{0, 0, 0, 178}
)

// fillRect 填充矩形
func fillRect(dst *ebiten.Image, r rect, clr color.Color) {
	vector.DrawFilledRect(dst, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), clr, true)
}

// strokeRect 描边矩形
func strokeRect(dst *ebiten.Image, r rect, width float32, clr color.Color) {
	vector.StrokeRect(dst, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), width, clr, true)
}

// fillCircle 填充圆
func fillCircle(dst *ebiten.Image, c point, radius float64, clr color.Color) {
	vector.DrawFilledCircle(dst, float32(c.X), float32(c.Y), float32(radius), clr, true)
}

// drawPolyline 依次连接各点
func drawPolyline(dst *ebiten.Image, pts []point, width float32, clr color.Color) {
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		vector.StrokeLine(dst, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), width, clr, true)
	}
}

// drawText 在 (x, y) 处绘制文本（左上角对齐）
func drawText(dst *ebiten.Image, s string, face *text.GoTextFace, x, y float64, clr color.Color) {
	if face == nil || s == "" {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(dst, s, face, op)
}

// drawTextCentered 在矩形内水平垂直居中绘制文本
func drawTextCentered(dst *ebiten.Image, s string, face *text.GoTextFace, r rect, clr color.Color) {
	if face == nil || s == "" {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(r.X+r.Width/2, r.Y+r.Height/2)
	op.ColorScale.ScaleWithColor(clr)
	op.PrimaryAlign = text.AlignCenter
	op.SecondaryAlign = text.AlignCenter
	text.Draw(dst, s, face, op)
}

// withAlpha 按透明度缩放颜色
func withAlpha(clr color.RGBA, alpha float64) color.RGBA {
	alpha = min(max(alpha, 0), 1)
	return color.RGBA{
		R: uint8(float64(clr.R) * alpha),
		G: uint8(float64(clr.G) * alpha),
		B: uint8(float64(clr.B) * alpha),
		A: uint8(float64(clr.A) * alpha),
	}
}

// clip 返回裁剪到矩形的子图，超出部分的绘制会被丢弃
func clip(dst *ebiten.Image, r rect) *ebiten.Image {
	bounds := image.Rect(int(r.X), int(r.Y), int(r.X+r.Width), int(r.Y+r.Height))
	return dst.SubImage(bounds).(*ebiten.Image)
}

// lineHeight 字体行高
func lineHeight(face *text.GoTextFace) float64 {
	if face == nil {
		return 0
	}
	return face.Size * 1.4
}
