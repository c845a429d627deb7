package scenes

import (
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/decker502/carnival/pkg/config"
	"github.com/decker502/carnival/pkg/gesture"
	"github.com/decker502/carnival/pkg/timing"
)

const (
	plugInstruction = "Drag the plug to connect"
	plugFadeOut     = 0.5 // 拖拽层淡出时长（秒）
	sparkCount      = 8
)

var (
	colorWire      = color.RGBA{51, 51, 51, 255}
	colorWireGlow  = color.RGBA{255, 214, 10, 255}
	colorPlate     = color.RGBA{238, 232, 222, 255}
	colorPlateEdge = color.RGBA{187, 187, 187, 255}
	colorPlug      = color.RGBA{245, 245, 245, 255}
	colorProng     = color.RGBA{190, 190, 200, 255}
)

// plugOverlay 插头拖拽层
type plugOverlay struct {
	*toggle
	cfg         config.GestureConfig
	connected   bool
	connectedAt time.Duration
}

func newPlugOverlay(clock timing.Clock, cfg config.GestureConfig, visible bool) *plugOverlay {
	return &plugOverlay{toggle: newToggle(clock, visible), cfg: cfg}
}

// markConnected 记录连接时刻，用于火花和电线发光
func (o *plugOverlay) markConnected() {
	if o.connected {
		return
	}
	o.connected = true
	o.connectedAt = o.clock.Now()
}

// sinceConnect 连接后经过的时长
func (o *plugOverlay) sinceConnect() time.Duration {
	if !o.connected {
		return 0
	}
	return o.clock.Now() - o.connectedAt
}

func (o *plugOverlay) sparking() bool {
	return o.connected && o.sinceConnect() < o.cfg.SparkDuration
}

func (o *plugOverlay) wireGlowing() bool {
	return o.connected && o.sinceConnect() >= o.cfg.WireGlowDelay
}

// alpha 可见时为 1，隐藏后在淡出时长内逐渐消失
func (o *plugOverlay) alpha() float64 {
	if o.Visible() {
		return 1
	}
	return max(1-o.Elapsed()/plugFadeOut, 0)
}

func (o *plugOverlay) draw(screen *ebiten.Image, model gesture.RenderModel, viewport gesture.Size, face *text.GoTextFace) {
	a := o.alpha()
	if a <= 0 {
		return
	}

	fillRect(screen, rect{Width: viewport.Width, Height: viewport.Height}, withAlpha(colorNight, a))
	if !model.Connected {
		drawTextCentered(screen, plugInstruction, face, rect{Width: viewport.Width, Height: viewport.Height}, withAlpha(colorMuted, a))
	}

	// 电线
	wireColor := colorWire
	if o.wireGlowing() {
		wireColor = colorWireGlow
		drawPolyline(screen, model.Wire, 10, withAlpha(colorWireGlow, a*0.25))
	}
	drawPolyline(screen, model.Wire, 5, withAlpha(wireColor, a))

	// 插座面板
	t := model.Target
	plate := rect{X: t.X + 5, Y: t.Y - 15, Width: 70, Height: 100}
	fillRect(screen, plate, withAlpha(colorPlate, a))
	strokeRect(screen, plate, 2, withAlpha(colorPlateEdge, a))
	socket := rect{X: t.X + 18, Y: t.Y + 8, Width: 44, Height: 50}
	fillRect(screen, socket, withAlpha(colorInk, a))
	fillRect(screen, rect{X: t.X + 27, Y: t.Y + 18, Width: 7, Height: 16}, withAlpha(color.RGBA{A: 255}, a))
	fillRect(screen, rect{X: t.X + 46, Y: t.Y + 18, Width: 7, Height: 16}, withAlpha(color.RGBA{A: 255}, a))
	fillCircle(screen, point{X: t.X + 40, Y: t.Y + 47}, 4.5, withAlpha(color.RGBA{A: 255}, a))

	// 插头
	p := model.Token
	body := rect{X: p.X, Y: p.Y + 20, Width: p.Width * 0.8, Height: p.Height * 0.6}
	if model.Dragging {
		fillRect(screen, rect{X: body.X - 3, Y: body.Y - 3, Width: body.Width + 6, Height: body.Height + 6}, withAlpha(colorYellow, a*0.3))
	}
	fillRect(screen, body, withAlpha(colorPlug, a))
	strokeRect(screen, body, 1, withAlpha(colorPlateEdge, a))
	fillRect(screen, rect{X: body.X + body.Width, Y: body.Y + 10, Width: 16, Height: 6}, withAlpha(colorProng, a))
	fillRect(screen, rect{X: body.X + body.Width, Y: body.Y + body.Height - 16, Width: 16, Height: 6}, withAlpha(colorProng, a))

	if o.sparking() {
		o.drawSparks(screen, t.Center(), a)
	}
}

func (o *plugOverlay) drawSparks(screen *ebiten.Image, c point, a float64) {
	progress := o.sinceConnect().Seconds() / o.cfg.SparkDuration.Seconds()
	inner, outer := 10+40*progress, 20+60*progress
	clr := withAlpha(colorYellow, a*(1-progress))
	for i := range sparkCount {
		angle := float64(i) * 2 * math.Pi / sparkCount
		cos, sin := math.Cos(angle), math.Sin(angle)
		drawPolyline(screen, []point{
			{X: c.X + cos*inner, Y: c.Y + sin*inner},
			{X: c.X + cos*outer, Y: c.Y + sin*outer},
		}, 3, clr)
	}
}
