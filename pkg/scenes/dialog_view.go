package scenes

import (
	"math/rand/v2"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/decker502/carnival/pkg/config"
	"github.com/decker502/carnival/pkg/timing"
	"github.com/decker502/carnival/pkg/utils"
)

const (
	// declineFleeLimit 拒绝按钮最多躲闪次数，之后再次悬停按钮消失
	declineFleeLimit = 5
	// declineRunningAt 躲闪次数达到该值后按钮文字改变
	declineRunningAt = 3
	// closeShakeDuration 关闭按钮抖动时长
	closeShakeDuration = 500 * time.Millisecond

	dialogTitle       = "Cookie Usage Agreement v14.02.2026"
	dialogTitleBarH   = 30.0
	dialogButtonBarH  = 64.0
	dialogPadding     = 12.0
	acceptButtonWidth = 200.0
	declineButtonW    = 180.0
	dialogButtonH     = 32.0
)

// termsDialog 条款对话框
// 关闭按钮只会抖动；拒绝按钮在悬停时躲开，几次之后消失。
type termsDialog struct {
	*toggle

	lines     []string
	wrapped   []string
	wrapWidth float64
	scroll    float64

	hoverCount    int
	declineOffset point
	declineGone   bool
	hovering      bool
	shakeUntil    time.Duration

	rng           *rand.Rand
	width, height float64
}

func newTermsDialog(clock timing.Clock, terms string, rng *rand.Rand, width, height float64) *termsDialog {
	return &termsDialog{
		toggle: newToggle(clock, false),
		lines:  strings.Split(strings.TrimRight(terms, "\n"), "\n"),
		rng:    rng,
		width:  width,
		height: height,
	}
}

func (d *termsDialog) resize(width, height float64) {
	d.width, d.height = width, height
}

func (d *termsDialog) box() rect {
	return rect{
		X:      (d.width - config.DialogWidth) / 2,
		Y:      (d.height - config.DialogHeight) / 2,
		Width:  config.DialogWidth,
		Height: config.DialogHeight,
	}
}

func (d *termsDialog) closeRect() rect {
	b := d.box()
	return rect{X: b.X + b.Width - 26, Y: b.Y + 5, Width: 20, Height: 20}
}

func (d *termsDialog) contentRect() rect {
	b := d.box()
	return rect{
		X:      b.X + dialogPadding,
		Y:      b.Y + dialogTitleBarH + dialogPadding,
		Width:  b.Width - 2*dialogPadding,
		Height: b.Height - dialogTitleBarH - dialogButtonBarH - 2*dialogPadding,
	}
}

func (d *termsDialog) acceptRect() rect {
	b := d.box()
	return rect{
		X:      b.X + b.Width - dialogPadding - acceptButtonWidth,
		Y:      b.Y + b.Height - dialogButtonBarH + (dialogButtonBarH-dialogButtonH)/2,
		Width:  acceptButtonWidth,
		Height: dialogButtonH,
	}
}

// declineRect 拒绝按钮当前位置（含躲闪偏移）
func (d *termsDialog) declineRect() rect {
	a := d.acceptRect()
	return rect{
		X:      a.X - dialogPadding - declineButtonW + d.declineOffset.X,
		Y:      a.Y + d.declineOffset.Y,
		Width:  declineButtonW,
		Height: dialogButtonH,
	}
}

// declineVisible 拒绝按钮是否仍然可见
func (d *termsDialog) declineVisible() bool {
	return !d.declineGone
}

// declineLabel 拒绝按钮文字
func (d *termsDialog) declineLabel() string {
	if d.hoverCount >= declineRunningAt {
		return "Why Are You Running?"
	}
	return "I Decline"
}

// updateHover 指针进入拒绝按钮时躲开
// 只在"进入"的那一帧触发，停留在按钮上不会连续躲闪。
func (d *termsDialog) updateHover(p point) {
	if !d.Visible() || d.declineGone {
		d.hovering = false
		return
	}
	over := d.declineRect().Contains(p)
	if over && !d.hovering {
		d.flee()
	}
	d.hovering = over
}

func (d *termsDialog) flee() {
	if d.hoverCount >= declineFleeLimit {
		d.declineGone = true
		return
	}
	d.declineOffset = point{
		X: (d.rng.Float64() - 0.5) * 200,
		Y: (d.rng.Float64() - 0.5) * 100,
	}
	d.hoverCount++
}

// clickClose 关闭按钮不关闭对话框，只抖动
func (d *termsDialog) clickClose() {
	d.shakeUntil = d.clock.Now() + closeShakeDuration
}

// shaking 关闭按钮是否正在抖动
func (d *termsDialog) shaking() bool {
	return d.clock.Now() < d.shakeUntil
}

func (d *termsDialog) shakeOffset() float64 {
	if !d.shaking() {
		return 0
	}
	elapsed := (d.clock.Now() - (d.shakeUntil - closeShakeDuration)).Seconds()
	return utils.Shake(elapsed, closeShakeDuration.Seconds(), 5)
}

// scrollContent 滚动条款正文
func (d *termsDialog) scrollContent(delta, maxScroll float64) {
	d.scroll = min(max(d.scroll+delta, 0), max(maxScroll, 0))
}

func (d *termsDialog) wrap(face *text.GoTextFace, width float64) []string {
	if d.wrapped != nil && d.wrapWidth == width {
		return d.wrapped
	}
	d.wrapped = d.wrapped[:0]
	for _, line := range d.lines {
		if strings.TrimSpace(line) == "" {
			d.wrapped = append(d.wrapped, "")
			continue
		}
		d.wrapped = append(d.wrapped, utils.WrapText(line, face, width)...)
	}
	d.wrapWidth = width
	return d.wrapped
}

// contentHeight 正文总高度，用于限制滚动
func (d *termsDialog) contentHeight(face *text.GoTextFace) float64 {
	if face == nil {
		return 0
	}
	return float64(len(d.wrap(face, d.contentRect().Width-8))) * lineHeight(face)
}

func (d *termsDialog) draw(screen *ebiten.Image, body, title *text.GoTextFace) {
	if !d.Visible() {
		return
	}
	fade := min(d.Elapsed()/0.2, 1)
	fillRect(screen, rect{Width: d.width, Height: d.height}, withAlpha(colorShade, fade))

	b := d.box()
	fillRect(screen, b, colorXPBeige)
	strokeRect(screen, b, 3, colorXPBlue)

	// 标题栏
	bar := rect{X: b.X, Y: b.Y, Width: b.Width, Height: dialogTitleBarH}
	fillRect(screen, bar, colorXPBlue)
	drawText(screen, dialogTitle, title, b.X+8, b.Y+8, colorWhite)

	closeBtn := d.closeRect()
	closeBtn.X += d.shakeOffset()
	fillRect(screen, closeBtn, colorXPRed)
	drawTextCentered(screen, "x", title, closeBtn, colorWhite)

	// 正文
	content := d.contentRect()
	fillRect(screen, content, colorWhite)
	if body != nil {
		view := clip(screen, content)
		lh := lineHeight(body)
		y := content.Y + 4 - d.scroll
		for _, line := range d.wrap(body, content.Width-8) {
			if y > content.Y+content.Height {
				break
			}
			if y+lh >= content.Y {
				drawText(view, line, body, content.X+4, y, colorInk)
			}
			y += lh
		}
	}

	// 按钮
	accept := d.acceptRect()
	fillRect(screen, accept, colorWhite)
	strokeRect(screen, accept, 2, colorXPBlue)
	drawTextCentered(screen, "I Accept These Terms", title, accept, colorInk)

	if d.declineVisible() {
		decline := d.declineRect()
		fillRect(screen, decline, colorWhite)
		strokeRect(screen, decline, 1, colorInk)
		drawTextCentered(screen, d.declineLabel(), title, decline, colorInk)
	}
}
