package scenes

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/decker502/carnival/pkg/config"
	"github.com/decker502/carnival/pkg/timing"
	"github.com/decker502/carnival/pkg/utils"
)

const (
	toastTitle     = "Relationship Status Update"
	toastBody      = "YOU JUST ACCEPTED TO BE HIS VALENTINE WITHOUT READING TERMS AND CONDITIONS... MAYBE."
	toastFooter    = "BUT DON'T WORRY, HE'S A KEEPER."
	toastSlideTime = 0.4 // 滑入时长（秒）
)

// notificationToast 右上角通知
type notificationToast struct {
	*toggle
	width float64
}

func newNotificationToast(clock timing.Clock, width float64) *notificationToast {
	return &notificationToast{toggle: newToggle(clock, false), width: width}
}

func (t *notificationToast) box() rect {
	slide := 0.0
	if t.Visible() {
		slide = (1 - utils.EaseOutCubic(t.Elapsed()/toastSlideTime)) * (config.ToastWidth + config.ToastMargin)
	}
	return rect{
		X:      t.width - config.ToastWidth - config.ToastMargin + slide,
		Y:      config.ToastMargin,
		Width:  config.ToastWidth,
		Height: config.ToastHeight,
	}
}

func (t *notificationToast) closeRect() rect {
	b := t.box()
	return rect{X: b.X + b.Width - 28, Y: b.Y + 8, Width: 20, Height: 20}
}

func (t *notificationToast) draw(screen *ebiten.Image, body, title *text.GoTextFace) {
	if !t.Visible() {
		return
	}
	b := t.box()
	fillRect(screen, b, colorCard)
	fillRect(screen, rect{X: b.X, Y: b.Y, Width: 4, Height: b.Height}, colorXPBlue)
	drawText(screen, toastTitle, title, b.X+16, b.Y+10, colorInk)
	drawTextCentered(screen, "x", title, t.closeRect(), colorInk)

	y := b.Y + 40
	for _, line := range utils.WrapText(toastBody, body, b.Width-32) {
		drawText(screen, line, body, b.X+16, y, colorInk)
		y += lineHeight(body)
	}
	drawText(screen, toastFooter, body, b.X+16, y+6, colorPink)
}
