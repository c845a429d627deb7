package scenes

import (
	"math"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/decker502/carnival/pkg/chat"
	"github.com/decker502/carnival/pkg/config"
	"github.com/decker502/carnival/pkg/timing"
	"github.com/decker502/carnival/pkg/utils"
)

const (
	chatHeader       = "Kaluii [Its on render.com , plz wait]"
	chatPlaceholder  = "Type your question here..."
	chatMobileHint   = "Tap a question above"
	chatMargin       = 24.0
	chatHeaderH      = 44.0
	chatInputH       = 36.0
	chatSuggestionH  = 26.0
	chatBubblePad    = 8.0
	chatMessageRatio = 0.72 // 消息气泡最大宽度占面板宽度的比例
)

// chatWidget 右下角聊天挂件
type chatWidget struct {
	*toggle
	width, height float64
	mobile        bool
	unread        int // 收起期间到达的回复数
}

func newChatWidget(clock timing.Clock, width, height float64, mobile bool) *chatWidget {
	return &chatWidget{toggle: newToggle(clock, false), width: width, height: height, mobile: mobile}
}

func (w *chatWidget) resize(width, height float64) {
	w.width, w.height = width, height
}

// messageAdded 收起时累计未读的回复
func (w *chatWidget) messageAdded(minimized bool, m chat.Message) {
	if minimized && m.From == chat.SenderBot {
		w.unread++
	}
}

func (w *chatWidget) markRead() {
	w.unread = 0
}

func (w *chatWidget) bubbleRect() rect {
	return rect{
		X:      w.width - chatMargin - config.ChatBubbleSize,
		Y:      w.height - chatMargin - config.ChatBubbleSize,
		Width:  config.ChatBubbleSize,
		Height: config.ChatBubbleSize,
	}
}

func (w *chatWidget) panelRect() rect {
	return rect{
		X:      w.width - chatMargin - config.ChatPanelWidth,
		Y:      w.height - chatMargin - config.ChatPanelHeight,
		Width:  config.ChatPanelWidth,
		Height: config.ChatPanelHeight,
	}
}

func (w *chatWidget) minimizeRect() rect {
	p := w.panelRect()
	return rect{X: p.X + p.Width - 34, Y: p.Y + 10, Width: 24, Height: 24}
}

func (w *chatWidget) inputRect() rect {
	p := w.panelRect()
	return rect{X: p.X + 10, Y: p.Y + p.Height - chatInputH - 10, Width: p.Width - 20 - chatInputH - 6, Height: chatInputH}
}

func (w *chatWidget) sendRect() rect {
	in := w.inputRect()
	return rect{X: in.X + in.Width + 6, Y: in.Y, Width: chatInputH, Height: chatInputH}
}

// suggestionRects 推荐问题按钮，自下而上排列在输入框上方
func (w *chatWidget) suggestionRects(n int) []rect {
	in := w.inputRect()
	rects := make([]rect, n)
	for i := range n {
		rects[i] = rect{
			X:      in.X,
			Y:      in.Y - float64(n-i)*(chatSuggestionH+4) - 4,
			Width:  w.panelRect().Width - 20,
			Height: chatSuggestionH,
		}
	}
	return rects
}

// suggestionAt 返回点中的推荐问题
func (w *chatWidget) suggestionAt(s *chat.Session, p point) (string, bool) {
	suggestions := s.Suggestions()
	for i, r := range w.suggestionRects(len(suggestions)) {
		if r.Contains(p) {
			return suggestions[i], true
		}
	}
	return "", false
}

func (w *chatWidget) draw(screen *ebiten.Image, s *chat.Session, now float64, body, small *text.GoTextFace) {
	if !w.Visible() {
		return
	}
	if s.Minimized() {
		b := w.bubbleRect()
		fillCircle(screen, b.Center(), b.Width/2, colorPink)
		drawTextCentered(screen, "?", body, b, colorWhite)
		if w.unread > 0 {
			badge := rect{X: b.X + b.Width - 14, Y: b.Y - 4, Width: 18, Height: 18}
			fillCircle(screen, badge.Center(), badge.Width/2, colorXPBlue)
			drawTextCentered(screen, strconv.Itoa(w.unread), small, badge, colorWhite)
		}
		return
	}

	p := w.panelRect()
	fillRect(screen, p, colorCard)
	strokeRect(screen, p, 1, colorMuted)

	header := rect{X: p.X, Y: p.Y, Width: p.Width, Height: chatHeaderH}
	fillRect(screen, header, colorNightLight)
	drawText(screen, chatHeader, small, p.X+12, p.Y+14, colorWhite)
	drawTextCentered(screen, "-", body, w.minimizeRect(), colorWhite)

	// 输入框
	in := w.inputRect()
	strokeRect(screen, in, 1, colorMuted)
	switch {
	case s.Input() != "":
		drawText(screen, s.Input(), body, in.X+10, in.Y+9, colorInk)
	case w.mobile:
		drawText(screen, chatMobileHint, body, in.X+10, in.Y+9, colorMuted)
	default:
		drawText(screen, chatPlaceholder, body, in.X+10, in.Y+9, colorMuted)
	}
	send := w.sendRect()
	fillCircle(screen, send.Center(), send.Width/2, colorXPBlue)
	drawTextCentered(screen, ">", body, send, colorWhite)

	// 推荐问题
	bottom := in.Y - 8
	suggestions := s.Suggestions()
	for i, r := range w.suggestionRects(len(suggestions)) {
		strokeRect(screen, r, 1, colorXPBlue)
		drawText(screen, suggestions[i], small, r.X+8, r.Y+6, colorXPBlue)
		bottom = min(bottom, r.Y-8)
	}

	// 消息：从最新一条开始自下而上绘制
	area := rect{X: p.X, Y: p.Y + chatHeaderH, Width: p.Width, Height: bottom - p.Y - chatHeaderH}
	view := clip(screen, area)
	y := area.Y + area.Height
	lh := lineHeight(body)

	if s.Typing() {
		y -= lh + 2*chatBubblePad
		for i := range 3 {
			bounce := math.Sin(now*8+float64(i)) * 2
			fillCircle(view, point{X: area.X + 24 + float64(i)*12, Y: y + lh/2 + chatBubblePad + bounce}, 3, colorMuted)
		}
	}

	maxW := area.Width * chatMessageRatio
	messages := s.Messages()
	for i := len(messages) - 1; i >= 0 && y > area.Y; i-- {
		m := messages[i]
		lines := utils.WrapText(m.Text, body, maxW-2*chatBubblePad)
		bubbleW := 0.0
		for _, line := range lines {
			bubbleW = max(bubbleW, utils.MeasureText(line, body))
		}
		bubbleW += 2 * chatBubblePad
		bubbleH := float64(len(lines))*lh + 2*chatBubblePad
		y -= bubbleH + 6

		x := area.X + 10
		bg, fg := colorXPBeige, colorInk
		if m.From == chat.SenderUser {
			x = area.X + area.Width - 10 - bubbleW
			bg, fg = colorXPBlue, colorWhite
		}
		fillRect(view, rect{X: x, Y: y, Width: bubbleW, Height: bubbleH}, bg)
		for j, line := range lines {
			drawText(view, line, body, x+chatBubblePad, y+chatBubblePad+float64(j)*lh, fg)
		}
	}
}
