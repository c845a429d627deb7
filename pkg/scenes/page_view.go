package scenes

import (
	"fmt"
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/carnival/pkg/config"
	"github.com/decker502/carnival/pkg/utils"
)

type featureCard struct {
	title, desc string
}

var featureCards = []featureCard{
	{"Survival Skills", "Can cook Maggi better than code."},
	{"Our Playlist", "Every song tells a story"},
	{"My Hometown", "Varanasi....could change to ours"},
	{"Late Night Talks", "Tere liye subah shaam sab ek krdu"},
	{"Commitment", "The best is yet to come"},
	{"Future Plans", "Interested aren't we?"},
}

type homieComment struct {
	user, text, age string
	likes           int
}

var homieComments = []homieComment{
	{"@bestfriend1", "Bro finally made a website instead of texting 'wyd' at 2 AM to me instead of his crush.", "2d", 47},
	{"@childhood_homie", "Known him since 3rd grade. Can confirm: He's 85% decent human, 15% walking meme. Still recommend. Would trust with my Netflix password.", "1w", 92},
	{"@roommate", "Lives with this guy. Pros: Clean, funny, wakes me up in morning. Cons: Sometimes he himself wakes up late. Send help.", "3d", 156},
	{"@pet_doggo", "Don't let him pet you or else you will get addicted. I tried to leave once. Couldn't. Now I'm stuck getting belly rubs forever. Worth it though. 11/10 would recommend. *woof*", "4h", 312},
	{"@ex_girlfriend", "He's actually great. I'm just commitment-phobic. If you're reading this: say yes. I regret everything. This is not a drill. THIS IS ONCE IN A LIFETIME CHANCE.", "12h", 203},
}

const (
	commentsTitleH  = 120.0
	commentCardH    = 172.0
	commentCardGap  = 16.0
	commentCardW    = 640.0
	claimButtonW    = 320.0
	claimButtonH    = 64.0
	claimCardW      = 420.0
	claimCardH      = 200.0
	mainFadeIn      = 0.5 // 主内容淡入时长（秒）
	mainFadeInDelay = 0.3
)

// pageView 揭幕后的长页面：首屏、评论区、领奖区和页脚
type pageView struct {
	*toggle
	width     float64
	liked     map[int]bool
	claimOpen bool
}

func newPageView(t *toggle, width float64) *pageView {
	return &pageView{toggle: t, width: width, liked: make(map[int]bool)}
}

// alpha 揭幕后延迟淡入
func (v *pageView) alpha() float64 {
	if !v.Visible() {
		return 0
	}
	return utils.Clamp01((v.Elapsed() - mainFadeInDelay) / mainFadeIn)
}

// likeRect 第 i 条评论的点赞按钮（页面坐标）
func (v *pageView) likeRect(i int) rect {
	card := v.commentRect(i)
	return rect{X: card.X + 16, Y: card.Y + card.Height - 36, Width: 90, Height: 26}
}

func (v *pageView) commentRect(i int) rect {
	top := config.HeroSectionHeight + commentsTitleH
	return rect{
		X:      (v.width - commentCardW) / 2,
		Y:      top + float64(i)*(commentCardH+commentCardGap),
		Width:  commentCardW,
		Height: commentCardH,
	}
}

// claimButtonRect 领奖按钮（页面坐标）
func (v *pageView) claimButtonRect() rect {
	top := config.HeroSectionHeight + config.CommentsSectionHeight
	return rect{
		X:      (v.width - claimButtonW) / 2,
		Y:      top + 180,
		Width:  claimButtonW,
		Height: claimButtonH,
	}
}

// toggleLike 切换点赞
func (v *pageView) toggleLike(i int) {
	v.liked[i] = !v.liked[i]
}

func (v *pageView) likes(i int) int {
	n := homieComments[i].likes
	if v.liked[i] {
		n++
	}
	return n
}

// handleClick 处理页面坐标下的点击，返回是否命中
func (v *pageView) handleClick(p point) bool {
	if v.claimOpen {
		v.claimOpen = false
		return true
	}
	if v.claimButtonRect().Contains(p) {
		v.claimOpen = true
		return true
	}
	for i := range homieComments {
		if v.likeRect(i).Contains(p) {
			v.toggleLike(i)
			return true
		}
	}
	return false
}

func (v *pageView) draw(screen *ebiten.Image, scroller *pageScroller, expansion, now float64, f *fonts) {
	a := v.alpha()
	if a <= 0 {
		return
	}
	h := scroller.viewportH
	fillRect(screen, rect{Width: v.width, Height: h}, colorNight)

	v.drawHero(screen, scroller.ToScreenY(0), expansion, now, a, f)
	v.drawComments(screen, scroller, a, f)
	v.drawClaim(screen, scroller, a, f)

	footerY := scroller.ToScreenY(config.PageContentHeight - config.FooterHeight)
	fillRect(screen, rect{Y: footerY, Width: v.width, Height: config.FooterHeight}, withAlpha(colorNightLight, a))
	drawTextCentered(screen, "Made with love and questionable life choices", f.body,
		rect{Y: footerY + 30, Width: v.width, Height: 24}, withAlpha(colorMuted, a))
	drawTextCentered(screen, "(c) 2025 Grand Prize Dating - All Rights and Love Reserved (for you)", f.small,
		rect{Y: footerY + 62, Width: v.width, Height: 20}, withAlpha(colorMuted, a*0.7))

	if v.claimOpen {
		fillRect(screen, rect{Width: v.width, Height: h}, withAlpha(colorShade, a))
		card := rect{X: (v.width - claimCardW) / 2, Y: (h - claimCardH) / 2, Width: claimCardW, Height: claimCardH}
		fillRect(screen, card, colorNightLight)
		strokeRect(screen, card, 2, colorPink)
		quote := "\"Curiosity looks good on you. We might look good together.\""
		y := card.Y + 40
		for _, line := range utils.WrapText(quote, f.heading, card.Width-48) {
			drawTextCentered(screen, line, f.heading, rect{X: card.X, Y: y, Width: card.Width, Height: 28}, colorWhite)
			y += lineHeight(f.heading)
		}
		drawTextCentered(screen, "Send a Hi!", f.body, rect{X: card.X, Y: card.Y + card.Height - 56, Width: card.Width, Height: 30}, colorPink)
	}
}

// drawHero 首屏：标题随展开上移，唱片从中间移到左侧，特性卡片在右侧淡入
func (v *pageView) drawHero(screen *ebiten.Image, top, expansion, now, a float64, f *fonts) {
	e := utils.EaseInOutCubic(expansion)
	titleY := top + utils.Lerp(120, 50, e)
	pulse := 0.85 + 0.15*math.Sin(now*math.Pi)

	drawTextCentered(screen, "CONGRATULATIONS", f.title, rect{Y: titleY, Width: v.width, Height: 60}, withAlpha(colorPink, a*pulse))
	drawTextCentered(screen, "YOU'VE UNLOCKED THE", f.heading, rect{Y: titleY + 64, Width: v.width, Height: 36}, withAlpha(colorCyan, a))
	drawTextCentered(screen, "GRAND PRIZE OF 2026", f.heading, rect{Y: titleY + 104, Width: v.width, Height: 36}, withAlpha(colorYellow, a))

	// 唱片封面
	discR := 110.0
	discX := utils.Lerp(v.width/2, discR+60, e)
	discY := top + utils.Lerp(400, 340, e)
	fillCircle(screen, point{X: discX, Y: discY}, discR, withAlpha(colorInk, a))
	for _, ring := range []float64{0.9, 0.75, 0.6} {
		fillCircle(screen, point{X: discX, Y: discY}, discR*ring, withAlpha(colorNightLight, a))
		fillCircle(screen, point{X: discX, Y: discY}, discR*ring-2, withAlpha(colorInk, a))
	}
	fillCircle(screen, point{X: discX, Y: discY}, discR*0.35, withAlpha(colorPink, a))

	// 特性卡片
	if cardAlpha := utils.Clamp01((expansion - 0.45) / 0.55); cardAlpha > 0 {
		cardW, cardH := 220.0, 78.0
		left := v.width - 2*cardW - 60
		for i, card := range featureCards {
			r := rect{
				X:      left + float64(i%2)*(cardW+16),
				Y:      top + 230 + float64(i/2)*(cardH+14),
				Width:  cardW,
				Height: cardH,
			}
			ca := a * cardAlpha
			fillRect(screen, r, withAlpha(colorNightLight, ca))
			strokeRect(screen, r, 1, withAlpha(colorPink, ca*0.5))
			drawText(screen, card.title, f.body, r.X+12, r.Y+12, withAlpha(colorWhite, ca))
			drawText(screen, card.desc, f.small, r.X+12, r.Y+42, withAlpha(colorMuted, ca))
		}
	}

	drawTextCentered(screen, "LIMITED EDITION", f.heading, rect{Y: top + 560, Width: v.width, Height: 36}, withAlpha(colorCyan, a*pulse))
	drawTextCentered(screen, "ONE OF A KIND MODEL", f.body, rect{Y: top + 600, Width: v.width, Height: 24}, withAlpha(colorWhite, a*0.8))

	if expansion == 0 {
		bob := 5 * math.Sin(now*math.Pi)
		drawTextCentered(screen, "Scroll to Claim Your Prize", f.body, rect{Y: top + 660 + bob, Width: v.width, Height: 24}, withAlpha(colorMuted, a))
	}
}

func (v *pageView) drawComments(screen *ebiten.Image, scroller *pageScroller, a float64, f *fonts) {
	titleY := scroller.ToScreenY(config.HeroSectionHeight + 40)
	drawTextCentered(screen, "WHAT THE HOMIES SAY", f.heading, rect{Y: titleY, Width: v.width, Height: 40}, withAlpha(colorYellow, a))

	for i, c := range homieComments {
		r := v.commentRect(i)
		r.Y = scroller.ToScreenY(r.Y)
		if r.Y > scroller.viewportH || r.Y+r.Height < 0 {
			continue
		}
		fillRect(screen, r, withAlpha(colorNightLight, a))
		drawText(screen, c.user, f.body, r.X+16, r.Y+14, withAlpha(colorWhite, a))
		drawText(screen, c.age, f.small, r.X+r.Width-48, r.Y+16, withAlpha(colorMuted, a))

		y := r.Y + 44
		for _, line := range utils.WrapText(c.text, f.small, r.Width-32) {
			drawText(screen, line, f.small, r.X+16, y, withAlpha(colorMuted, a))
			y += lineHeight(f.small)
		}

		like := v.likeRect(i)
		like.Y = scroller.ToScreenY(like.Y)
		clr := colorMuted
		if v.liked[i] {
			clr = colorPink
		}
		drawText(screen, fmt.Sprintf("<3 %d", v.likes(i)), f.body, like.X, like.Y+4, withAlpha(clr, a))
	}
}

func (v *pageView) drawClaim(screen *ebiten.Image, scroller *pageScroller, a float64, f *fonts) {
	b := v.claimButtonRect()
	b.Y = scroller.ToScreenY(b.Y)
	if b.Y > scroller.viewportH || b.Y+b.Height+80 < 0 {
		return
	}
	strokeRect(screen, b, 2, withAlpha(colorPink, a))
	drawTextCentered(screen, "CLAIM YOUR PRIZE", f.heading, b, withAlpha(colorPink, a))
	drawTextCentered(screen, "Desperate for details? Ask the pet bot", f.body,
		rect{Y: b.Y + b.Height + 24, Width: v.width, Height: 24}, withAlpha(colorMuted, a))
}
