package scenes

import (
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/decker502/carnival/pkg/config"
	"github.com/decker502/carnival/pkg/playlist"
	"github.com/decker502/carnival/pkg/timing"
	"github.com/decker502/carnival/pkg/utils"
)

const (
	// discTurnSeconds 唱片转一圈的时长
	discTurnSeconds  = 3.0
	playerButtonSize = 32.0

	// nowPlayingSeconds 切歌后收起状态下曲名的显示时长
	nowPlayingSeconds = 2.5
)

// musicPlayer 左下角迷你播放器：唱片按钮 + 可展开面板
type musicPlayer struct {
	*toggle
	height     float64
	angle      float64
	nowPlaying string
	changedAt  time.Duration
}

func newMusicPlayer(clock timing.Clock, height float64) *musicPlayer {
	return &musicPlayer{toggle: newToggle(clock, false), height: height}
}

// spin 播放时转动唱片
func (p *musicPlayer) spin(deltaTime float64, playing bool) {
	if !playing {
		return
	}
	p.angle = math.Mod(p.angle+deltaTime*2*math.Pi/discTurnSeconds, 2*math.Pi)
}

// trackChanged 切歌时唱片归零，并短暂显示新曲名
func (p *musicPlayer) trackChanged(tc playlist.TrackChange) {
	p.angle = 0
	p.nowPlaying = tc.Track.Title
	p.changedAt = p.clock.Now()
}

// captionAlpha 曲名提示的透明度，最后 0.5 秒淡出
func (p *musicPlayer) captionAlpha() float64 {
	if p.nowPlaying == "" {
		return 0
	}
	left := nowPlayingSeconds - (p.clock.Now() - p.changedAt).Seconds()
	return utils.Clamp01(left / 0.5)
}

func (p *musicPlayer) discRect() rect {
	return rect{
		X:      config.PlayerMargin,
		Y:      p.height - config.PlayerMargin - config.PlayerDiscSize,
		Width:  config.PlayerDiscSize,
		Height: config.PlayerDiscSize,
	}
}

func (p *musicPlayer) panelRect() rect {
	d := p.discRect()
	return rect{X: d.Center().X, Y: d.Y, Width: config.PlayerPanelWidth, Height: d.Height}
}

func (p *musicPlayer) skipRect() rect {
	panel := p.panelRect()
	return rect{
		X:      panel.X + panel.Width - playerButtonSize - 12,
		Y:      panel.Y + (panel.Height-playerButtonSize)/2,
		Width:  playerButtonSize,
		Height: playerButtonSize,
	}
}

func (p *musicPlayer) playRect() rect {
	skip := p.skipRect()
	skip.X -= playerButtonSize + 6
	return skip
}

func (p *musicPlayer) draw(screen *ebiten.Image, state playlist.State, expanded bool, body, small *text.GoTextFace) {
	if !p.Visible() {
		return
	}
	alpha := utils.Clamp01(p.Elapsed() / 0.8)

	if expanded {
		panel := p.panelRect()
		fillRect(screen, panel, withAlpha(colorNightLight, alpha))
		strokeRect(screen, panel, 1, withAlpha(colorPink, alpha*0.4))

		track := state.Current()
		textX := panel.X + config.PlayerDiscSize/2 + 12
		drawText(screen, track.Title, body, textX, panel.Y+8, withAlpha(colorWhite, alpha))
		drawText(screen, track.Artist, small, textX, panel.Y+28, withAlpha(colorMuted, alpha))

		// 进度条
		barW := p.playRect().X - textX - 10
		bar := rect{X: textX, Y: panel.Y + panel.Height - 8, Width: barW, Height: 3}
		fillRect(screen, bar, withAlpha(colorMuted, alpha*0.3))
		bar.Width = barW * state.Progress
		fillRect(screen, bar, withAlpha(colorPink, alpha))

		play := p.playRect()
		fillCircle(screen, play.Center(), playerButtonSize/2, withAlpha(colorPink, alpha))
		label := ">"
		if state.IsPlaying {
			label = "||"
		}
		drawTextCentered(screen, label, body, play, withAlpha(colorWhite, alpha))

		skip := p.skipRect()
		fillCircle(screen, skip.Center(), playerButtonSize/2, withAlpha(colorNight, alpha))
		drawTextCentered(screen, ">>", body, skip, withAlpha(colorWhite, alpha))
	}

	// 唱片
	disc := p.discRect()
	if a := p.captionAlpha(); !expanded && a > 0 {
		drawText(screen, "Now playing: "+p.nowPlaying, small, disc.X+disc.Width+10, disc.Center().Y-8, withAlpha(colorWhite, alpha*a))
	}
	c := disc.Center()
	r := disc.Width / 2
	if state.IsPlaying {
		fillCircle(screen, c, r+4, withAlpha(colorPink, alpha*0.3))
	}
	fillCircle(screen, c, r, withAlpha(colorInk, alpha))
	for _, f := range []float64{0.88, 0.75, 0.6} {
		fillCircle(screen, c, r*f, withAlpha(colorNight, alpha))
		fillCircle(screen, c, r*f-1, withAlpha(colorInk, alpha))
	}
	fillCircle(screen, c, r*0.36, withAlpha(colorPink, alpha))
	marker := point{X: c.X + math.Cos(p.angle)*r*0.3, Y: c.Y + math.Sin(p.angle)*r*0.3}
	fillCircle(screen, marker, 2, withAlpha(colorWhite, alpha))
	fillCircle(screen, c, r*0.06, withAlpha(colorInk, alpha))
}
