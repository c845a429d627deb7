package scenes

import (
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/decker502/carnival/pkg/chat"
	"github.com/decker502/carnival/pkg/config"
	"github.com/decker502/carnival/pkg/embedded"
	"github.com/decker502/carnival/pkg/event"
	"github.com/decker502/carnival/pkg/game"
	"github.com/decker502/carnival/pkg/gesture"
	"github.com/decker502/carnival/pkg/input"
	"github.com/decker502/carnival/pkg/playlist"
	"github.com/decker502/carnival/pkg/scrollphase"
	"github.com/decker502/carnival/pkg/sequence"
	"github.com/decker502/carnival/pkg/timing"
	"github.com/decker502/carnival/pkg/utils"
)

// TermsPath 条款正文的嵌入路径
const TermsPath = "data/terms.txt"

// flickerKeyframes 闪烁层透明度关键帧，均匀分布在闪烁时长内
var flickerKeyframes = []float64{0, 1, 0, 1, 0, 1, 0}

// fonts 场景使用的字号
type fonts struct {
	title   *text.GoTextFace
	heading *text.GoTextFace
	body    *text.GoTextFace
	small   *text.GoTextFace
}

// Options 场景的可替换依赖，零值使用真实实现
type Options struct {
	SkipPlug bool                 // 跳过插头环节，直接揭幕
	Answerer chat.Answerer        // 为 nil 时使用 cfg.Chat.Endpoint 的 HTTP 客户端
	Media    playlist.Media       // 为 nil 时使用 game.AudioManager
	Pointer  utils.PointerSampler // 为 nil 时读取 Ebitengine 输入
	Rand     *rand.Rand           // 拒绝按钮的躲闪方向
	Terms    string               // 为空时读取 TermsPath
}

// PresentationScene 唯一的演示场景
// 串联插头拖拽、首屏滚轮展开、时序编排、播放列表和聊天挂件。
// 控制器只维护状态，本场景负责把 Ebitengine 输入翻译成控制器调用并绘制各个视图。
type PresentationScene struct {
	cfg        *config.PresentationConfig
	clock      *timing.Scheduler
	dispatcher *input.Dispatcher
	pointer    *utils.PointerTracker

	drag         *gesture.DragController
	hero         *scrollphase.Controller
	orchestrator *sequence.Orchestrator
	playlist     *playlist.Controller
	chat         *chat.Session

	page     *pageScroller
	flicker  *toggle
	plug     *plugOverlay
	main     *pageView
	dialog   *termsDialog
	toast    *notificationToast
	player   *musicPlayer
	chatView *chatWidget

	subs          event.Group
	fonts         fonts
	width, height float64
	tornDown      bool
}

// NewPresentationScene 创建演示场景
//
// 参数：
//   - rm: 提供字体和音频解码
//   - cfg: 已验证的演示配置
//   - opts: 可替换依赖（测试中注入假实现）
//
// 返回：
//   - 播放列表为空或字体加载失败时返回错误
func NewPresentationScene(rm *game.ResourceManager, cfg *config.PresentationConfig, opts Options) (*PresentationScene, error) {
	s := &PresentationScene{
		cfg:        cfg,
		clock:      timing.NewScheduler(),
		dispatcher: input.NewDispatcher(),
		pointer:    utils.NewPointerTracker(opts.Pointer),
		width:      config.GameWindowWidth,
		height:     config.GameWindowHeight,
	}

	if err := s.loadFonts(rm); err != nil {
		return nil, err
	}

	if opts.Answerer == nil {
		opts.Answerer = chat.NewClient(cfg.Chat.Endpoint, cfg.Chat.Timeout)
	}
	if opts.Media == nil {
		opts.Media = game.NewAudioManager(rm, cfg.Audio.Volume)
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	if opts.Terms == "" {
		opts.Terms = loadTerms()
	}

	// 视图
	s.page = newPageScroller(s.height)
	s.flicker = newToggle(s.clock, false)
	s.plug = newPlugOverlay(s.clock, cfg.Gesture, !opts.SkipPlug)
	s.main = newPageView(newToggle(s.clock, false), s.width)
	s.dialog = newTermsDialog(s.clock, opts.Terms, opts.Rand, s.width, s.height)
	s.toast = newNotificationToast(s.clock, s.width)
	s.player = newMusicPlayer(s.clock, s.height)
	s.chatView = newChatWidget(s.clock, s.width, s.height, utils.IsMobile())

	// 控制器
	viewport := gesture.Size{Width: s.width, Height: s.height}
	s.drag = gesture.NewDragController(gesture.GeometryForViewport(viewport, cfg.Gesture), cfg.Gesture)
	s.hero = scrollphase.NewController(s.dispatcher, s.clock, cfg.Hero)
	s.orchestrator = sequence.NewOrchestrator(s.drag, s.dispatcher, s.clock, sequence.Visuals{
		Flicker:      s.flicker,
		DragOverlay:  s.plug,
		MainContent:  s.main,
		Dialog:       s.dialog,
		Notification: s.toast,
	}, cfg.Sequence)

	// 曲目文件缺失时不显示播放器，其余内容照常
	pl, err := playlist.NewController(opts.Media, playlist.TracksFromConfig(cfg.Audio.Tracks), s.dispatcher, s.clock, cfg.Audio)
	switch {
	case errors.Is(err, playlist.ErrTrackUnavailable):
		log.Printf("[PresentationScene] Warning: music player disabled: %v", err)
	case err != nil:
		s.orchestrator.Teardown()
		return nil, fmt.Errorf("failed to create playlist: %w", err)
	default:
		s.playlist = pl
		s.subs.Add(pl.OnTrackChange(s.player.trackChanged))
	}
	s.chat = chat.NewSession(opts.Answerer, s.clock, cfg.Chat)
	s.subs.Add(s.chat.OnMessage(func(m chat.Message) {
		s.chatView.messageAdded(s.chat.Minimized(), m)
	}))

	s.subs.Add(s.drag.OnConnected(func(gesture.ConnectedEvent) {
		s.plug.markConnected()
	}))
	s.subs.Add(s.orchestrator.OnRevealed(func(sequence.Revealed) {
		s.hero.ObserveVisibility(s.page.HeroVisibility())
		if s.playlist != nil {
			s.player.Show()
			s.playlist.ActivateIfAllowed()
		}
	}))
	s.subs.Add(s.orchestrator.OnAccepted(func(sequence.Accepted) {
		s.chatView.Show()
	}))
	s.subs.Add(s.hero.OnPhaseChange(func(c scrollphase.PhaseChange) {
		log.Printf("[PresentationScene] Hero %s -> %s at offset %.0f", c.From, c.To, s.page.Offset())
	}))

	if opts.SkipPlug {
		s.orchestrator.RevealNow()
	}

	log.Printf("[PresentationScene] Initialized (%d tracks, skipPlug=%v)", len(cfg.Audio.Tracks), opts.SkipPlug)
	return s, nil
}

func (s *PresentationScene) loadFonts(rm *game.ResourceManager) error {
	sizes := []struct {
		dst  **text.GoTextFace
		size float64
	}{
		{&s.fonts.title, 44},
		{&s.fonts.heading, 26},
		{&s.fonts.body, 16},
		{&s.fonts.small, 13},
	}
	for _, sz := range sizes {
		face, err := rm.Font(sz.size)
		if err != nil {
			return fmt.Errorf("failed to load font size %v: %w", sz.size, err)
		}
		*sz.dst = face
	}
	return nil
}

// loadTerms 读取条款正文，失败时使用一句话替代
func loadTerms() string {
	data, err := embedded.ReadFile(TermsPath)
	if err != nil {
		log.Printf("[PresentationScene] Warning: failed to load terms: %v", err)
		return "By scrolling this far you agreed to everything."
	}
	return string(data)
}

// Update 每帧调用：推进时钟、采样输入并派发给控制器
func (s *PresentationScene) Update(deltaTime float64) {
	if s.tornDown {
		return
	}

	ev := s.pointer.Update()
	s.handlePointer(ev)
	x, y := s.pointer.Position()
	s.dialog.updateHover(point{X: float64(x), Y: float64(y)})

	if _, yoff := ebiten.Wheel(); yoff != 0 {
		s.handleWheel(yoff)
	}

	for _, key := range inpututil.AppendJustPressedKeys(nil) {
		s.handleKey(key)
	}
	if s.chatOpen() {
		for _, r := range ebiten.AppendInputChars(nil) {
			s.chat.AppendInput(string(r))
		}
	}

	s.tick(deltaTime)
}

// tick 推进虚拟时钟和逐帧状态
func (s *PresentationScene) tick(deltaTime float64) {
	s.clock.AdvanceSeconds(deltaTime)
	if s.playlist != nil {
		s.playlist.Update()
		s.player.spin(deltaTime, s.playlist.State().IsPlaying)
	}
	s.chat.Update()
}

// handlePointer 指针事件：先按层级命中各个挂件，再交给拖拽，最后作为点击派发
// 被挂件消费的点击不再派发。
func (s *PresentationScene) handlePointer(ev utils.PointerEvent) {
	p := point{X: float64(ev.X), Y: float64(ev.Y)}
	switch ev.Phase {
	case utils.PointerDown:
		if s.hitWidgets(p) {
			return
		}
		if s.plug.Visible() {
			model := gesture.ComputeLayout(s.drag.State(), s.drag.Geometry(), s.cfg.Gesture.TokenSize)
			if model.Token.Contains(p) {
				s.drag.PointerDown(p)
			}
		}
		s.dispatcher.DispatchClick(input.ClickEvent{X: p.X, Y: p.Y})
	case utils.PointerMove:
		s.drag.PointerMove(p)
	case utils.PointerUp:
		s.drag.PointerUp()
	}
}

// hitWidgets 按从上到下的绘制顺序处理点击，返回是否被某个挂件消费
func (s *PresentationScene) hitWidgets(p point) bool {
	// 对话框是模态的
	if s.dialog.Visible() {
		switch {
		case s.dialog.closeRect().Contains(p):
			s.dialog.clickClose()
		case s.dialog.acceptRect().Contains(p):
			s.orchestrator.Accept()
		case s.dialog.declineVisible() && s.dialog.declineRect().Contains(p):
			s.dialog.flee()
		}
		return true
	}

	if s.toast.Visible() && s.toast.closeRect().Contains(p) {
		s.orchestrator.DismissNotification()
		return true
	}

	if s.playlist != nil && s.player.Visible() {
		if s.player.discRect().Contains(p) {
			s.playlist.ToggleExpanded()
			return true
		}
		if s.playlist.Expanded() {
			switch {
			case s.player.playRect().Contains(p):
				s.playlist.TogglePlayback()
				return true
			case s.player.skipRect().Contains(p):
				s.playlist.AdvanceTrack()
				return true
			case s.player.panelRect().Contains(p):
				return true
			}
		}
	}

	if s.chatView.Visible() {
		if s.chat.Minimized() {
			if s.chatView.bubbleRect().Contains(p) {
				s.chat.Open()
				s.chatView.markRead()
				return true
			}
		} else if s.chatView.panelRect().Contains(p) {
			switch {
			case s.chatView.minimizeRect().Contains(p):
				s.chat.Minimize()
			case s.chatView.sendRect().Contains(p):
				s.chat.Submit()
			default:
				if q, ok := s.chatView.suggestionAt(s.chat, p); ok {
					s.chat.AskSuggestion(q)
				}
			}
			return true
		}
	}

	if s.main.Visible() {
		return s.main.handleClick(point{X: p.X, Y: p.Y + s.page.Offset()})
	}
	return false
}

// handleWheel 滚轮输入，yoff 为 Ebitengine 的滚轮刻度（向上为正）
func (s *PresentationScene) handleWheel(yoff float64) {
	delta := -yoff * config.WheelPixelsPerNotch

	if s.dialog.Visible() {
		maxScroll := s.dialog.contentHeight(s.fonts.small) - s.dialog.contentRect().Height + 8
		s.dialog.scrollContent(delta, maxScroll)
		return
	}

	e := &input.WheelEvent{DeltaY: delta}
	if s.dispatcher.DispatchWheel(e) {
		return
	}
	if !s.main.Visible() {
		return
	}
	if s.page.ScrollBy(e.DeltaY) {
		s.dispatcher.DispatchScroll(input.ScrollEvent{OffsetY: s.page.Offset()})
		s.hero.ObserveVisibility(s.page.HeroVisibility())
	}
}

// handleKey 按键：全部作为手势派发，Escape 关闭对话框，聊天展开时处理编辑键
func (s *PresentationScene) handleKey(key ebiten.Key) {
	s.dispatcher.DispatchKeyDown(input.KeyEvent{Key: key.String()})

	switch {
	case key == ebiten.KeyEscape:
		s.orchestrator.DismissDialog()
	case s.chatOpen() && (key == ebiten.KeyEnter || key == ebiten.KeyNumpadEnter):
		s.chat.Submit()
	case s.chatOpen() && key == ebiten.KeyBackspace:
		s.chat.Backspace()
	}
}

func (s *PresentationScene) chatOpen() bool {
	return s.chatView.Visible() && !s.chat.Minimized()
}

// Resize 窗口尺寸变化：更新拖拽几何和各挂件位置
func (s *PresentationScene) Resize(width, height int) {
	s.width, s.height = float64(width), float64(height)
	viewport := gesture.Size{Width: s.width, Height: s.height}
	s.drag.Resize(gesture.GeometryForViewport(viewport, s.cfg.Gesture))

	s.page.Resize(s.height)
	s.main.width = s.width
	s.dialog.resize(s.width, s.height)
	s.toast.width = s.width
	s.player.height = s.height
	s.chatView.resize(s.width, s.height)
	if s.main.Visible() {
		s.hero.ObserveVisibility(s.page.HeroVisibility())
	}
}

// Teardown 撤销全部定时任务、监听、后台请求并释放音频
func (s *PresentationScene) Teardown() {
	if s.tornDown {
		return
	}
	s.tornDown = true
	s.subs.UnsubscribeAll()
	s.hero.Teardown()
	s.orchestrator.Teardown()
	if s.playlist != nil {
		if err := s.playlist.Teardown(); err != nil {
			log.Printf("[PresentationScene] Warning: %v", err)
		}
	}
	s.chat.Teardown()
	s.clock.CancelAll()
	log.Printf("[PresentationScene] Torn down")
}

// Draw 从下到上绘制：页面、拖拽层、闪烁、播放器、聊天、通知、对话框
func (s *PresentationScene) Draw(screen *ebiten.Image) {
	now := s.clock.Now().Seconds()
	viewport := gesture.Size{Width: s.width, Height: s.height}

	screen.Fill(colorNight)
	s.main.draw(screen, s.page, s.hero.Progress(), now, &s.fonts)

	model := gesture.ComputeLayout(s.drag.State(), s.drag.Geometry(), s.cfg.Gesture.TokenSize)
	s.plug.draw(screen, model, viewport, s.fonts.heading)

	if a := s.flickerAlpha(); a > 0 {
		fillRect(screen, rect{Width: s.width, Height: s.height}, withAlpha(colorYellow, a))
	}

	if s.playlist != nil {
		s.player.draw(screen, s.playlist.State(), s.playlist.Expanded(), s.fonts.body, s.fonts.small)
	}
	s.chatView.draw(screen, s.chat, now, s.fonts.body, s.fonts.small)
	s.toast.draw(screen, s.fonts.small, s.fonts.body)
	s.dialog.draw(screen, s.fonts.small, s.fonts.body)
}

// flickerAlpha 在关键帧之间线性插值
func (s *PresentationScene) flickerAlpha() float64 {
	if !s.flicker.Visible() {
		return 0
	}
	d := s.cfg.Sequence.FlickerDuration.Seconds()
	if d <= 0 {
		return 0
	}
	pos := utils.Clamp01(s.flicker.Elapsed()/d) * float64(len(flickerKeyframes)-1)
	i := min(int(pos), len(flickerKeyframes)-2)
	return utils.Lerp(flickerKeyframes[i], flickerKeyframes[i+1], pos-float64(i))
}
