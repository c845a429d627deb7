package scenes

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/carnival/pkg/chat"
	"github.com/decker502/carnival/pkg/config"
	"github.com/decker502/carnival/pkg/game"
	"github.com/decker502/carnival/pkg/playlist"
	"github.com/decker502/carnival/pkg/scrollphase"
	"github.com/decker502/carnival/pkg/utils"
)

// sceneMedia 记录调用的假音频资源
type sceneMedia struct {
	reject    bool
	loadErr   error
	playing   bool
	playCalls int
	loaded    []string
	closed    bool
}

func (m *sceneMedia) Load(track playlist.Track) error {
	if m.loadErr != nil {
		return m.loadErr
	}
	m.loaded = append(m.loaded, track.Title)
	return nil
}

func (m *sceneMedia) Play() error {
	m.playCalls++
	if m.reject {
		return playlist.ErrPlaybackRejected
	}
	m.playing = true
	return nil
}

func (m *sceneMedia) Pause()                  { m.playing = false }
func (m *sceneMedia) Position() time.Duration { return 0 }
func (m *sceneMedia) Duration() time.Duration { return 0 }
func (m *sceneMedia) Ended() bool             { return false }
func (m *sceneMedia) SetVolume(float64)       {}
func (m *sceneMedia) Close() error            { m.closed = true; return nil }

type sceneAnswerer func(ctx context.Context, message string) (string, error)

func (f sceneAnswerer) Ask(ctx context.Context, message string) (string, error) {
	return f(ctx, message)
}

func newTestScene(t *testing.T, opts Options) (*PresentationScene, *sceneMedia) {
	t.Helper()
	cfg := config.DefaultPresentationConfig()
	cfg.Audio.Tracks = []config.TrackConfig{
		{Title: "Track One", Artist: "Artist A", Source: "assets/music/one.mp3"},
		{Title: "Track Two", Artist: "Artist B", Source: "assets/music/two.mp3"},
	}
	cfg.Chat.Suggestions = []string{"Is he loyal?", "Is he romantic ?"}

	media, ok := opts.Media.(*sceneMedia)
	if !ok {
		media = &sceneMedia{}
	}
	opts.Media = media
	if opts.Answerer == nil {
		opts.Answerer = sceneAnswerer(func(context.Context, string) (string, error) {
			return "Absolutely.", nil
		})
	}
	opts.Rand = rand.New(rand.NewPCG(1, 2))
	opts.Terms = "1. You agree.\n\n2. You agree again."

	s, err := NewPresentationScene(game.NewResourceManager(nil), cfg, opts)
	if err != nil {
		t.Fatalf("创建场景失败: %v", err)
	}
	t.Cleanup(s.Teardown)
	return s, media
}

func pointerAt(phase utils.PointerPhase, p point) utils.PointerEvent {
	return utils.PointerEvent{Phase: phase, X: int(p.X), Y: int(p.Y)}
}

func click(s *PresentationScene, p point) {
	s.handlePointer(pointerAt(utils.PointerDown, p))
	s.handlePointer(pointerAt(utils.PointerUp, p))
}

// expandAndOpenDialog 展开首屏后滚过对话框深度
func expandAndOpenDialog(t *testing.T, s *PresentationScene) {
	t.Helper()
	s.handleWheel(-1)
	s.tick(1.9)
	if s.hero.Phase() != scrollphase.PhaseExpanded {
		t.Fatalf("首屏应已展开，实际 %s", s.hero.Phase())
	}
	s.handleWheel(-4)
	if !s.dialog.Visible() {
		t.Fatalf("滚动到 %.0f 后对话框应打开", s.page.Offset())
	}
}

func TestPresentationScene_FullChoreography(t *testing.T) {
	s, media := newTestScene(t, Options{})

	if !s.plug.Visible() || s.main.Visible() {
		t.Fatal("初始应只显示拖拽层")
	}

	// 拖拽插头到插座
	start := s.drag.State().Position
	s.handlePointer(pointerAt(utils.PointerDown, point{X: start.X + 40, Y: start.Y + 40}))
	if !s.drag.State().Dragging {
		t.Fatal("按在插头上应开始拖拽")
	}
	target := s.drag.Geometry().Target
	s.handlePointer(pointerAt(utils.PointerMove, point{X: target.X, Y: target.Y + 40}))
	if !s.drag.State().Connected {
		t.Fatalf("移动到插座后应连接，探测距离 %.1f", s.drag.ProbeDistance())
	}
	if !s.plug.connected {
		t.Error("拖拽层应记录连接时刻")
	}

	// 交接延迟后闪烁，闪烁结束后揭幕
	s.tick(1.6)
	if !s.flicker.Visible() {
		t.Fatal("交接延迟后应开始闪烁")
	}
	s.tick(0.5)
	if s.flicker.Visible() || s.plug.Visible() || !s.main.Visible() {
		t.Fatal("闪烁结束后应隐藏拖拽层并显示主内容")
	}
	if !s.player.Visible() || !s.hero.Listening() {
		t.Error("揭幕后播放器应可见且首屏应拦截滚轮")
	}

	// 自动播放
	s.tick(0.2)
	if media.playCalls != 1 || !s.playlist.State().IsPlaying {
		t.Fatalf("揭幕后应自动播放，playCalls=%d", media.playCalls)
	}

	// 第一次向下滚动被吞掉并开始展开
	s.handleWheel(-1)
	if s.hero.Phase() != scrollphase.PhaseAnimating {
		t.Fatalf("向下滚动后应进入展开动画，实际 %s", s.hero.Phase())
	}
	if s.page.Offset() != 0 {
		t.Errorf("展开动画期间页面不应滚动，offset=%.0f", s.page.Offset())
	}
	s.tick(1.0)
	s.handleWheel(-1)
	if s.page.Offset() != 0 {
		t.Errorf("动画期间的滚轮应被吞掉，offset=%.0f", s.page.Offset())
	}
	s.tick(0.9)
	if s.hero.Phase() != scrollphase.PhaseExpanded {
		t.Fatalf("动画结束后应展开，实际 %s", s.hero.Phase())
	}

	// 越过深度阈值打开对话框
	s.handleWheel(-4)
	if s.page.Offset() != 400 {
		t.Errorf("展开后应正常滚动，offset=%.0f", s.page.Offset())
	}
	if !s.dialog.Visible() || !s.orchestrator.State().DialogOpen {
		t.Fatal("越过深度阈值后应打开对话框")
	}

	// 接受条款
	click(s, s.dialog.acceptRect().Center())
	st := s.orchestrator.State()
	if !st.Accepted || st.DialogOpen || s.dialog.Visible() {
		t.Fatalf("接受后应关闭对话框，state=%+v", st)
	}
	if !s.toast.Visible() || !s.chatView.Visible() {
		t.Error("接受后应显示通知和聊天挂件")
	}

	s.tick(8.1)
	if s.toast.Visible() {
		t.Error("通知应自动关闭")
	}
}

func TestPresentationScene_DragOutsideToken(t *testing.T) {
	s, _ := newTestScene(t, Options{})

	s.handlePointer(pointerAt(utils.PointerDown, point{X: 480, Y: 100}))
	if s.drag.State().Dragging {
		t.Error("按在插头外不应开始拖拽")
	}
	target := s.drag.Geometry().Target
	s.handlePointer(pointerAt(utils.PointerMove, target))
	if s.drag.State().Connected {
		t.Error("未拖拽时移动不应连接")
	}
}

func TestPresentationScene_SkipPlug(t *testing.T) {
	s, _ := newTestScene(t, Options{SkipPlug: true})

	if s.plug.Visible() || !s.main.Visible() {
		t.Fatal("跳过插头时应直接显示主内容")
	}
	if s.flicker.Visible() {
		t.Error("跳过插头时不应闪烁")
	}
	if !s.playlist.AutoplayPending() {
		t.Error("揭幕后应等待自动播放")
	}
}

func TestPresentationScene_AutoplayRejectedThenClick(t *testing.T) {
	s, media := newTestScene(t, Options{SkipPlug: true})
	media.reject = true

	s.tick(0.2)
	if !s.playlist.FallbackArmed() {
		t.Fatal("自动播放被拒绝后应等待用户手势")
	}

	media.reject = false
	click(s, point{X: 480, Y: 300})
	if !s.playlist.State().IsPlaying {
		t.Error("点击后应重试播放")
	}
	if s.playlist.FallbackArmed() {
		t.Error("成功播放后应撤销回退监听")
	}
}

func TestPresentationScene_WidgetClickNotDispatched(t *testing.T) {
	s, media := newTestScene(t, Options{SkipPlug: true})
	media.reject = true
	s.tick(0.2)
	if !s.playlist.FallbackArmed() || media.playCalls != 1 {
		t.Fatalf("自动播放应被拒绝一次并等待手势，playCalls=%d", media.playCalls)
	}

	click(s, s.player.discRect().Center())
	if !s.playlist.FallbackArmed() || media.playCalls != 1 {
		t.Errorf("唱片点击被挂件消费，不应触发重试，playCalls=%d", media.playCalls)
	}

	click(s, s.player.playRect().Center())
	if media.playCalls != 2 {
		t.Errorf("一次点击播放按钮只应尝试一次播放，playCalls=%d", media.playCalls)
	}
	if !s.playlist.FallbackArmed() {
		t.Error("播放按钮被拒绝后仍应等待手势")
	}

	media.reject = false
	click(s, point{X: 480, Y: 300})
	if media.playCalls != 3 || !s.playlist.State().IsPlaying {
		t.Errorf("页面点击应重试播放，playCalls=%d", media.playCalls)
	}
}

func TestPresentationScene_MissingTrackDisablesPlayer(t *testing.T) {
	media := &sceneMedia{loadErr: errors.New("open assets/music/one.mp3: file does not exist")}
	s, _ := newTestScene(t, Options{SkipPlug: true, Media: media})

	if s.playlist != nil {
		t.Fatal("曲目无法加载时不应创建播放列表")
	}
	if !media.closed {
		t.Error("曲目无法加载时应释放音频")
	}
	if !s.main.Visible() {
		t.Error("播放器不可用时主内容仍应显示")
	}
	if s.player.Visible() {
		t.Error("曲目无法加载时不应显示播放器")
	}

	s.tick(0.2)
	click(s, s.player.discRect().Center())
	if _, _, clicks, _ := s.dispatcher.ListenerCounts(); clicks != 0 {
		t.Errorf("没有播放列表时不应有手势监听，click=%d", clicks)
	}
}

func TestPresentationScene_PlayerControls(t *testing.T) {
	s, media := newTestScene(t, Options{SkipPlug: true})
	s.tick(0.2)

	click(s, s.player.discRect().Center())
	if !s.playlist.Expanded() {
		t.Fatal("点击唱片应展开播放器")
	}

	click(s, s.player.playRect().Center())
	if s.playlist.State().IsPlaying {
		t.Error("播放中点击播放按钮应暂停")
	}

	click(s, s.player.skipRect().Center())
	st := s.playlist.State()
	if st.CurrentIndex != 1 || !st.IsPlaying {
		t.Errorf("下一首后应播放第二首，index=%d playing=%v", st.CurrentIndex, st.IsPlaying)
	}
	if got := media.loaded[len(media.loaded)-1]; got != "Track Two" {
		t.Errorf("最后加载的曲目 = %q, want Track Two", got)
	}
	if s.player.nowPlaying != "Track Two" || s.player.angle != 0 {
		t.Errorf("切歌后播放器应显示新曲名，nowPlaying=%q angle=%v", s.player.nowPlaying, s.player.angle)
	}
	if s.player.captionAlpha() != 1 {
		t.Errorf("切歌后曲名应完全显示，alpha=%v", s.player.captionAlpha())
	}
	s.tick(nowPlayingSeconds)
	if s.player.captionAlpha() != 0 {
		t.Errorf("%.1f 秒后曲名应消失，alpha=%v", nowPlayingSeconds, s.player.captionAlpha())
	}
}

func TestPresentationScene_DialogIsModal(t *testing.T) {
	s, _ := newTestScene(t, Options{SkipPlug: true})
	expandAndOpenDialog(t, s)

	click(s, s.player.discRect().Center())
	if s.playlist.Expanded() {
		t.Error("对话框打开时不应响应其他挂件")
	}

	click(s, s.dialog.closeRect().Center())
	if !s.dialog.Visible() {
		t.Fatal("关闭按钮不应关闭对话框")
	}
	if !s.dialog.shaking() {
		t.Error("点击关闭按钮后应抖动")
	}
	s.tick(0.6)
	if s.dialog.shaking() {
		t.Error("抖动应在 500ms 后结束")
	}
}

func TestPresentationScene_EscapeDismissesDialog(t *testing.T) {
	s, _ := newTestScene(t, Options{SkipPlug: true})
	expandAndOpenDialog(t, s)

	s.handleKey(ebiten.KeyEscape)
	if s.dialog.Visible() {
		t.Fatal("Escape 应关闭对话框")
	}

	s.handleWheel(-3)
	if s.dialog.Visible() {
		t.Error("关闭后继续滚动不应重新打开对话框")
	}
	if s.orchestrator.State().Accepted {
		t.Error("关闭不等于接受")
	}
}

func TestPresentationScene_DialogWheelScrollsTerms(t *testing.T) {
	s, _ := newTestScene(t, Options{SkipPlug: true})
	expandAndOpenDialog(t, s)
	offset := s.page.Offset()

	s.handleWheel(-2)
	if s.page.Offset() != offset {
		t.Errorf("对话框打开时页面不应滚动，offset %.0f -> %.0f", offset, s.page.Offset())
	}
}

func TestPresentationScene_Chat(t *testing.T) {
	asked := make(chan string, 1)
	s, _ := newTestScene(t, Options{
		SkipPlug: true,
		Answerer: sceneAnswerer(func(_ context.Context, message string) (string, error) {
			asked <- message
			return "Absolutely.", nil
		}),
	})
	s.orchestrator.Accept()

	if !s.chat.Minimized() {
		t.Fatal("聊天初始应最小化")
	}
	click(s, s.chatView.bubbleRect().Center())
	if s.chat.Minimized() {
		t.Fatal("点击气泡应展开聊天")
	}

	rects := s.chatView.suggestionRects(len(s.chat.Suggestions()))
	click(s, rects[0].Center())
	if got := <-asked; got != "Is he loyal?" {
		t.Errorf("提问内容 = %q, want Is he loyal?", got)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(s.chat.Messages()) < 3 && time.Now().Before(deadline) {
		s.tick(0.016)
		time.Sleep(5 * time.Millisecond)
	}
	msgs := s.chat.Messages()
	if len(msgs) != 3 {
		t.Fatalf("应有问候、提问、回复三条消息，实际 %d", len(msgs))
	}
	if msgs[2].From != chat.SenderBot || msgs[2].Text != "Absolutely." {
		t.Errorf("回复 = %+v", msgs[2])
	}

	s.chat.AppendInput("x")
	s.handleKey(ebiten.KeyBackspace)
	if s.chat.Input() != "" {
		t.Errorf("退格后输入应为空，实际 %q", s.chat.Input())
	}

	click(s, s.chatView.minimizeRect().Center())
	if !s.chat.Minimized() {
		t.Error("点击最小化按钮应收起聊天")
	}
}

func TestPresentationScene_ChatUnreadWhileMinimized(t *testing.T) {
	release := make(chan struct{})
	s, _ := newTestScene(t, Options{
		SkipPlug: true,
		Answerer: sceneAnswerer(func(context.Context, string) (string, error) {
			<-release
			return "Absolutely.", nil
		}),
	})
	s.orchestrator.Accept()
	click(s, s.chatView.bubbleRect().Center())

	s.chat.AppendInput("Where are you?")
	s.handleKey(ebiten.KeyEnter)
	click(s, s.chatView.minimizeRect().Center())
	close(release)

	deadline := time.Now().Add(2 * time.Second)
	for len(s.chat.Messages()) < 3 && time.Now().Before(deadline) {
		s.tick(0.016)
		time.Sleep(5 * time.Millisecond)
	}
	if len(s.chat.Messages()) != 3 {
		t.Fatalf("应收到回复，消息数 %d", len(s.chat.Messages()))
	}
	if s.chatView.unread != 1 {
		t.Errorf("收起时到达的回复应计为未读，unread=%d", s.chatView.unread)
	}

	click(s, s.chatView.bubbleRect().Center())
	if s.chatView.unread != 0 {
		t.Errorf("展开后未读应清零，unread=%d", s.chatView.unread)
	}
}

func TestPresentationScene_ToastClose(t *testing.T) {
	s, _ := newTestScene(t, Options{SkipPlug: true})
	s.orchestrator.Accept()
	s.tick(0.5)

	click(s, s.toast.closeRect().Center())
	if s.toast.Visible() || s.orchestrator.State().NotificationVisible {
		t.Error("点击关闭后通知应消失")
	}
}

func TestPresentationScene_FlickerAlpha(t *testing.T) {
	s, _ := newTestScene(t, Options{})

	if got := s.flickerAlpha(); got != 0 {
		t.Errorf("未闪烁时透明度 = %v, want 0", got)
	}
	s.flicker.Show()

	tests := []struct {
		advance float64
		want    float64
	}{
		{0, 0},
		{0.125, 0.5},    // 第 1.5 帧：1 -> 0 的中点
		{1.0 / 24.0, 0}, // 第 2 帧
		{1.0 / 12.0, 1}, // 第 3 帧
		{1.0, 0},        // 结束后停在最后一帧
	}
	for _, tt := range tests {
		s.clock.AdvanceSeconds(tt.advance)
		if got := s.flickerAlpha(); math.Abs(got-tt.want) > 0.02 {
			t.Errorf("elapsed=%.3fs alpha = %v, want %v", s.flicker.Elapsed(), got, tt.want)
		}
	}
}

func TestPresentationScene_Teardown(t *testing.T) {
	s, media := newTestScene(t, Options{SkipPlug: true})

	wheel, scroll, _, _ := s.dispatcher.ListenerCounts()
	if wheel == 0 || scroll == 0 {
		t.Fatalf("揭幕后应有滚轮和滚动监听，wheel=%d scroll=%d", wheel, scroll)
	}

	s.Teardown()
	s.Teardown()

	wheel, scroll, clicks, keys := s.dispatcher.ListenerCounts()
	if wheel+scroll+clicks+keys != 0 {
		t.Errorf("销毁后不应残留监听: wheel=%d scroll=%d click=%d key=%d", wheel, scroll, clicks, keys)
	}
	if s.clock.PendingCount() != 0 {
		t.Errorf("销毁后不应残留定时任务，实际 %d", s.clock.PendingCount())
	}
	if !media.closed {
		t.Error("销毁时应释放音频")
	}

	s.tick(1)
	if media.playCalls != 0 {
		t.Error("销毁后自动播放不应执行")
	}
}

func TestPresentationScene_ResizeMovesTarget(t *testing.T) {
	s, _ := newTestScene(t, Options{})

	s.Resize(1280, 800)
	g := s.drag.Geometry()
	if g.Viewport.Width != 1280 || g.Target.Y != 400 {
		t.Errorf("窗口变化后插座位置 = %+v", g)
	}
	if s.dialog.box().X != (1280-config.DialogWidth)/2 {
		t.Errorf("对话框应重新居中，x=%.0f", s.dialog.box().X)
	}
}
