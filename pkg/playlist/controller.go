// Package playlist 实现迷你播放器的播放列表控制：
// 自动播放及被拒绝后的手势回退、播放/暂停、自然结束后切到下一首、进度计算。
package playlist

import (
	"errors"
	"fmt"
	"log"

	"github.com/decker502/carnival/pkg/config"
	"github.com/decker502/carnival/pkg/event"
	"github.com/decker502/carnival/pkg/input"
	"github.com/decker502/carnival/pkg/timing"
)

// State 播放状态
// Tracks 与控制器共享，只读。
type State struct {
	Tracks         []Track
	CurrentIndex   int
	IsPlaying      bool
	Progress       float64 // [0, 1]，仅用于显示
	HasUserGesture bool    // 曾经成功开始过播放（锁存）
}

// Current 返回当前曲目
func (s State) Current() Track {
	return s.Tracks[s.CurrentIndex]
}

// Binding 标识一次曲目绑定
// 完成事件携带 Binding，过期或重复的完成事件被忽略。
type Binding struct {
	Index int
	seq   uint64
}

// TrackChange 切换曲目事件
type TrackChange struct {
	Index int
	Track Track
}

// Controller 播放列表控制器
type Controller struct {
	media    Media
	gestures input.GestureSource
	tasks    *timing.Group
	cfg      config.AudioConfig

	state     State
	bindSeq   uint64
	completed bool // 当前绑定的完成事件已处理
	expanded  bool
	tornDown  bool

	autoplay *timing.Task
	fallback event.Group
	armed    bool

	trackChanged event.Signal[TrackChange]
}

// NewController 创建控制器并绑定第一首曲目
//
// 参数：
//   - media: 音频资源，由控制器独占并在 Teardown 时释放
//   - tracks: 播放列表，至少一首
//   - gestures: 回退重试所监听的用户手势来源
//   - clock: 自动播放延迟所用的时钟
//
// 返回：
//   - 播放列表为空时返回 ErrEmptyPlaylist
//   - 第一首无法加载时返回包装了 ErrTrackUnavailable 的错误
//
// 返回错误时 media 已被释放。
func NewController(media Media, tracks []Track, gestures input.GestureSource, clock timing.Clock, cfg config.AudioConfig) (*Controller, error) {
	if len(tracks) == 0 {
		media.Close()
		return nil, ErrEmptyPlaylist
	}
	c := &Controller{
		media:    media,
		gestures: gestures,
		tasks:    timing.NewGroup(clock),
		cfg:      cfg,
		state:    State{Tracks: tracks},
	}
	media.SetVolume(cfg.Volume)
	if err := c.bind(0); err != nil {
		media.Close()
		return nil, fmt.Errorf("failed to bind first track: %w", err)
	}
	return c, nil
}

// State 返回状态快照
func (c *Controller) State() State {
	return c.state
}

// Binding 返回当前曲目绑定
func (c *Controller) Binding() Binding {
	return Binding{Index: c.state.CurrentIndex, seq: c.bindSeq}
}

// FallbackArmed 是否正在等待用户手势重试播放
func (c *Controller) FallbackArmed() bool {
	return c.armed
}

// AutoplayPending 是否有待执行的自动播放尝试
func (c *Controller) AutoplayPending() bool {
	return c.autoplay.Pending()
}

// Expanded 播放器面板是否展开
func (c *Controller) Expanded() bool {
	return c.expanded
}

// ToggleExpanded 展开/收起播放器面板
func (c *Controller) ToggleExpanded() {
	c.expanded = !c.expanded
}

// OnTrackChange 订阅曲目切换
func (c *Controller) OnTrackChange(fn func(TrackChange)) event.Subscription {
	return c.trackChanged.Subscribe(fn)
}

// ActivateIfAllowed 播放器变为可见时调用
// 从未成功播放过时，在短暂延迟后尝试自动播放；被拒绝则等待下一次用户手势。
// 已有待执行的尝试或已布置回退监听时为空操作。
func (c *Controller) ActivateIfAllowed() {
	if c.tornDown || c.state.HasUserGesture || c.state.IsPlaying {
		return
	}
	if c.autoplay.Pending() || c.armed {
		return
	}
	c.autoplay = c.tasks.After(c.cfg.AutoplayDelay, c.tryAutoplay)
}

// TogglePlayback 播放中则暂停，否则尝试播放
// 被拒绝时保持未播放状态并返回错误，不会自动重试。
func (c *Controller) TogglePlayback() error {
	if c.tornDown {
		return nil
	}
	if c.state.IsPlaying {
		c.media.Pause()
		c.state.IsPlaying = false
		return nil
	}
	if err := c.play(); err != nil {
		log.Printf("[Playlist] Toggle play failed: %v", err)
		return err
	}
	return nil
}

// AdvanceTrack 切到下一首（循环）并立即尝试播放
// 下一首无法加载时停留在当前曲目（已暂停）。
func (c *Controller) AdvanceTrack() error {
	if c.tornDown {
		return nil
	}
	next := (c.state.CurrentIndex + 1) % len(c.state.Tracks)
	if c.state.IsPlaying {
		c.media.Pause()
		c.state.IsPlaying = false
	}
	if err := c.bind(next); err != nil {
		return err
	}
	if err := c.play(); err != nil {
		log.Printf("[Playlist] Play after advance failed: %v", err)
		return err
	}
	return nil
}

// HandleCompletion 处理曲目自然结束
// 只对当前绑定的第一次完成事件生效。
func (c *Controller) HandleCompletion(b Binding) {
	if c.tornDown || c.completed {
		return
	}
	if b.Index != c.state.CurrentIndex || b.seq != c.bindSeq {
		return
	}
	c.completed = true
	c.AdvanceTrack()
}

// Update 每帧调用：刷新进度并检测曲目结束
func (c *Controller) Update() {
	if c.tornDown || !c.state.IsPlaying {
		return
	}
	if d := c.media.Duration(); d > 0 {
		c.state.Progress = min(max(float64(c.media.Position())/float64(d), 0), 1)
	}
	if c.media.Ended() {
		c.HandleCompletion(c.Binding())
	}
}

// Teardown 取消自动播放和回退监听，暂停并释放音频资源
func (c *Controller) Teardown() error {
	if c.tornDown {
		return nil
	}
	c.tornDown = true
	c.tasks.CancelAll()
	c.disarm()
	c.trackChanged.Clear()
	if c.state.IsPlaying {
		c.media.Pause()
		c.state.IsPlaying = false
	}
	if err := c.media.Close(); err != nil {
		return fmt.Errorf("failed to release audio: %w", err)
	}
	return nil
}

func (c *Controller) tryAutoplay() {
	c.autoplay = nil
	if c.state.HasUserGesture || c.state.IsPlaying {
		return
	}
	err := c.play()
	switch {
	case err == nil:
		log.Printf("[Playlist] Autoplay started: %s", c.state.Current().Title)
	case errors.Is(err, ErrPlaybackRejected):
		log.Printf("[Playlist] Autoplay blocked, waiting for user interaction")
		c.arm()
	default:
		log.Printf("[Playlist] Warning: autoplay failed: %v", err)
	}
}

// arm 布置一次性回退监听：点击、滚动、按键，先到者生效
func (c *Controller) arm() {
	if c.armed {
		return
	}
	c.armed = true
	c.fallback.Add(c.gestures.OnClick(func(input.ClickEvent) { c.retryOnGesture("click") }))
	c.fallback.Add(c.gestures.OnScroll(func(input.ScrollEvent) { c.retryOnGesture("scroll") }))
	c.fallback.Add(c.gestures.OnKeyDown(func(input.KeyEvent) { c.retryOnGesture("keydown") }))
}

func (c *Controller) disarm() {
	if !c.armed {
		return
	}
	c.armed = false
	c.fallback.UnsubscribeAll()
}

func (c *Controller) retryOnGesture(kind string) {
	if !c.armed {
		return
	}
	c.disarm()
	if c.state.HasUserGesture || c.state.IsPlaying {
		return
	}
	err := c.play()
	switch {
	case err == nil:
		log.Printf("[Playlist] Playback started after %s", kind)
	case errors.Is(err, ErrPlaybackRejected):
		log.Printf("[Playlist] Playback still blocked after %s, waiting for next interaction", kind)
		c.arm()
	default:
		log.Printf("[Playlist] Warning: playback failed after %s: %v", kind, err)
	}
}

func (c *Controller) play() error {
	if err := c.media.Play(); err != nil {
		c.state.IsPlaying = false
		return err
	}
	c.state.IsPlaying = true
	c.state.HasUserGesture = true
	c.autoplay.Cancel()
	c.autoplay = nil
	c.disarm()
	return nil
}

// bind 加载曲目，成功后才切换当前索引
func (c *Controller) bind(index int) error {
	track := c.state.Tracks[index]
	if err := c.media.Load(track); err != nil {
		log.Printf("[Playlist] Warning: failed to load %s: %v", track.Source, err)
		return fmt.Errorf("%w: %q: %w", ErrTrackUnavailable, track.Title, err)
	}

	c.bindSeq++
	c.completed = false
	c.state.CurrentIndex = index
	c.state.Progress = 0
	c.trackChanged.Emit(TrackChange{Index: index, Track: track})
	return nil
}
