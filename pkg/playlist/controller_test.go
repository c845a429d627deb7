package playlist

import (
	"errors"
	"testing"
	"time"

	"github.com/decker502/carnival/pkg/config"
	"github.com/decker502/carnival/pkg/input"
	"github.com/decker502/carnival/pkg/timing"
)

// fakeMedia 可控的音频资源
// reject 为 true 时 Play 返回 ErrPlaybackRejected
type fakeMedia struct {
	reject   bool
	loadErr  error
	playing  bool
	ended    bool
	position time.Duration
	duration time.Duration
	volume   float64

	loaded     []string
	playCalls  int
	pauseCalls int
	closed     bool
}

func (m *fakeMedia) Load(track Track) error {
	if m.loadErr != nil {
		return m.loadErr
	}
	m.loaded = append(m.loaded, track.Source)
	m.position = 0
	m.ended = false
	return nil
}

func (m *fakeMedia) Play() error {
	m.playCalls++
	if m.reject {
		return ErrPlaybackRejected
	}
	m.playing = true
	return nil
}

func (m *fakeMedia) Pause()                   { m.pauseCalls++; m.playing = false }
func (m *fakeMedia) Position() time.Duration  { return m.position }
func (m *fakeMedia) Duration() time.Duration  { return m.duration }
func (m *fakeMedia) Ended() bool              { return m.ended }
func (m *fakeMedia) SetVolume(volume float64) { m.volume = volume }
func (m *fakeMedia) Close() error             { m.closed = true; return nil }

var testTracks = []Track{
	{Title: "I didn't ask", Artist: "Alana Jordan", Source: "Track1.mp3", Icon: "🌙"},
	{Title: "No cure for you", Artist: "Alana Jordan", Source: "Track3.mp3", Icon: "💜"},
	{Title: "Cherry Stained Fingers", Artist: "Kazoom", Source: "Track2.mp3", Icon: "✨"},
}

func newTestController(t *testing.T, media *fakeMedia) (*Controller, *input.Dispatcher, *timing.Scheduler) {
	t.Helper()
	d := input.NewDispatcher()
	s := timing.NewScheduler()
	c, err := NewController(media, testTracks, d, s, config.DefaultPresentationConfig().Audio)
	if err != nil {
		t.Fatalf("NewController error: %v", err)
	}
	return c, d, s
}

func gestureListeners(d *input.Dispatcher) int {
	_, scroll, click, key := d.ListenerCounts()
	return scroll + click + key
}

// TestNewController 测试创建时绑定第一首并设置音量
func TestNewController(t *testing.T) {
	media := &fakeMedia{}
	c, _, _ := newTestController(t, media)

	if len(media.loaded) != 1 || media.loaded[0] != "Track1.mp3" {
		t.Errorf("loaded: got %v", media.loaded)
	}
	if media.volume != 0.3 {
		t.Errorf("volume: got %v, want 0.3", media.volume)
	}
	st := c.State()
	if st.CurrentIndex != 0 || st.IsPlaying || st.HasUserGesture {
		t.Errorf("初始状态: %+v", st)
	}

	empty := &fakeMedia{}
	_, err := NewController(empty, nil, input.NewDispatcher(), timing.NewScheduler(), config.AudioConfig{})
	if !errors.Is(err, ErrEmptyPlaylist) {
		t.Errorf("空列表: got %v, want ErrEmptyPlaylist", err)
	}
	if !empty.closed {
		t.Error("空列表时应释放音频资源")
	}
}

// TestActivate_Autoplay 测试延迟后自动播放
func TestActivate_Autoplay(t *testing.T) {
	media := &fakeMedia{}
	c, _, s := newTestController(t, media)

	c.ActivateIfAllowed()
	c.ActivateIfAllowed()
	if media.playCalls != 0 {
		t.Fatal("自动播放应在延迟后执行")
	}
	if s.PendingCount() != 1 {
		t.Errorf("重复激活不应重复安排: pending=%d", s.PendingCount())
	}

	s.Advance(100 * time.Millisecond)
	st := c.State()
	if !st.IsPlaying || !st.HasUserGesture {
		t.Errorf("自动播放后: %+v", st)
	}

	c.ActivateIfAllowed()
	s.Advance(time.Second)
	if media.playCalls != 1 {
		t.Errorf("播放成功后不应再尝试自动播放: playCalls=%d", media.playCalls)
	}
}

// TestActivate_RejectedThenClick 测试自动播放被拒绝后点击恢复播放
func TestActivate_RejectedThenClick(t *testing.T) {
	media := &fakeMedia{reject: true}
	c, d, s := newTestController(t, media)

	c.ActivateIfAllowed()
	s.Advance(100 * time.Millisecond)

	if c.State().IsPlaying {
		t.Fatal("被拒绝后不应处于播放状态")
	}
	if !c.FallbackArmed() || gestureListeners(d) != 3 {
		t.Fatalf("应布置三个回退监听, armed=%v listeners=%d", c.FallbackArmed(), gestureListeners(d))
	}

	// 已布置回退时再次激活为空操作
	c.ActivateIfAllowed()
	if c.AutoplayPending() {
		t.Error("已布置回退时不应再安排自动播放")
	}

	media.reject = false
	d.DispatchClick(input.ClickEvent{X: 10, Y: 10})

	st := c.State()
	if !st.IsPlaying || !st.HasUserGesture {
		t.Errorf("点击后: %+v", st)
	}
	if c.FallbackArmed() || gestureListeners(d) != 0 {
		t.Errorf("点击后应撤销全部回退监听, listeners=%d", gestureListeners(d))
	}

	// 之后的手势和激活都不会再尝试播放
	calls := media.playCalls
	d.DispatchScroll(input.ScrollEvent{OffsetY: 100})
	d.DispatchKeyDown(input.KeyEvent{Key: "Space"})
	c.ActivateIfAllowed()
	s.Advance(time.Second)
	if media.playCalls != calls {
		t.Errorf("不应再尝试播放: playCalls %d -> %d", calls, media.playCalls)
	}
}

// TestFallback_FirstGestureWins 测试任一手势都可触发重试，其余被撤销
func TestFallback_FirstGestureWins(t *testing.T) {
	gestures := []struct {
		name     string
		dispatch func(d *input.Dispatcher)
	}{
		{"click", func(d *input.Dispatcher) { d.DispatchClick(input.ClickEvent{}) }},
		{"scroll", func(d *input.Dispatcher) { d.DispatchScroll(input.ScrollEvent{OffsetY: 1}) }},
		{"keydown", func(d *input.Dispatcher) { d.DispatchKeyDown(input.KeyEvent{Key: "A"}) }},
	}

	for _, g := range gestures {
		t.Run(g.name, func(t *testing.T) {
			media := &fakeMedia{reject: true}
			c, d, s := newTestController(t, media)
			c.ActivateIfAllowed()
			s.Advance(100 * time.Millisecond)

			media.reject = false
			g.dispatch(d)
			if !c.State().IsPlaying {
				t.Error("手势后应开始播放")
			}
			if gestureListeners(d) != 0 {
				t.Errorf("剩余监听: %d", gestureListeners(d))
			}
			if media.playCalls != 2 {
				t.Errorf("playCalls: got %d, want 2", media.playCalls)
			}
		})
	}
}

// TestFallback_RejectedRetryRearms 测试重试仍被拒绝时等待下一次手势
func TestFallback_RejectedRetryRearms(t *testing.T) {
	media := &fakeMedia{reject: true}
	c, d, s := newTestController(t, media)
	c.ActivateIfAllowed()
	s.Advance(100 * time.Millisecond)

	d.DispatchClick(input.ClickEvent{})
	if media.playCalls != 2 {
		t.Fatalf("playCalls: got %d, want 2", media.playCalls)
	}
	if !c.FallbackArmed() || gestureListeners(d) != 3 {
		t.Errorf("应重新布置回退, listeners=%d", gestureListeners(d))
	}

	media.reject = false
	d.DispatchKeyDown(input.KeyEvent{Key: "Enter"})
	if !c.State().IsPlaying || media.playCalls != 3 {
		t.Errorf("第二次手势后: playing=%v playCalls=%d", c.State().IsPlaying, media.playCalls)
	}
}

// TestTogglePlayback 测试播放/暂停切换
func TestTogglePlayback(t *testing.T) {
	media := &fakeMedia{}
	c, _, _ := newTestController(t, media)

	if err := c.TogglePlayback(); err != nil {
		t.Fatalf("TogglePlayback error: %v", err)
	}
	if !c.State().IsPlaying {
		t.Error("应开始播放")
	}
	c.TogglePlayback()
	if c.State().IsPlaying || media.pauseCalls != 1 {
		t.Errorf("应暂停: playing=%v pauses=%d", c.State().IsPlaying, media.pauseCalls)
	}

	media.reject = true
	err := c.TogglePlayback()
	if !errors.Is(err, ErrPlaybackRejected) {
		t.Errorf("err: got %v, want ErrPlaybackRejected", err)
	}
	if c.State().IsPlaying {
		t.Error("被拒绝后应保持未播放")
	}
}

// TestTogglePlayback_CancelsPendingAutoplay 测试手动播放取消待执行的自动播放
func TestTogglePlayback_CancelsPendingAutoplay(t *testing.T) {
	media := &fakeMedia{}
	c, _, s := newTestController(t, media)
	c.ActivateIfAllowed()
	c.TogglePlayback()
	if c.AutoplayPending() {
		t.Error("手动播放后应取消自动播放")
	}
	s.Advance(time.Second)
	if media.playCalls != 1 {
		t.Errorf("playCalls: got %d, want 1", media.playCalls)
	}
}

// TestAdvanceTrack 测试循环切歌
func TestAdvanceTrack(t *testing.T) {
	media := &fakeMedia{}
	c, _, _ := newTestController(t, media)

	var changes []int
	c.OnTrackChange(func(tc TrackChange) { changes = append(changes, tc.Index) })

	for i := 0; i < 3; i++ {
		c.AdvanceTrack()
	}
	if c.State().CurrentIndex != 0 {
		t.Errorf("CurrentIndex: got %d, want 0", c.State().CurrentIndex)
	}
	want := []int{1, 2, 0}
	for i := range want {
		if changes[i] != want[i] {
			t.Errorf("changes: got %v, want %v", changes, want)
			break
		}
	}
	if !c.State().IsPlaying {
		t.Error("切歌后应播放")
	}

	media.reject = true
	c.AdvanceTrack()
	if c.State().IsPlaying {
		t.Error("被拒绝时 IsPlaying 应为 false")
	}
	if c.State().CurrentIndex != 1 {
		t.Errorf("CurrentIndex: got %d, want 1", c.State().CurrentIndex)
	}
}

// TestCompletion_AdvancesOnce 测试重复的完成事件只切一次歌
func TestCompletion_AdvancesOnce(t *testing.T) {
	media := &fakeMedia{duration: time.Minute}
	c, _, _ := newTestController(t, media)
	c.TogglePlayback()

	media.position = 30 * time.Second
	c.Update()
	if got := c.State().Progress; got != 0.5 {
		t.Errorf("Progress: got %v, want 0.5", got)
	}

	stale := c.Binding()
	c.HandleCompletion(stale)
	c.HandleCompletion(stale)
	c.HandleCompletion(stale)

	st := c.State()
	if st.CurrentIndex != 1 {
		t.Errorf("CurrentIndex: got %d, want 1", st.CurrentIndex)
	}
	if st.Progress != 0 {
		t.Errorf("切歌后 Progress 应重置: %v", st.Progress)
	}
	if len(media.loaded) != 2 {
		t.Errorf("loaded: got %v", media.loaded)
	}
}

// TestCompletion_SingleTrack 测试单曲列表的重复完成事件
func TestCompletion_SingleTrack(t *testing.T) {
	media := &fakeMedia{}
	c, err := NewController(media, testTracks[:1], input.NewDispatcher(), timing.NewScheduler(), config.AudioConfig{Volume: 1})
	if err != nil {
		t.Fatalf("NewController error: %v", err)
	}
	c.TogglePlayback()

	b := c.Binding()
	c.HandleCompletion(b)
	c.HandleCompletion(b)
	if len(media.loaded) != 2 {
		t.Errorf("单曲应只重新绑定一次, loaded=%v", media.loaded)
	}
	if c.State().CurrentIndex != 0 || !c.State().IsPlaying {
		t.Errorf("State: %+v", c.State())
	}
}

// TestUpdate_PollsEnded 测试每帧检测自然结束
func TestUpdate_PollsEnded(t *testing.T) {
	media := &fakeMedia{duration: time.Minute}
	c, _, _ := newTestController(t, media)
	c.TogglePlayback()

	media.position = time.Minute
	media.ended = true
	c.Update()
	c.Update()

	if c.State().CurrentIndex != 1 {
		t.Errorf("CurrentIndex: got %d, want 1", c.State().CurrentIndex)
	}
}

// TestLoadFailure 测试下一首加载失败时停留在当前曲目
func TestLoadFailure(t *testing.T) {
	media := &fakeMedia{}
	c, _, _ := newTestController(t, media)
	c.TogglePlayback()
	before := c.Binding()

	var changes []int
	c.OnTrackChange(func(tc TrackChange) { changes = append(changes, tc.Index) })
	media.loadErr = errors.New("decode failed")

	err := c.AdvanceTrack()
	if !errors.Is(err, ErrTrackUnavailable) {
		t.Errorf("AdvanceTrack error: got %v, want ErrTrackUnavailable", err)
	}
	st := c.State()
	if st.CurrentIndex != 0 {
		t.Errorf("加载失败后 CurrentIndex: got %d, want 0", st.CurrentIndex)
	}
	if st.IsPlaying {
		t.Error("加载失败时不应播放")
	}
	if len(changes) != 0 {
		t.Errorf("加载失败不应发出切歌事件: %v", changes)
	}
	if c.Binding() != before {
		t.Errorf("加载失败不应改变绑定: got %+v, want %+v", c.Binding(), before)
	}

	media.loadErr = nil
	if err := c.AdvanceTrack(); err != nil {
		t.Fatalf("恢复后 AdvanceTrack error: %v", err)
	}
	if c.State().CurrentIndex != 1 || !c.State().IsPlaying {
		t.Errorf("恢复后应播放第二首: %+v", c.State())
	}
}

// TestNewController_LoadFailure 测试第一首无法加载时创建失败并释放资源
func TestNewController_LoadFailure(t *testing.T) {
	media := &fakeMedia{loadErr: errors.New("open assets/music/Track1.mp3: no such file")}
	d := input.NewDispatcher()

	c, err := NewController(media, testTracks, d, timing.NewScheduler(), config.DefaultPresentationConfig().Audio)
	if c != nil {
		t.Error("加载失败时不应返回控制器")
	}
	if !errors.Is(err, ErrTrackUnavailable) {
		t.Errorf("error: got %v, want ErrTrackUnavailable", err)
	}
	if !media.closed {
		t.Error("创建失败时应释放音频资源")
	}
	if media.playCalls != 0 || gestureListeners(d) != 0 {
		t.Errorf("创建失败后不应播放或监听: playCalls=%d listeners=%d", media.playCalls, gestureListeners(d))
	}
}

// TestTeardown 测试销毁时取消任务、撤销监听并释放资源
func TestTeardown(t *testing.T) {
	t.Run("pending autoplay", func(t *testing.T) {
		media := &fakeMedia{}
		c, _, s := newTestController(t, media)
		c.ActivateIfAllowed()
		c.Teardown()
		s.Advance(time.Second)
		if media.playCalls != 0 {
			t.Error("销毁后自动播放不应执行")
		}
		if !media.closed {
			t.Error("应释放音频资源")
		}
	})

	t.Run("armed fallback", func(t *testing.T) {
		media := &fakeMedia{reject: true}
		c, d, s := newTestController(t, media)
		c.ActivateIfAllowed()
		s.Advance(100 * time.Millisecond)
		c.Teardown()
		if gestureListeners(d) != 0 {
			t.Errorf("销毁后应撤销回退监听: %d", gestureListeners(d))
		}
		media.reject = false
		d.DispatchClick(input.ClickEvent{})
		if c.State().IsPlaying {
			t.Error("销毁后不应播放")
		}
	})

	t.Run("playing", func(t *testing.T) {
		media := &fakeMedia{}
		c, _, _ := newTestController(t, media)
		c.TogglePlayback()
		if err := c.Teardown(); err != nil {
			t.Fatalf("Teardown error: %v", err)
		}
		if media.playing || c.State().IsPlaying {
			t.Error("销毁后应暂停")
		}
		c.Teardown()
	})
}

// TestToggleExpanded 测试播放器面板展开
func TestToggleExpanded(t *testing.T) {
	c, _, _ := newTestController(t, &fakeMedia{})
	c.ToggleExpanded()
	if !c.Expanded() {
		t.Error("应展开")
	}
	c.ToggleExpanded()
	if c.Expanded() {
		t.Error("应收起")
	}
}

// TestTracksFromConfig 测试由配置生成曲目
func TestTracksFromConfig(t *testing.T) {
	tracks := TracksFromConfig([]config.TrackConfig{{Title: "A", Artist: "B", Source: "a.mp3", Icon: "x"}})
	if len(tracks) != 1 || tracks[0] != (Track{Title: "A", Artist: "B", Source: "a.mp3", Icon: "x"}) {
		t.Errorf("tracks: got %+v", tracks)
	}
}
