// Package main replays the presentation's interaction choreography headlessly
// and prints a timeline for each scenario.
//
// Usage:
//
//	go run ./cmd/verify_choreography [flags]
//
// Flags:
//
//	--scenario <name>    Run a single scenario (drag, hero, dialog, autoplay)
//	--verbose            Show controller logs
//
// Every scenario runs on a virtual clock, so no window or audio device is needed.
// The exit status is 1 when any scenario fails.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/decker502/carnival/pkg/config"
	"github.com/decker502/carnival/pkg/gesture"
	"github.com/decker502/carnival/pkg/input"
	"github.com/decker502/carnival/pkg/playlist"
	"github.com/decker502/carnival/pkg/scrollphase"
	"github.com/decker502/carnival/pkg/sequence"
	"github.com/decker502/carnival/pkg/timing"
)

var (
	scenarioFlag = flag.String("scenario", "", "Run a single scenario (drag, hero, dialog, autoplay)")
	verboseFlag  = flag.Bool("verbose", false, "Show controller logs")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f5c2e7"))
	timeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c")).Width(8).Align(lipgloss.Right)
	actorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#89b4fa")).Width(12)
	passStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#a6e3a1"))
	failStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f38ba8"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#585b70")).Padding(0, 1)
)

// entry 时间线上的一条记录
type entry struct {
	at    time.Duration
	actor string
	what  string
}

// run 一次场景回放
type run struct {
	clock    *timing.Scheduler
	timeline []entry
	failures []string
}

func newRun() *run {
	return &run{clock: timing.NewScheduler()}
}

func (r *run) note(actor, format string, args ...any) {
	r.timeline = append(r.timeline, entry{at: r.clock.Now(), actor: actor, what: fmt.Sprintf(format, args...)})
}

func (r *run) check(ok bool, format string, args ...any) {
	if !ok {
		r.failures = append(r.failures, fmt.Sprintf(format, args...))
	}
}

// advance 以 60fps 的步长推进时钟
func (r *run) advance(d time.Duration) {
	const frame = time.Second / 60
	for d > 0 {
		step := min(frame, d)
		r.clock.Advance(step)
		d -= step
	}
}

type scenario struct {
	name  string
	title string
	play  func(r *run, cfg *config.PresentationConfig)
}

var scenarios = []scenario{
	{"drag", "Drag the plug from (50,500) to the socket at (800,400)", playDrag},
	{"hero", "Three forward wheels while centered", playHero},
	{"dialog", "Scroll past the dialog depth, accept, notification auto-dismiss", playDialog},
	{"autoplay", "Autoplay rejected, then a click", playAutoplay},
}

func main() {
	flag.Parse()
	if !*verboseFlag {
		log.SetOutput(io.Discard)
	}

	cfg := config.DefaultPresentationConfig()
	cfg.Audio.Tracks = []config.TrackConfig{
		{Title: "Track One", Source: "assets/music/one.mp3"},
		{Title: "Track Two", Source: "assets/music/two.mp3"},
	}

	failed := 0
	for _, sc := range scenarios {
		if *scenarioFlag != "" && *scenarioFlag != sc.name {
			continue
		}
		r := newRun()
		sc.play(r, cfg)
		fmt.Println(render(sc, r))
		if len(r.failures) > 0 {
			failed++
		}
	}

	if failed > 0 {
		fmt.Println(failStyle.Render(fmt.Sprintf("%d scenario(s) failed", failed)))
		os.Exit(1)
	}
	fmt.Println(passStyle.Render("all scenarios passed"))
}

func render(sc scenario, r *run) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(sc.name+": "+sc.title) + "\n")
	for _, e := range r.timeline {
		b.WriteString(timeStyle.Render(fmt.Sprintf("%dms", e.at.Milliseconds())) + "  ")
		b.WriteString(actorStyle.Render(e.actor) + e.what + "\n")
	}
	if len(r.failures) == 0 {
		b.WriteString(passStyle.Render("PASS"))
	} else {
		b.WriteString(failStyle.Render("FAIL"))
		for _, f := range r.failures {
			b.WriteString("\n  - " + f)
		}
	}
	return boxStyle.Render(b.String())
}

func playDrag(r *run, cfg *config.PresentationConfig) {
	geometry := gesture.Geometry{
		Viewport: gesture.Size{Width: 1000, Height: 800},
		Target:   gesture.Point{X: 800, Y: 400},
		Start:    gesture.Point{X: 50, Y: 500},
	}
	drag := gesture.NewDragController(geometry, cfg.Gesture)
	connects := 0
	drag.OnConnected(func(e gesture.ConnectedEvent) {
		connects++
		r.note("gesture", "connected, snapped to (%.0f, %.0f)", e.Position.X, e.Position.Y)
	})

	grab := cfg.Gesture.GrabOffset
	from := gesture.Point{X: geometry.Start.X + grab.X, Y: geometry.Start.Y + grab.Y}
	to := gesture.Point{X: geometry.Target.X, Y: geometry.Target.Y + grab.Y}
	drag.PointerDown(from)
	r.note("pointer", "down at (%.0f, %.0f)", from.X, from.Y)

	const steps = 40
	for i := 1; i <= steps; i++ {
		t := float64(i) / steps
		drag.PointerMove(gesture.Point{X: from.X + (to.X-from.X)*t, Y: from.Y + (to.Y-from.Y)*t})
		r.advance(16 * time.Millisecond)
	}
	// 连接后继续移动不会再次触发
	drag.PointerMove(from)
	drag.PointerUp()
	r.note("pointer", "up, probe distance %.1f", drag.ProbeDistance())

	want := geometry.Target.Add(cfg.Gesture.SnapOffset)
	r.check(connects == 1, "expected exactly one Connected, got %d", connects)
	r.check(drag.State().Connected, "drag never connected")
	r.check(drag.State().Position == want, "snapped to %+v, want %+v", drag.State().Position, want)
}

func playHero(r *run, cfg *config.PresentationConfig) {
	d := input.NewDispatcher()
	hero := scrollphase.NewController(d, r.clock, cfg.Hero)
	transitions := 0
	hero.OnPhaseChange(func(c scrollphase.PhaseChange) {
		transitions++
		r.note("hero", "%s -> %s", c.From, c.To)
	})
	hero.ObserveVisibility(1)

	suppressed := 0
	for i := range 3 {
		if d.DispatchWheel(&input.WheelEvent{DeltaY: 100}) {
			suppressed++
			r.note("wheel", "#%d suppressed", i+1)
		}
		r.advance(100 * time.Millisecond)
	}
	r.check(hero.Phase() == scrollphase.PhaseAnimating, "phase %s after wheels, want animating", hero.Phase())

	r.advance(cfg.Hero.TransitionDuration)
	r.check(hero.Phase() == scrollphase.PhaseExpanded, "phase %s after transition, want expanded", hero.Phase())
	r.check(transitions == 2, "expected centered->animating->expanded, got %d transitions", transitions)
	r.check(suppressed == 3, "expected all three wheels suppressed, got %d", suppressed)

	if !d.DispatchWheel(&input.WheelEvent{DeltaY: 100}) {
		r.note("wheel", "passes through after expansion")
	} else {
		r.check(false, "wheel suppressed after expansion")
	}
}

// visual 只记录显示/隐藏的视图
type visual struct {
	r       *run
	name    string
	visible bool
}

func (v *visual) Show() { v.visible = true; v.r.note(v.name, "show") }
func (v *visual) Hide() { v.visible = false; v.r.note(v.name, "hide") }

func playDialog(r *run, cfg *config.PresentationConfig) {
	d := input.NewDispatcher()
	drag := gesture.NewDragController(gesture.GeometryForViewport(gesture.Size{Width: 960, Height: 720}, cfg.Gesture), cfg.Gesture)
	dialog := &visual{r: r, name: "dialog"}
	toast := &visual{r: r, name: "toast"}
	o := sequence.NewOrchestrator(drag, d, r.clock, sequence.Visuals{
		Flicker:      &visual{r: r, name: "flicker"},
		DragOverlay:  &visual{r: r, name: "plug"},
		MainContent:  &visual{r: r, name: "main"},
		Dialog:       dialog,
		Notification: toast,
	}, cfg.Sequence)
	defer o.Teardown()
	o.RevealNow()

	opens := 0
	for _, offset := range []float64{120, 280, 320, 600, 900} {
		wasOpen := dialog.visible
		d.DispatchScroll(input.ScrollEvent{OffsetY: offset})
		if dialog.visible && !wasOpen {
			opens++
		}
		r.advance(50 * time.Millisecond)
	}
	r.check(opens == 1, "dialog opened %d times, want 1", opens)

	r.check(o.Accept(), "first accept ignored")
	r.check(!o.Accept(), "second accept not ignored")
	r.advance(cfg.Sequence.NotificationDuration - time.Millisecond)
	r.check(toast.visible, "notification closed early")
	r.advance(time.Millisecond)
	r.check(!toast.visible, "notification still visible after %v", cfg.Sequence.NotificationDuration)
}

// media 前 rejects 次播放被拒绝
type media struct {
	r       *run
	rejects int
}

func (m *media) Load(t playlist.Track) error { m.r.note("media", "load %s", t.Title); return nil }
func (m *media) Play() error {
	if m.rejects > 0 {
		m.rejects--
		m.r.note("media", "play rejected")
		return playlist.ErrPlaybackRejected
	}
	m.r.note("media", "playing")
	return nil
}
func (m *media) Pause()                  {}
func (m *media) Position() time.Duration { return 0 }
func (m *media) Duration() time.Duration { return 0 }
func (m *media) Ended() bool             { return false }
func (m *media) SetVolume(float64)       {}
func (m *media) Close() error            { return nil }

func playAutoplay(r *run, cfg *config.PresentationConfig) {
	d := input.NewDispatcher()
	m := &media{r: r, rejects: 1}
	pl, err := playlist.NewController(m, playlist.TracksFromConfig(cfg.Audio.Tracks), d, r.clock, cfg.Audio)
	if err != nil {
		r.check(false, "playlist: %v", err)
		return
	}
	defer pl.Teardown()

	pl.ActivateIfAllowed()
	r.advance(cfg.Audio.AutoplayDelay + 16*time.Millisecond)
	r.check(pl.FallbackArmed(), "fallback not armed after rejection")

	r.note("pointer", "click")
	d.DispatchClick(input.ClickEvent{X: 10, Y: 10})
	st := pl.State()
	r.check(st.IsPlaying && st.HasUserGesture, "not playing after click: %+v", st)
	r.check(!pl.FallbackArmed(), "fallback still armed")

	d.DispatchKeyDown(input.KeyEvent{Key: "Space"})
	r.check(pl.State().IsPlaying, "extra gesture changed playback")
}
