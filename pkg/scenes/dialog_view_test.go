package scenes

import (
	"math/rand/v2"
	"testing"

	"github.com/decker502/carnival/pkg/timing"
)

func newTestDialog() (*termsDialog, *timing.Scheduler) {
	clock := timing.NewScheduler()
	d := newTermsDialog(clock, "line one\n\nline two\n", rand.New(rand.NewPCG(7, 7)), 960, 720)
	d.Show()
	return d, clock
}

func TestTermsDialog_DeclineFlees(t *testing.T) {
	d, _ := newTestDialog()

	tests := []struct {
		flees     int
		wantLabel string
		wantGone  bool
	}{
		{1, "I Decline", false},
		{3, "Why Are You Running?", false},
		{5, "Why Are You Running?", false},
		{6, "Why Are You Running?", true},
	}
	done := 0
	for _, tt := range tests {
		for ; done < tt.flees; done++ {
			d.flee()
		}
		if got := d.declineLabel(); got != tt.wantLabel {
			t.Errorf("躲闪 %d 次后文字 = %q, want %q", tt.flees, got, tt.wantLabel)
		}
		if got := !d.declineVisible(); got != tt.wantGone {
			t.Errorf("躲闪 %d 次后消失 = %v, want %v", tt.flees, got, tt.wantGone)
		}
	}
	if d.hoverCount != declineFleeLimit {
		t.Errorf("躲闪计数 = %d, want %d", d.hoverCount, declineFleeLimit)
	}
}

func TestTermsDialog_FleeOffsetBounds(t *testing.T) {
	d, _ := newTestDialog()
	for range declineFleeLimit {
		d.flee()
		if o := d.declineOffset; o.X < -100 || o.X > 100 || o.Y < -50 || o.Y > 50 {
			t.Fatalf("躲闪偏移越界: %+v", o)
		}
	}
}

func TestTermsDialog_HoverTriggersOnEntry(t *testing.T) {
	d, _ := newTestDialog()

	outside := point{X: 0, Y: 0}
	d.updateHover(outside)
	if d.hoverCount != 0 {
		t.Fatalf("指针在按钮外不应躲闪")
	}

	d.updateHover(d.declineRect().Center())
	if d.hoverCount != 1 {
		t.Fatalf("指针进入按钮应躲闪一次，实际 %d", d.hoverCount)
	}

	d.Hide()
	d.updateHover(d.declineRect().Center())
	if d.hoverCount != 1 {
		t.Error("对话框隐藏时不应躲闪")
	}
}

func TestTermsDialog_CloseShakes(t *testing.T) {
	d, clock := newTestDialog()

	if d.shaking() || d.shakeOffset() != 0 {
		t.Fatal("初始不应抖动")
	}
	d.clickClose()
	clock.AdvanceSeconds(0.1)
	if !d.shaking() {
		t.Fatal("点击关闭后应抖动")
	}
	clock.AdvanceSeconds(0.5)
	if d.shaking() || d.shakeOffset() != 0 {
		t.Error("抖动应在 500ms 后停止")
	}
	if !d.Visible() {
		t.Error("关闭按钮不应隐藏对话框")
	}
}

func TestTermsDialog_ScrollContentClamped(t *testing.T) {
	d, _ := newTestDialog()

	d.scrollContent(50, 30)
	if d.scroll != 30 {
		t.Errorf("scroll = %v, want 30", d.scroll)
	}
	d.scrollContent(-100, 30)
	if d.scroll != 0 {
		t.Errorf("scroll = %v, want 0", d.scroll)
	}
	d.scrollContent(10, -5)
	if d.scroll != 0 {
		t.Errorf("正文不足一屏时不应滚动，scroll = %v", d.scroll)
	}
}
