// Package timing 提供运行在游戏循环上的可取消延时任务
//
// 游戏循环每帧调用 Scheduler.Advance 推进虚拟时钟，到期任务在同一帧内同步执行。
// 没有 goroutine，也没有真实计时器：组件销毁时取消句柄即可保证回调不会再执行。
package timing

import (
	"sort"
	"time"
)

// Clock 是控制器依赖的调度能力
type Clock interface {
	// Now 返回虚拟时钟当前时间（自创建起经过的时长）
	Now() time.Duration
	// After 在 d 之后执行 fn，返回可取消的句柄
	After(d time.Duration, fn func()) *Task
}

// Task 一次性延时任务
type Task struct {
	fireAt    time.Duration
	seq       uint64
	action    func()
	cancelled bool
	fired     bool
}

// Cancel 取消任务
// 返回 true 表示本次调用阻止了一次尚未发生的执行。nil 句柄上调用是安全的。
func (t *Task) Cancel() bool {
	if t == nil || t.fired || t.cancelled {
		return false
	}
	t.cancelled = true
	return true
}

// Pending 任务是否仍在等待执行
func (t *Task) Pending() bool {
	return t != nil && !t.fired && !t.cancelled
}

// Scheduler 虚拟时钟调度器
type Scheduler struct {
	now     time.Duration
	nextSeq uint64
	tasks   []*Task
}

// NewScheduler 创建调度器，时钟从 0 开始
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Now 返回当前虚拟时间
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// After 注册延时任务
// d <= 0 的任务在下一次 Advance 时执行，不会在 After 内同步执行。
func (s *Scheduler) After(d time.Duration, fn func()) *Task {
	if d < 0 {
		d = 0
	}
	s.nextSeq++
	t := &Task{
		fireAt: s.now + d,
		seq:    s.nextSeq,
		action: fn,
	}
	s.tasks = append(s.tasks, t)
	return t
}

// Advance 推进时钟并按 (fireAt, 注册顺序) 执行所有到期任务
// 回调中新注册且已到期的任务会在本次 Advance 中继续执行。
func (s *Scheduler) Advance(dt time.Duration) {
	if dt > 0 {
		s.now += dt
	}
	for {
		t := s.popDue()
		if t == nil {
			break
		}
		t.fired = true
		t.action()
	}
	s.compact()
}

// AdvanceSeconds 以秒为单位推进时钟，对应游戏循环的 deltaTime
func (s *Scheduler) AdvanceSeconds(deltaTime float64) {
	s.Advance(time.Duration(deltaTime * float64(time.Second)))
}

// PendingCount 返回等待中的任务数量
func (s *Scheduler) PendingCount() int {
	n := 0
	for _, t := range s.tasks {
		if t.Pending() {
			n++
		}
	}
	return n
}

// CancelAll 取消全部等待中的任务
func (s *Scheduler) CancelAll() {
	for _, t := range s.tasks {
		t.Cancel()
	}
	s.tasks = nil
}

func (s *Scheduler) popDue() *Task {
	var due []*Task
	for _, t := range s.tasks {
		if t.Pending() && t.fireAt <= s.now {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].fireAt != due[j].fireAt {
			return due[i].fireAt < due[j].fireAt
		}
		return due[i].seq < due[j].seq
	})
	return due[0]
}

func (s *Scheduler) compact() {
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if t.Pending() {
			kept = append(kept, t)
		}
	}
	for i := len(kept); i < len(s.tasks); i++ {
		s.tasks[i] = nil
	}
	s.tasks = kept
}

// Group 记录一个组件创建的全部任务，组件销毁时统一取消
type Group struct {
	clock Clock
	tasks []*Task
}

// NewGroup 创建任务组
func NewGroup(clock Clock) *Group {
	return &Group{clock: clock}
}

// After 通过底层时钟注册任务并记录句柄
func (g *Group) After(d time.Duration, fn func()) *Task {
	t := g.clock.After(d, fn)
	kept := g.tasks[:0]
	for _, old := range g.tasks {
		if old.Pending() {
			kept = append(kept, old)
		}
	}
	g.tasks = append(kept, t)
	return t
}

// Now 返回底层时钟时间
func (g *Group) Now() time.Duration {
	return g.clock.Now()
}

// CancelAll 取消组内全部任务
func (g *Group) CancelAll() {
	for _, t := range g.tasks {
		t.Cancel()
	}
	g.tasks = nil
}
