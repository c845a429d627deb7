// Package event 提供控制器与视图之间的事件订阅机制
//
// 控制器持有 Signal 并在状态变化时 Emit，视图或其他控制器通过 Subscribe 订阅。
// 每个订阅都返回 Subscription，可随时撤销，保证组件销毁时不会残留回调。
package event

// Subscription 表示一次可撤销的订阅
type Subscription interface {
	// Unsubscribe 撤销订阅，重复调用是安全的
	Unsubscribe()
}

// Signal 类型化的监听器列表
// 零值可直接使用。所有方法只能在游戏循环所在的 goroutine 中调用。
type Signal[E any] struct {
	nextID    uint64
	listeners []listener[E]
}

type listener[E any] struct {
	id uint64
	fn func(E)
}

// Subscribe 注册监听器，按注册顺序被调用
func (s *Signal[E]) Subscribe(fn func(E)) Subscription {
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listener[E]{id: id, fn: fn})
	return &subscription[E]{signal: s, id: id}
}

// Emit 依次通知所有监听器
// 使用快照遍历：回调中新增的监听器不会收到本次事件，回调中撤销的监听器不会再被调用。
func (s *Signal[E]) Emit(e E) {
	if len(s.listeners) == 0 {
		return
	}
	snapshot := make([]listener[E], len(s.listeners))
	copy(snapshot, s.listeners)
	for _, l := range snapshot {
		if !s.has(l.id) {
			continue
		}
		l.fn(e)
	}
}

// Len 返回当前监听器数量
func (s *Signal[E]) Len() int {
	return len(s.listeners)
}

// Clear 撤销全部监听器
func (s *Signal[E]) Clear() {
	s.listeners = nil
}

func (s *Signal[E]) has(id uint64) bool {
	for _, l := range s.listeners {
		if l.id == id {
			return true
		}
	}
	return false
}

func (s *Signal[E]) remove(id uint64) {
	for i, l := range s.listeners {
		if l.id == id {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return
		}
	}
}

type subscription[E any] struct {
	signal *Signal[E]
	id     uint64
	done   bool
}

func (sub *subscription[E]) Unsubscribe() {
	if sub.done {
		return
	}
	sub.done = true
	sub.signal.remove(sub.id)
}

// Group 收集多个订阅，统一撤销
type Group struct {
	subs []Subscription
}

// Add 加入订阅
func (g *Group) Add(sub Subscription) {
	g.subs = append(g.subs, sub)
}

// UnsubscribeAll 撤销组内全部订阅
func (g *Group) UnsubscribeAll() {
	for _, sub := range g.subs {
		sub.Unsubscribe()
	}
	g.subs = nil
}

// Len 返回组内订阅数量
func (g *Group) Len() int {
	return len(g.subs)
}
