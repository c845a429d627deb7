package event

import "testing"

// TestSignal_EmitOrder 测试监听器按注册顺序被调用
func TestSignal_EmitOrder(t *testing.T) {
	var s Signal[int]
	var got []string

	s.Subscribe(func(v int) { got = append(got, "a") })
	s.Subscribe(func(v int) { got = append(got, "b") })
	s.Emit(1)

	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("调用顺序错误: got %v, want [a b]", got)
	}
}

// TestSignal_Unsubscribe 测试撤销后不再收到事件，重复撤销安全
func TestSignal_Unsubscribe(t *testing.T) {
	var s Signal[string]
	calls := 0
	sub := s.Subscribe(func(string) { calls++ })

	s.Emit("x")
	sub.Unsubscribe()
	sub.Unsubscribe()
	s.Emit("y")

	if calls != 1 {
		t.Errorf("calls: got %d, want 1", calls)
	}
	if s.Len() != 0 {
		t.Errorf("Len: got %d, want 0", s.Len())
	}
}

// TestSignal_UnsubscribeDuringEmit 测试回调中撤销其他监听器
func TestSignal_UnsubscribeDuringEmit(t *testing.T) {
	var s Signal[int]
	var second Subscription
	secondCalls := 0

	s.Subscribe(func(int) { second.Unsubscribe() })
	second = s.Subscribe(func(int) { secondCalls++ })

	s.Emit(1)
	if secondCalls != 0 {
		t.Errorf("被撤销的监听器仍被调用: %d", secondCalls)
	}
}

// TestGroup_UnsubscribeAll 测试订阅组统一撤销
func TestGroup_UnsubscribeAll(t *testing.T) {
	var a Signal[int]
	var b Signal[bool]
	var g Group
	g.Add(a.Subscribe(func(int) {}))
	g.Add(b.Subscribe(func(bool) {}))

	g.UnsubscribeAll()

	if a.Len() != 0 || b.Len() != 0 {
		t.Errorf("订阅未全部撤销: a=%d b=%d", a.Len(), b.Len())
	}
	if g.Len() != 0 {
		t.Errorf("Group.Len: got %d, want 0", g.Len())
	}
}
