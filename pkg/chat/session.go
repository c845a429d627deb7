package chat

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/decker502/carnival/pkg/config"
	"github.com/decker502/carnival/pkg/event"
	"github.com/decker502/carnival/pkg/timing"
)

// Sender 消息发送方
type Sender int

const (
	SenderBot Sender = iota
	SenderUser
)

// Message 聊天消息，ID 按顺序递增
type Message struct {
	ID   int
	From Sender
	Text string
}

// reply 后台请求的结果
type reply struct {
	text string
	err  error
}

// Session 聊天会话
// 除 Ask 的后台 goroutine 外，所有方法只能在游戏循环中调用。
type Session struct {
	cfg        config.ChatConfig
	answerer   Answerer
	predefined *Predefined
	tasks      *timing.Group

	messages        []Message
	input           string
	minimized       bool
	showSuggestions bool
	pending         int // 等待中的回复数（预设延迟 + 网络请求）

	replies chan reply
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	closed  bool

	added event.Signal[Message]
}

// NewSession 创建会话，初始为最小化状态并带一条问候
func NewSession(answerer Answerer, clock timing.Clock, cfg config.ChatConfig) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		cfg:             cfg,
		answerer:        answerer,
		predefined:      NewPredefined(cfg.PredefinedResponses, cfg.MaxTypoDistance),
		tasks:           timing.NewGroup(clock),
		minimized:       true,
		showSuggestions: true,
		replies:         make(chan reply, 8),
		ctx:             ctx,
		cancel:          cancel,
	}
	if cfg.Greeting != "" {
		s.appendMessage(SenderBot, cfg.Greeting)
	}
	return s
}

// Messages 返回消息列表（只读）
func (s *Session) Messages() []Message {
	return s.messages
}

// Typing 是否显示"正在输入"
func (s *Session) Typing() bool {
	return s.pending > 0
}

// Minimized 是否最小化
func (s *Session) Minimized() bool {
	return s.minimized
}

// Open 展开聊天窗口
func (s *Session) Open() {
	s.minimized = false
}

// Minimize 最小化聊天窗口
func (s *Session) Minimize() {
	s.minimized = true
}

// Suggestions 返回推荐问题；首次提问后为空
func (s *Session) Suggestions() []string {
	if !s.showSuggestions {
		return nil
	}
	return s.cfg.Suggestions
}

// Input 返回输入框内容
func (s *Session) Input() string {
	return s.input
}

// AppendInput 在输入框末尾追加文本
func (s *Session) AppendInput(text string) {
	s.input += text
}

// Backspace 删除输入框最后一个字符
func (s *Session) Backspace() {
	if s.input == "" {
		return
	}
	r := []rune(s.input)
	s.input = string(r[:len(r)-1])
}

// OnMessage 订阅新消息
func (s *Session) OnMessage(fn func(Message)) event.Subscription {
	return s.added.Subscribe(fn)
}

// Submit 发送输入框内容
// 输入为空白时返回 false
func (s *Session) Submit() bool {
	text := s.input
	if strings.TrimSpace(text) == "" {
		return false
	}
	s.input = ""
	s.Ask(text)
	return true
}

// AskSuggestion 点击推荐问题
func (s *Session) AskSuggestion(question string) {
	s.Ask(question)
}

// Ask 提问：命中预设回复时在输入延迟后回答，否则请求远程服务
func (s *Session) Ask(question string) {
	if s.closed {
		return
	}
	s.showSuggestions = false
	s.appendMessage(SenderUser, question)
	s.pending++

	if answer, ok := s.predefined.Match(question); ok {
		s.tasks.After(s.cfg.TypingDelay, func() {
			s.pending--
			s.appendMessage(SenderBot, answer)
		})
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		text, err := s.answerer.Ask(s.ctx, question)
		select {
		case s.replies <- reply{text: text, err: err}:
		case <-s.ctx.Done():
		}
	}()
}

// Update 每帧调用，应用已到达的回复
func (s *Session) Update() {
	if s.closed {
		return
	}
	for {
		select {
		case r := <-s.replies:
			s.pending--
			text := r.text
			if r.err != nil {
				log.Printf("[Chat] Backend error: %v", r.err)
				text = s.cfg.FallbackReply
			}
			s.appendMessage(SenderBot, text)
		default:
			return
		}
	}
}

// Teardown 取消进行中的请求和输入延迟，并等待后台 goroutine 退出
func (s *Session) Teardown() {
	if s.closed {
		return
	}
	s.closed = true
	s.cancel()
	s.tasks.CancelAll()
	s.wg.Wait()
	s.added.Clear()
	s.pending = 0
}

func (s *Session) appendMessage(from Sender, text string) {
	msg := Message{ID: len(s.messages) + 1, From: from, Text: text}
	s.messages = append(s.messages, msg)
	s.added.Emit(msg)
}
