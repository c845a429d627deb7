package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/decker502/carnival/pkg/embedded"
)

// PresentationConfig 演示流程的全部调优参数
// 所有阈值和时长都只是表现层参数，只要求相对顺序和一次性语义，不要求精确值。
type PresentationConfig struct {
	Gesture  GestureConfig  `yaml:"gesture"`  // 插头拖拽
	Hero     HeroConfig     `yaml:"hero"`     // 首屏滚轮展开
	Sequence SequenceConfig `yaml:"sequence"` // 跨组件编排
	Audio    AudioConfig    `yaml:"audio"`    // 迷你播放器
	Chat     ChatConfig     `yaml:"chat"`     // 聊天挂件
}

// Vec 二维偏移量
type Vec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// GestureConfig 插头拖拽参数
type GestureConfig struct {
	ProximityThreshold float64       `yaml:"proximityThreshold"` // 判定连接的最大距离（像素）
	TokenSize          float64       `yaml:"tokenSize"`          // 插头边长（像素）
	EdgeMargin         float64       `yaml:"edgeMargin"`         // 插头距窗口边缘的最小距离
	GrabOffset         Vec           `yaml:"grabOffset"`         // 指针相对插头左上角的抓取偏移
	ProbeOffset        Vec           `yaml:"probeOffset"`        // 插头有效中心相对左上角的偏移
	SnapOffset         Vec           `yaml:"snapOffset"`         // 连接后插头相对插座中心的吸附偏移
	TargetInset        float64       `yaml:"targetInset"`        // 插座中心距窗口右边缘的距离
	StartX             float64       `yaml:"startX"`             // 插头初始 X
	StartInsetY        float64       `yaml:"startInsetY"`        // 插头初始位置距窗口底部的距离
	SparkDuration      time.Duration `yaml:"sparkDuration"`      // 连接火花持续时间
	WireGlowDelay      time.Duration `yaml:"wireGlowDelay"`      // 电线发光延迟
}

// HeroConfig 首屏展开参数
type HeroConfig struct {
	TransitionDuration  time.Duration `yaml:"transitionDuration"`  // 展开动画锁定时长
	VisibilityThreshold float64       `yaml:"visibilityThreshold"` // 首屏可见比例达到该值时拦截滚轮
}

// SequenceConfig 编排参数
type SequenceConfig struct {
	HandoffDelay         time.Duration `yaml:"handoffDelay"`         // 连接后到开始闪烁的延迟
	FlickerDuration      time.Duration `yaml:"flickerDuration"`      // 闪烁时长
	DialogScrollDepth    float64       `yaml:"dialogScrollDepth"`    // 触发条款对话框的滚动深度（像素）
	NotificationDuration time.Duration `yaml:"notificationDuration"` // 通知自动消失时长
}

// AudioConfig 播放器参数
type AudioConfig struct {
	Volume        float64       `yaml:"volume"`        // 音量 0.0 ~ 1.0
	AutoplayDelay time.Duration `yaml:"autoplayDelay"` // 激活后尝试自动播放的延迟
	Tracks        []TrackConfig `yaml:"tracks"`        // 播放列表（至少一首）
}

// TrackConfig 单首曲目
type TrackConfig struct {
	Title  string `yaml:"title"`
	Artist string `yaml:"artist"`
	Source string `yaml:"source"` // 音频文件路径（.mp3 / .ogg / .wav）
	Icon   string `yaml:"icon"`   // 封面字形
}

// ChatConfig 聊天挂件参数
type ChatConfig struct {
	Endpoint            string            `yaml:"endpoint"`            // 问答服务地址
	Timeout             time.Duration     `yaml:"timeout"`             // 单次请求超时
	FallbackReply       string            `yaml:"fallbackReply"`       // 网络失败时的替代回复
	Greeting            string            `yaml:"greeting"`            // 初始问候
	TypingDelay         time.Duration     `yaml:"typingDelay"`         // 预设回复的"正在输入"时长
	Suggestions         []string          `yaml:"suggestions"`         // 推荐问题
	PredefinedResponses map[string]string `yaml:"predefinedResponses"` // 预设问答
	MaxTypoDistance     int               `yaml:"maxTypoDistance"`     // 预设问题匹配允许的最大编辑距离
}

// EnvOverrides 可由环境变量覆盖的运行时参数
type EnvOverrides struct {
	ChatEndpoint string        `env:"CARNIVAL_CHAT_ENDPOINT"`
	ChatTimeout  time.Duration `env:"CARNIVAL_CHAT_TIMEOUT"`
	MusicVolume  float64       `env:"CARNIVAL_MUSIC_VOLUME" envDefault:"-1"`
}

// DefaultPresentationConfig 返回默认配置
func DefaultPresentationConfig() *PresentationConfig {
	return &PresentationConfig{
		Gesture: GestureConfig{
			ProximityThreshold: 80,
			TokenSize:          80,
			EdgeMargin:         20,
			GrabOffset:         Vec{X: 40, Y: 40},
			ProbeOffset:        Vec{X: 40, Y: 0},
			SnapOffset:         Vec{X: -60, Y: -35},
			TargetInset:        60,
			StartX:             50,
			StartInsetY:        150,
			SparkDuration:      500 * time.Millisecond,
			WireGlowDelay:      200 * time.Millisecond,
		},
		Hero: HeroConfig{
			TransitionDuration:  1800 * time.Millisecond,
			VisibilityThreshold: 0.5,
		},
		Sequence: SequenceConfig{
			HandoffDelay:         1500 * time.Millisecond,
			FlickerDuration:      500 * time.Millisecond,
			DialogScrollDepth:    300,
			NotificationDuration: 8000 * time.Millisecond,
		},
		Audio: AudioConfig{
			Volume:        0.3,
			AutoplayDelay: 100 * time.Millisecond,
		},
		Chat: ChatConfig{
			Timeout:         30 * time.Second,
			FallbackReply:   "Something went wrong 😢",
			Greeting:        "Hey! Ask me anything about him! I know everything 👀",
			TypingDelay:     800 * time.Millisecond,
			MaxTypoDistance: 3,
		},
	}
}

// LoadPresentationConfig 从嵌入资源加载演示配置
// 文件中未出现的字段保留默认值
func LoadPresentationConfig(path string) (*PresentationConfig, error) {
	data, err := embedded.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read presentation config %s: %w", path, err)
	}
	return ParsePresentationConfig(data)
}

// ParsePresentationConfig 解析 YAML 数据
func ParsePresentationConfig(data []byte) (*PresentationConfig, error) {
	cfg := DefaultPresentationConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse presentation config YAML: %w", err)
	}

	applyPresentationDefaults(cfg)

	if err := validatePresentationConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid presentation config: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides 用环境变量覆盖运行时参数
//
// 参数：
//   - cfg: 已加载的配置
//   - environ: 测试时注入的环境变量，为 nil 时读取进程环境
func ApplyEnvOverrides(cfg *PresentationConfig, environ map[string]string) error {
	var overrides EnvOverrides
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&overrides, opts); err != nil {
		return fmt.Errorf("failed to parse environment overrides: %w", err)
	}

	if overrides.ChatEndpoint != "" {
		cfg.Chat.Endpoint = overrides.ChatEndpoint
	}
	if overrides.ChatTimeout > 0 {
		cfg.Chat.Timeout = overrides.ChatTimeout
	}
	if overrides.MusicVolume >= 0 {
		if overrides.MusicVolume > 1 {
			return fmt.Errorf("CARNIVAL_MUSIC_VOLUME must be between 0 and 1, got %v", overrides.MusicVolume)
		}
		cfg.Audio.Volume = overrides.MusicVolume
	}
	return nil
}

// applyPresentationDefaults 为空列表补默认内容
func applyPresentationDefaults(cfg *PresentationConfig) {
	if len(cfg.Chat.Suggestions) == 0 {
		cfg.Chat.Suggestions = []string{
			"Is he loyal?",
			"Any red flags ?",
			"Is he good in code?",
			"Is he romantic ?",
			"Tell me something special about him.",
		}
	}
	if cfg.Chat.PredefinedResponses == nil {
		cfg.Chat.PredefinedResponses = map[string]string{}
	}
}

// validatePresentationConfig 验证配置有效性
func validatePresentationConfig(cfg *PresentationConfig) error {
	g := cfg.Gesture
	if g.ProximityThreshold <= 0 {
		return fmt.Errorf("gesture.proximityThreshold must be positive, got %v", g.ProximityThreshold)
	}
	if g.TokenSize <= 0 {
		return fmt.Errorf("gesture.tokenSize must be positive, got %v", g.TokenSize)
	}
	if g.EdgeMargin < 0 {
		return fmt.Errorf("gesture.edgeMargin cannot be negative, got %v", g.EdgeMargin)
	}

	if cfg.Hero.TransitionDuration <= 0 {
		return fmt.Errorf("hero.transitionDuration must be positive, got %v", cfg.Hero.TransitionDuration)
	}
	if cfg.Hero.VisibilityThreshold <= 0 || cfg.Hero.VisibilityThreshold > 1 {
		return fmt.Errorf("hero.visibilityThreshold must be in (0, 1], got %v", cfg.Hero.VisibilityThreshold)
	}

	s := cfg.Sequence
	if s.HandoffDelay < 0 || s.FlickerDuration < 0 || s.NotificationDuration <= 0 {
		return fmt.Errorf("sequence durations invalid: handoff=%v flicker=%v notification=%v",
			s.HandoffDelay, s.FlickerDuration, s.NotificationDuration)
	}
	if s.DialogScrollDepth < 0 {
		return fmt.Errorf("sequence.dialogScrollDepth cannot be negative, got %v", s.DialogScrollDepth)
	}

	if cfg.Audio.Volume < 0 || cfg.Audio.Volume > 1 {
		return fmt.Errorf("audio.volume must be between 0 and 1, got %v", cfg.Audio.Volume)
	}
	if len(cfg.Audio.Tracks) == 0 {
		return fmt.Errorf("audio.tracks: at least one track is required")
	}
	for i, track := range cfg.Audio.Tracks {
		if track.Source == "" {
			return fmt.Errorf("audio.tracks[%d]: source is required", i)
		}
		if track.Title == "" {
			return fmt.Errorf("audio.tracks[%d]: title is required", i)
		}
	}

	if cfg.Chat.Timeout <= 0 {
		return fmt.Errorf("chat.timeout must be positive, got %v", cfg.Chat.Timeout)
	}
	if cfg.Chat.MaxTypoDistance < 0 {
		return fmt.Errorf("chat.maxTypoDistance cannot be negative, got %d", cfg.Chat.MaxTypoDistance)
	}
	return nil
}
