// Package app 提供演示应用的核心包装器
//
// 该包将初始化逻辑从 main 包提取出来，使其可以被桌面端和移动端共用。
// 桌面端通过 main.go 调用 NewApp()，移动端通过 mobile/mobile.go 调用。
package app

import (
	"fmt"
	"image/color"
	"io"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/decker502/carnival/pkg/config"
	"github.com/decker502/carnival/pkg/game"
	"github.com/decker502/carnival/pkg/scenes"
	"github.com/decker502/carnival/pkg/utils"
)

// sampleRate 音频上下文采样率
const sampleRate = 48000

// DefaultConfigPath 嵌入的演示配置
const DefaultConfigPath = "data/presentation.yaml"

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// ConfigPath 演示配置路径，为空时使用 DefaultConfigPath
	ConfigPath string
	// SkipPlug 跳过插头环节，直接显示主内容
	SkipPlug bool
}

// App 是演示应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	sceneManager             *game.SceneManager
	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化演示应用
//
// 调用此函数前，必须先调用 embedded.Init() 初始化嵌入资源。
//
// 返回：
//   - 配置无法读取、解析或验证失败时返回错误
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	path := cfg.ConfigPath
	if path == "" {
		path = DefaultConfigPath
	}
	presentation, err := config.LoadPresentationConfig(path)
	if err != nil {
		return nil, fmt.Errorf("演示配置加载失败: %w", err)
	}
	if err := config.ApplyEnvOverrides(presentation, nil); err != nil {
		return nil, fmt.Errorf("环境变量覆盖失败: %w", err)
	}
	log.Printf("[App] Loaded %s (%d tracks, chat endpoint %q)", path, len(presentation.Audio.Tracks), presentation.Chat.Endpoint)

	// 初始化音频上下文
	audioContext := audio.NewContext(sampleRate)
	resourceManager := game.NewResourceManager(audioContext)

	scene, err := scenes.NewPresentationScene(resourceManager, presentation, scenes.Options{SkipPlug: cfg.SkipPlug})
	if err != nil {
		return nil, fmt.Errorf("场景创建失败: %w", err)
	}

	sceneManager := game.NewSceneManager()
	sceneManager.SwitchTo(scene)

	return &App{sceneManager: sceneManager}, nil
}

// Update 更新演示逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(config.GameWindowWidth, config.GameWindowHeight)
			log.Printf("[App] Delayed SetWindowSize(%d, %d)", config.GameWindowWidth, config.GameWindowHeight)
			a.pendingWindowSizeReset = false
		}
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		if ebiten.IsFullscreen() {
			ebiten.SetFullscreen(false)
			if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
				ebiten.RestoreWindow()
			}
			a.pendingWindowSizeReset = true
			a.windowSizeResetCountdown = 3
			log.Printf("[App] Exit fullscreen, will reset window size in 3 frames")
		} else {
			ebiten.SetFullscreen(true)
		}
	}

	deltaTime := 1.0 / 60.0
	a.sceneManager.Update(deltaTime)
	return nil
}

// Draw 绘制画面
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回逻辑屏幕尺寸
// 桌面端固定尺寸由 Ebitengine 缩放；移动端跟随设备尺寸，让竖屏也能完整布局。
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := config.GameWindowWidth, config.GameWindowHeight
	if utils.IsMobile() && outsideWidth > 0 && outsideHeight > 0 {
		w, h = outsideWidth, outsideHeight
	}
	a.sceneManager.Resize(w, h)
	return w, h
}

// Shutdown 窗口关闭时销毁当前场景，取消后台请求并释放音频
func (a *App) Shutdown() {
	log.Printf("[App] Shutting down")
	a.sceneManager.Shutdown()
}
