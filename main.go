package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/carnival/pkg/app"
	"github.com/decker502/carnival/pkg/config"
	"github.com/decker502/carnival/pkg/embedded"
)

var (
	verboseFlag  = flag.Bool("verbose", false, "Enable verbose logging")
	configFlag   = flag.String("config", app.DefaultConfigPath, "Presentation config (embedded data/... or a path on disk)")
	skipPlugFlag = flag.Bool("skip-plug", false, "Skip the plug gesture and reveal the page immediately")
)

func main() {
	flag.Parse()

	// 初始化嵌入资源（dataFS 在 embed.go 中声明）
	embedded.Init(dataFS)

	gameApp, err := app.NewApp(app.Config{
		Verbose:    *verboseFlag,
		ConfigPath: *configFlag,
		SkipPlug:   *skipPlugFlag,
	})
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}
	defer gameApp.Shutdown()

	ebiten.SetWindowSize(config.GameWindowWidth, config.GameWindowHeight)
	ebiten.SetWindowTitle(config.WindowTitle)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	// 窗口关闭前 RunGame 一直阻塞
	if err := ebiten.RunGame(gameApp); err != nil {
		log.Printf("[App] RunGame: %v", err)
	}
}
