package game

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Scene represents a presentation scene.
// Each scene has its own update and rendering logic.
type Scene interface {
	// Update updates the scene logic based on the elapsed time.
	// deltaTime is the time elapsed since the last update in seconds.
	Update(deltaTime float64)

	// Draw renders the scene to the provided screen.
	// screen is the target image where the scene should be drawn.
	Draw(screen *ebiten.Image)
}

// Teardowner 是一个可选接口，场景离开时释放定时任务、监听和音频资源
//
// 实现此接口的场景会在以下时机被调用 Teardown()：
//   - 被 SceneManager.SwitchTo 替换
//   - 窗口关闭（App.Shutdown）
type Teardowner interface {
	Teardown()
}

// Layouter 是一个可选接口，窗口尺寸变化时通知场景
type Layouter interface {
	Resize(width, height int)
}
