package config

// 布局配置常量
// 本文件定义了演示窗口和页面各区块的布局参数，所有坐标为逻辑屏幕坐标

const (
	// GameWindowWidth 逻辑屏幕宽度
	GameWindowWidth = 960

	// GameWindowHeight 逻辑屏幕高度
	GameWindowHeight = 720

	// WindowTitle 窗口标题
	WindowTitle = "Grand Prize Dating™"
)

// 页面区块（页面坐标，Y 轴向下，随滚动偏移）
const (
	// HeroSectionTop 首屏区块顶部
	HeroSectionTop = 0.0

	// HeroSectionHeight 首屏区块高度（一屏）
	HeroSectionHeight = float64(GameWindowHeight)

	// CommentsSectionHeight 评论区块高度
	CommentsSectionHeight = 1080.0

	// ClaimSectionHeight 领奖区块高度
	ClaimSectionHeight = 500.0

	// FooterHeight 页脚高度
	FooterHeight = 120.0

	// PageContentHeight 页面总高度
	PageContentHeight = HeroSectionHeight + CommentsSectionHeight + ClaimSectionHeight + FooterHeight

	// WheelPixelsPerNotch 每格滚轮对应的滚动像素
	WheelPixelsPerNotch = 100.0
)

// 浮层布局
const (
	// DialogWidth 条款对话框宽度
	DialogWidth = 520.0

	// DialogHeight 条款对话框高度
	DialogHeight = 480.0

	// ToastWidth 通知宽度
	ToastWidth = 350.0

	// ToastHeight 通知高度
	ToastHeight = 130.0

	// ToastMargin 通知距窗口右上角的边距
	ToastMargin = 20.0

	// PlayerDiscSize 播放器唱片按钮直径
	PlayerDiscSize = 56.0

	// PlayerPanelWidth 播放器展开面板宽度
	PlayerPanelWidth = 280.0

	// PlayerMargin 播放器距窗口左下角的边距
	PlayerMargin = 24.0

	// ChatPanelWidth 聊天面板宽度
	ChatPanelWidth = 340.0

	// ChatPanelHeight 聊天面板高度
	ChatPanelHeight = 420.0

	// ChatBubbleSize 最小化聊天按钮直径
	ChatBubbleSize = 56.0
)

// SectionBounds 返回首屏区块在页面坐标中的范围
// 返回值：top, bottom
func SectionBounds() (float64, float64) {
	return HeroSectionTop, HeroSectionTop + HeroSectionHeight
}

// MaxScrollOffset 返回给定视口高度下页面可滚动的最大偏移
func MaxScrollOffset(viewportHeight float64) float64 {
	return max(PageContentHeight-viewportHeight, 0)
}
