package scenes

import (
	"github.com/decker502/carnival/pkg/config"
	"github.com/decker502/carnival/pkg/scrollphase"
)

// pageScroller 页面纵向滚动模型
// 偏移量限制在 [0, PageContentHeight - 视口高度]。
type pageScroller struct {
	offset    float64
	viewportH float64
}

func newPageScroller(viewportH float64) *pageScroller {
	return &pageScroller{viewportH: viewportH}
}

// Offset 当前滚动偏移
func (p *pageScroller) Offset() float64 {
	return p.offset
}

// ScrollBy 按 delta 滚动，返回偏移是否改变
func (p *pageScroller) ScrollBy(delta float64) bool {
	next := min(max(p.offset+delta, 0), config.MaxScrollOffset(p.viewportH))
	if next == p.offset {
		return false
	}
	p.offset = next
	return true
}

// Resize 视口高度变化后重新截断偏移
func (p *pageScroller) Resize(viewportH float64) {
	p.viewportH = viewportH
	p.offset = min(p.offset, config.MaxScrollOffset(viewportH))
}

// HeroVisibility 首屏区块在视口中的可见比例
func (p *pageScroller) HeroVisibility() float64 {
	top, bottom := config.SectionBounds()
	return scrollphase.IntersectionRatio(top, bottom, p.offset, p.offset+p.viewportH)
}

// ToScreenY 页面坐标转屏幕坐标
func (p *pageScroller) ToScreenY(pageY float64) float64 {
	return pageY - p.offset
}
