package scrollphase

// IntersectionRatio 计算区块在视口中的可见比例 [0, 1]
//
// 参数：
//   - top, bottom: 区块在页面坐标中的上下边界
//   - viewTop, viewBottom: 视口在页面坐标中的上下边界
//
// 返回：
//   - 可见高度 / 区块高度；区块高度为 0 时返回 0
func IntersectionRatio(top, bottom, viewTop, viewBottom float64) float64 {
	height := bottom - top
	if height <= 0 {
		return 0
	}
	visible := min(bottom, viewBottom) - max(top, viewTop)
	if visible <= 0 {
		return 0
	}
	return min(visible/height, 1)
}
