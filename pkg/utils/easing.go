package utils

import "math"

// Easing Functions (缓动函数)
//
// 所有函数接受一个进度值 t ∈ [0, 1]，返回缓动后的值 ∈ [0, 1]。
// 超出范围的输入会被截断。
//
// 参考：https://easings.net/

// EaseOutCubic 三次方缓出
// 特点：开始快，结束慢（插头吸附、首屏展开）
// 公式：f(t) = 1 - (1-t)³
func EaseOutCubic(t float64) float64 {
	t = Clamp01(t)
	return 1 - math.Pow(1-t, 3)
}

// EaseInOutCubic 三次方缓入缓出
// 公式：
//
//	t < 0.5: f(t) = 4t³
//	t >= 0.5: f(t) = 1 - (-2t + 2)³ / 2
func EaseInOutCubic(t float64) float64 {
	t = Clamp01(t)
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// Lerp 线性插值
// t=0 返回 a，t=1 返回 b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Clamp01 把 t 截断到 [0, 1]
func Clamp01(t float64) float64 {
	return min(max(t, 0), 1)
}

// Shake 返回衰减的水平抖动偏移
// elapsed 超过 duration 时返回 0
func Shake(elapsed, duration, amplitude float64) float64 {
	if duration <= 0 || elapsed < 0 || elapsed >= duration {
		return 0
	}
	decay := 1 - elapsed/duration
	return amplitude * decay * math.Sin(elapsed*math.Pi*2*8/duration)
}
