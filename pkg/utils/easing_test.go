package utils

import (
	"math"
	"testing"
)

// TestEaseOutCubic 测试三次方缓出函数
func TestEaseOutCubic(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"起点", 0.0, 0.0},
		{"终点", 1.0, 1.0},
		{"中点", 0.5, 0.875}, // 1 - (1-0.5)^3 = 1 - 0.125 = 0.875
		{"小于0截断", -0.5, 0.0},
		{"大于1截断", 1.5, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EaseOutCubic(tt.input)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("EaseOutCubic(%v) = %v, 期望 %v", tt.input, result, tt.expected)
			}
		})
	}
}

// TestEaseInOutCubic 测试三次方缓入缓出函数
func TestEaseInOutCubic(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"起点", 0.0, 0.0},
		{"四分之一", 0.25, 0.0625}, // 4 * 0.25^3
		{"中点", 0.5, 0.5},
		{"四分之三", 0.75, 0.9375},
		{"终点", 1.0, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EaseInOutCubic(tt.input)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("EaseInOutCubic(%v) = %v, 期望 %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestLerp(t *testing.T) {
	if got := Lerp(100, 200, 0.25); got != 125 {
		t.Errorf("Lerp(100, 200, 0.25) = %v, 期望 125", got)
	}
	if got := Lerp(10, -10, 1); got != -10 {
		t.Errorf("Lerp(10, -10, 1) = %v, 期望 -10", got)
	}
}

func TestShake(t *testing.T) {
	if got := Shake(0.5, 0.5, 10); got != 0 {
		t.Errorf("结束后应无抖动, got %v", got)
	}
	if got := Shake(0.1, 0, 10); got != 0 {
		t.Errorf("时长为0时应无抖动, got %v", got)
	}
	for _, e := range []float64{0.01, 0.1, 0.2, 0.3, 0.4} {
		amp := 10 * (1 - e/0.5)
		if got := Shake(e, 0.5, 10); math.Abs(got) > amp+1e-9 {
			t.Errorf("Shake(%v) = %v 超出衰减幅度 %v", e, got, amp)
		}
	}
}
