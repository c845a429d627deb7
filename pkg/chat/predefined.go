package chat

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Predefined 预设问答表
// 问题按忽略大小写和首尾空白比较，允许少量拼写误差。
type Predefined struct {
	answers     map[string]string // 规范化问题 -> 回复
	keys        []string          // 规范化问题，排序后保证匹配结果稳定
	maxDistance int
}

// NewPredefined 创建预设问答表
// maxDistance 为 0 时只接受精确匹配
func NewPredefined(responses map[string]string, maxDistance int) *Predefined {
	p := &Predefined{
		answers:     make(map[string]string, len(responses)),
		maxDistance: maxDistance,
	}
	for q, a := range responses {
		key := normalizeQuestion(q)
		p.answers[key] = a
		p.keys = append(p.keys, key)
	}
	sort.Strings(p.keys)
	return p
}

// Match 查找与问题最接近的预设回复
func (p *Predefined) Match(question string) (string, bool) {
	key := normalizeQuestion(question)
	if key == "" {
		return "", false
	}
	if a, ok := p.answers[key]; ok {
		return a, true
	}
	if p.maxDistance <= 0 {
		return "", false
	}

	best, bestDist := "", p.maxDistance+1
	for _, k := range p.keys {
		if d := levenshtein.ComputeDistance(key, k); d < bestDist {
			best, bestDist = k, d
		}
	}
	if best == "" {
		return "", false
	}
	return p.answers[best], true
}

func normalizeQuestion(q string) string {
	return strings.ToLower(strings.Join(strings.Fields(q), " "))
}
