package tone

import (
	"math"
	"sort"

	"github.com/emojilens/backend/internal/model/interpretation"
)

// Kind 表示建议回复风格的封闭枚举。
type Kind string

const (
	Direct     Kind = "direct"
	Playful    Kind = "playful"
	Clarifying Kind = "clarifying"
	Neutral    Kind = "neutral"
	Matching   Kind = "matching"
)

// kinds 的声明顺序同时是权重并列时的决胜顺序。
var kinds = []Kind{Direct, Playful, Clarifying, Neutral, Matching}

// Suggestion 给出一种建议回复风格及其理由和示例。
type Suggestion struct {
	Tone       Kind     `json:"tone"`
	Reasoning  string   `json:"reasoning"`
	Confidence int      `json:"confidence"`
	Examples   []string `json:"examples"`
}

const (
	baseWeight          = 50
	highSignalThreshold = 50
	lowConfidenceBound  = 50
	maxSuggestions      = 3
)

// Score 根据解读指标计算排序后的回复风格建议，至多三条。
// 算法完全确定，同样的指标永远产生同样的输出。
func Score(m interpretation.Metrics) []Suggestion {
	weights := map[Kind]int{}
	for _, k := range kinds {
		weights[k] = baseWeight
	}

	switch m.OverallTone {
	case interpretation.TonePositive:
		weights[Playful] += 20
		weights[Matching] += 15
		weights[Neutral] -= 10
	case interpretation.ToneNegative:
		weights[Direct] += 15
		weights[Clarifying] += 20
		weights[Neutral] += 15
		weights[Playful] -= 20
	case interpretation.ToneNeutral:
		weights[Neutral] += 15
		weights[Clarifying] += 10
	}

	if m.SarcasmProbability > highSignalThreshold {
		weights[Clarifying] += 25
		weights[Direct] += 15
		weights[Playful] -= 10
		weights[Matching] -= 10
	}

	if m.PassiveAggressionProbability > highSignalThreshold {
		weights[Direct] += 20
		weights[Clarifying] += 20
		weights[Neutral] += 10
		weights[Playful] -= 25
		weights[Matching] -= 15
	}

	if m.Confidence < lowConfidenceBound {
		weights[Clarifying] += 30
		weights[Direct] -= 10
	}

	maxWeight := 0
	for _, k := range kinds {
		if weights[k] < 0 {
			weights[k] = 0
		}
		if weights[k] > maxWeight {
			maxWeight = weights[k]
		}
	}

	// 稳定排序保证权重相同的风格按声明顺序决胜。
	ranked := append([]Kind(nil), kinds...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return weights[ranked[i]] > weights[ranked[j]]
	})

	count := maxSuggestions
	if count > len(ranked) {
		count = len(ranked)
	}

	suggestions := make([]Suggestion, 0, count)
	for _, k := range ranked[:count] {
		suggestions = append(suggestions, Suggestion{
			Tone:       k,
			Reasoning:  reasoningFor(k, m),
			Confidence: calculateToneConfidence(weights[k], maxWeight),
			Examples:   examplesFor(k, m.OverallTone),
		})
	}

	return suggestions
}

// calculateToneConfidence 将权重映射到 [0,100] 的置信度整数。
// maxWeight 为 0 时所有风格都退回 50。
func calculateToneConfidence(weight, maxWeight int) int {
	if maxWeight == 0 {
		return 50
	}
	scaled := float64(weight)/float64(maxWeight)*50 + 50
	clamped := math.Min(100, math.Max(0, scaled))
	return int(math.Round(clamped))
}
