package tone

import (
	"strings"

	"github.com/emojilens/backend/internal/model/interpretation"
)

// 启发式词表。线上模型不可用时用它兜底，产出必须完全确定。
var positiveMarkers = []string{
	"love", "great", "awesome", "amazing", "thanks", "thank you", "happy",
	"excited", "haha", "lol", "yay", "can't wait", "congrats", "miss you",
	"😊", "😄", "😍", "🥰", "❤️", "🎉", "👋", "✨", "🙌", "😂",
}

var negativeMarkers = []string{
	"hate", "angry", "upset", "annoyed", "whatever", "forget it", "never mind",
	"done with", "leave me alone", "disappointed", "ugh", "seriously",
	"😠", "😡", "💔", "😤", "😒", "🙄", "😑", "🖕",
}

var sarcasmMarkers = []string{
	"sure.", "fine.", "totally", "oh great", "wow.", "good for you",
	"how nice", "thanks a lot", "🙃", "🙄", "😏", "🤡", "ic", "lmaooo",
}

var passiveAggressionMarkers = []string{
	"fine.", "k.", "ok.", "whatever", "no worries if not", "if you say so",
	"must be nice", "i guess", "forget it", "don't bother", "😊👍", "🙂", "👍",
}

// EstimateMetrics 对消息做确定性的启发式判断。
// 仅作为占位生成器与流式兜底使用，不追求与真实模型一致。
func EstimateMetrics(message string) interpretation.Metrics {
	normalized := strings.ToLower(strings.TrimSpace(message))

	positive := countMarkers(normalized, positiveMarkers)
	negative := countMarkers(normalized, negativeMarkers)
	sarcasm := countMarkers(normalized, sarcasmMarkers)
	passive := countMarkers(normalized, passiveAggressionMarkers)

	// 省略号是犹豫或阴阳怪气的常见信号。
	if strings.Contains(normalized, "...") || strings.Contains(normalized, "…") {
		passive++
		sarcasm++
	}

	overall := interpretation.ToneNeutral
	switch {
	case positive > negative:
		overall = interpretation.TonePositive
	case negative > positive:
		overall = interpretation.ToneNegative
	}

	signals := positive + negative + sarcasm + passive
	confidence := clampPercent(35 + signals*10)

	return interpretation.Metrics{
		SarcasmProbability:           clampPercent(sarcasm * 25),
		PassiveAggressionProbability: clampPercent(passive * 25),
		OverallTone:                  overall,
		Confidence:                   confidence,
	}
}

func countMarkers(text string, markers []string) int {
	count := 0
	for _, marker := range markers {
		if strings.Contains(text, marker) {
			count++
		}
	}
	return count
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
