package interpreter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/emojilens/backend/internal/model/interpretation"
)

// generationPayload 是模型单次调用应返回的 JSON 形态。
type generationPayload struct {
	Interpretation string                   `json:"interpretation"`
	Metrics        interpretation.Metrics   `json:"metrics"`
	RedFlags       []interpretation.RedFlag `json:"redFlags"`
}

// trailerPayload 是流式输出尾部标记之后的 JSON 形态。
type trailerPayload struct {
	Metrics  interpretation.Metrics   `json:"metrics"`
	RedFlags []interpretation.RedFlag `json:"redFlags"`
}

// parseGenerationPayload 解析完整的单次调用输出。
func parseGenerationPayload(content string) (*generationPayload, error) {
	cleaned := stripCodeFences(content)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty content", ErrMalformedResponse)
	}

	var payload generationPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if strings.TrimSpace(payload.Interpretation) == "" {
		return nil, fmt.Errorf("%w: missing interpretation text", ErrMalformedResponse)
	}
	if err := normalize(&payload.Metrics, payload.RedFlags); err != nil {
		return nil, err
	}
	return &payload, nil
}

// parseTrailer 解析流式输出尾部的指标 JSON。
func parseTrailer(trailer string) (*trailerPayload, error) {
	cleaned := stripCodeFences(trailer)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty metrics trailer", ErrMalformedResponse)
	}

	var payload trailerPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := normalize(&payload.Metrics, payload.RedFlags); err != nil {
		return nil, err
	}
	return &payload, nil
}

// normalize 将数值夹到 [0,100]，并拒绝封闭枚举之外的取值。
func normalize(m *interpretation.Metrics, flags []interpretation.RedFlag) error {
	if !m.OverallTone.Valid() {
		return fmt.Errorf("%w: unknown overall tone %q", ErrMalformedResponse, m.OverallTone)
	}
	for _, flag := range flags {
		if !flag.Severity.Valid() {
			return fmt.Errorf("%w: unknown red flag severity %q", ErrMalformedResponse, flag.Severity)
		}
	}

	m.SarcasmProbability = clampScore(m.SarcasmProbability)
	m.PassiveAggressionProbability = clampScore(m.PassiveAggressionProbability)
	m.Confidence = clampScore(m.Confidence)
	return nil
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// stripCodeFences 去掉模型偶尔包裹的 markdown 代码块。
func stripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
