package interpretation

import "time"

// Tone 表示整体语气判断。
type Tone string

const (
	TonePositive Tone = "positive"
	ToneNeutral  Tone = "neutral"
	ToneNegative Tone = "negative"
)

// Valid 判断语气取值是否合法。
func (t Tone) Valid() bool {
	return t == TonePositive || t == ToneNeutral || t == ToneNegative
}

// Metrics 是文本生成服务对消息给出的数值判断，收到后不可变。
type Metrics struct {
	SarcasmProbability           int  `json:"sarcasmProbability"`
	PassiveAggressionProbability int  `json:"passiveAggressionProbability"`
	OverallTone                  Tone `json:"overallTone"`
	Confidence                   int  `json:"confidence"`
}

// Severity 表示警示信号的等级。
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Valid 判断等级取值是否合法。
func (s Severity) Valid() bool {
	return s == SeverityLow || s == SeverityMedium || s == SeverityHigh
}

// RedFlag 描述消息中值得注意的警示信号。
type RedFlag struct {
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
}

// Result 是一次完整的解读产出。
type Result struct {
	ID             string    `json:"id"`
	Message        string    `json:"message"`
	Emojis         []string  `json:"emojis"`
	Interpretation string    `json:"interpretation"`
	Metrics        Metrics   `json:"metrics"`
	RedFlags       []RedFlag `json:"redFlags"`
	Placeholder    bool      `json:"placeholder,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}
