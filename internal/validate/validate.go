package validate

import (
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/emojilens/backend/internal/model/interpretation"
)

const (
	// MinMessageLength 与 MaxMessageLength 以 UTF-16 码元计数，
	// 一个四字节 emoji 序列按其完整码元长度计入。
	MinMessageLength = 10
	MaxMessageLength = 1000
)

// Input 是尚未校验的原始提交内容。
type Input struct {
	Message  string `json:"message"`
	Platform string `json:"platform"`
	Context  string `json:"context"`
}

// FieldErrors 按字段聚合校验错误，规则之间彼此独立、不短路。
type FieldErrors map[string]string

// Valid 表示没有任何字段错误。
func (e FieldErrors) Valid() bool {
	return len(e) == 0
}

// Validate 将原始输入转换为合法的解读请求，或返回逐字段的错误集合。
// 对于类型正确但内容非法的输入永远不会返回 error 之外的失败形态。
func Validate(in Input) (interpretation.Request, FieldErrors) {
	errs := make(FieldErrors)

	message := strings.TrimSpace(in.Message)
	switch {
	case message == "":
		errs["message"] = "message is required"
	case MessageLength(message) < MinMessageLength:
		errs["message"] = fmt.Sprintf("message must be at least %d characters", MinMessageLength)
	case MessageLength(message) > MaxMessageLength:
		errs["message"] = fmt.Sprintf("message must be at most %d characters", MaxMessageLength)
	}

	if message != "" && !ContainsEmoji(message) {
		// emoji 规则独立于长度规则，两者可以同时报告。
		if _, ok := errs["message"]; !ok {
			errs["message"] = "message must contain at least one emoji"
		} else {
			errs["message"] += "; message must contain at least one emoji"
		}
	}

	platform := interpretation.Platform(strings.ToLower(strings.TrimSpace(in.Platform)))
	if !platform.Valid() {
		errs["platform"] = "platform must be one of the supported platforms"
	}

	context := interpretation.RelationshipContext(strings.ToLower(strings.TrimSpace(in.Context)))
	if !context.Valid() {
		errs["context"] = "context must be one of the supported relationship contexts"
	}

	if !errs.Valid() {
		return interpretation.Request{}, errs
	}

	return interpretation.Request{
		Message:  message,
		Platform: platform,
		Context:  context,
	}, nil
}

// MessageLength 返回字符串的 UTF-16 码元长度。
func MessageLength(s string) int {
	return len(utf16.Encode([]rune(s)))
}
