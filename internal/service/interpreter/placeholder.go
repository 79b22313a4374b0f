package interpreter

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/emojilens/backend/internal/analysis/tone"
	"github.com/emojilens/backend/internal/model/interpretation"
	"github.com/emojilens/backend/internal/validate"
)

// Placeholder 在模型未配置或不可用时替代真实生成服务。
// 输出完全确定，正文中始终带有 placeholder 字样，保证整条管线离线可用。
type Placeholder struct{}

// NewPlaceholder 创建占位生成器。
func NewPlaceholder() *Placeholder {
	return &Placeholder{}
}

// Name 实现 Generator。
func (p *Placeholder) Name() string {
	return "placeholder"
}

// Interpret 实现 Generator。
func (p *Placeholder) Interpret(_ context.Context, req interpretation.Request) (*interpretation.Result, error) {
	metrics := tone.EstimateMetrics(req.Message)
	text := p.compose(req, metrics)
	return buildResult(req, text, metrics, p.redFlags(metrics), true), nil
}

// Stream 实现 Generator，把占位正文按词边界切成若干片段交付，
// 使流式路径在离线环境下同样可以演练。
func (p *Placeholder) Stream(_ context.Context, req interpretation.Request) (Stream, error) {
	metrics := tone.EstimateMetrics(req.Message)
	text := p.compose(req, metrics)
	result := buildResult(req, text, metrics, p.redFlags(metrics), true)

	words := strings.Fields(text)
	const wordsPerChunk = 6

	var chunks []Chunk
	for start := 0; start < len(words); start += wordsPerChunk {
		end := start + wordsPerChunk
		if end > len(words) {
			end = len(words)
		}
		piece := strings.Join(words[start:end], " ")
		if end < len(words) {
			piece += " "
		}
		chunks = append(chunks, Chunk{Text: piece})
	}
	chunks = append(chunks, Chunk{Final: result})

	return &sliceStream{chunks: chunks}, nil
}

// compose 根据启发式指标拼出确定性的占位解读正文。
func (p *Placeholder) compose(req interpretation.Request, metrics interpretation.Metrics) string {
	var b strings.Builder

	b.WriteString("This is a placeholder interpretation generated without the live model. ")

	emojis := validate.ExtractEmojis(req.Message)
	if len(emojis) > 0 {
		b.WriteString(fmt.Sprintf("The message uses %s, ", strings.Join(emojis, " ")))
	} else {
		b.WriteString("The message ")
	}

	switch metrics.OverallTone {
	case interpretation.TonePositive:
		b.WriteString("and overall it reads warm and friendly. ")
	case interpretation.ToneNegative:
		b.WriteString("and overall it carries some tension worth paying attention to. ")
	default:
		b.WriteString("and overall it reads fairly neutral. ")
	}

	if metrics.SarcasmProbability > 50 {
		b.WriteString("There are hints that the sender may not mean this entirely literally. ")
	}
	if metrics.PassiveAggressionProbability > 50 {
		b.WriteString("Some phrasing could be read as passive-aggressive depending on your history together. ")
	}

	b.WriteString(fmt.Sprintf("Coming from a %s on %s, a short, genuine reply is a safe move.",
		req.Context, req.Platform))

	return b.String()
}

// redFlags 从启发式指标推导确定性的警示信号。
func (p *Placeholder) redFlags(metrics interpretation.Metrics) []interpretation.RedFlag {
	var flags []interpretation.RedFlag
	if metrics.PassiveAggressionProbability > 50 {
		flags = append(flags, interpretation.RedFlag{
			Severity:    interpretation.SeverityMedium,
			Description: "Phrasing patterns often associated with passive aggression.",
		})
	}
	if metrics.SarcasmProbability > 50 {
		flags = append(flags, interpretation.RedFlag{
			Severity:    interpretation.SeverityLow,
			Description: "Likely sarcasm — the literal reading may not be the intended one.",
		})
	}
	return flags
}

// sliceStream 依次交付预先准备好的片段。
type sliceStream struct {
	chunks []Chunk
	next   int
}

// Recv 实现 Stream。
func (s *sliceStream) Recv() (Chunk, error) {
	if s.next >= len(s.chunks) {
		return Chunk{}, io.EOF
	}
	chunk := s.chunks[s.next]
	s.next++
	return chunk, nil
}

// Close 实现 Stream。
func (s *sliceStream) Close() {
	s.next = len(s.chunks)
}
