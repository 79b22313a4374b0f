package interpreter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/emojilens/backend/internal/analysis/tone"
	"github.com/emojilens/backend/internal/config"
	"github.com/emojilens/backend/internal/model/interpretation"
	"github.com/emojilens/backend/internal/validate"
)

// Service 通过大模型产出解读。单次调用期望一个完整 JSON 对象，
// 流式调用先输出解读正文，再以尾部标记携带指标。
type Service struct {
	cfg         config.AIConfig
	jsonChain   compose.Runnable[map[string]any, *schema.Message]
	streamChain compose.Runnable[map[string]any, *schema.Message]
}

// NewService 创建模型驱动的解读服务。
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	jsonChain, err := compileChain(ctx, chatModel, interpretSystemPrompt+"\n\n"+interpretJSONPrompt)
	if err != nil {
		return nil, fmt.Errorf("failed to compile interpret chain: %w", err)
	}

	streamChain, err := compileChain(ctx, chatModel, interpretSystemPrompt+"\n\n"+interpretStreamPrompt)
	if err != nil {
		return nil, fmt.Errorf("failed to compile stream chain: %w", err)
	}

	return &Service{cfg: cfg, jsonChain: jsonChain, streamChain: streamChain}, nil
}

func compileChain(ctx context.Context, chatModel model.ChatModel, system string) (compose.Runnable[map[string]any, *schema.Message], error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(system),
		schema.UserMessage(interpretUserPrompt),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	return chain.Compile(ctx)
}

// Name 实现 Generator。
func (s *Service) Name() string {
	return "ark"
}

// Interpret 实现 Generator，以单次调用拿到完整结果。
func (s *Service) Interpret(ctx context.Context, req interpretation.Request) (*interpretation.Result, error) {
	msg, err := s.jsonChain.Invoke(ctx, chainInput(req))
	if err != nil {
		return nil, fmt.Errorf("failed to run interpret chain: %w", err)
	}
	if msg == nil {
		return nil, fmt.Errorf("%w: nil model message", ErrMalformedResponse)
	}

	payload, err := parseGenerationPayload(msg.Content)
	if err != nil {
		return nil, err
	}

	result := buildResult(req, payload.Interpretation, payload.Metrics, payload.RedFlags, false)
	log.Printf("[interpreter] generated result id=%s length=%d", result.ID, len(result.Interpretation))
	return result, nil
}

// Stream 实现 Generator，打开流式解读。
func (s *Service) Stream(ctx context.Context, req interpretation.Request) (Stream, error) {
	sr, err := s.streamChain.Stream(ctx, chainInput(req))
	if err != nil {
		return nil, fmt.Errorf("failed to stream interpret chain: %w", err)
	}

	return &modelStream{svc: s, ctx: ctx, req: req, inner: sr}, nil
}

func chainInput(req interpretation.Request) map[string]any {
	return map[string]any{
		"platform": string(req.Platform),
		"context":  string(req.Context),
		"message":  req.Message,
	}
}

func buildResult(req interpretation.Request, text string, metrics interpretation.Metrics, flags []interpretation.RedFlag, placeholder bool) *interpretation.Result {
	return &interpretation.Result{
		ID:             uuid.NewString(),
		Message:        req.Message,
		Emojis:         validate.ExtractEmojis(req.Message),
		Interpretation: strings.TrimSpace(text),
		Metrics:        metrics,
		RedFlags:       flags,
		Placeholder:    placeholder,
		Timestamp:      time.Now().UTC(),
	}
}

// modelStream 包装 eino 的流读取器，负责把尾部指标标记从正文中剥离。
// 标记可能被切分到相邻片段，因此末尾可能构成标记前缀的文本会被暂扣。
type modelStream struct {
	svc       *Service
	ctx       context.Context
	req       interpretation.Request
	inner     *schema.StreamReader[*schema.Message]
	carry     string
	emitted   strings.Builder
	trailer   strings.Builder
	sawMarker bool
	done      bool
}

// Recv 实现 Stream。
func (m *modelStream) Recv() (Chunk, error) {
	if m.done {
		return Chunk{}, io.EOF
	}

	for {
		msg, err := m.inner.Recv()
		if errors.Is(err, io.EOF) {
			return m.finish()
		}
		if err != nil {
			return Chunk{}, err
		}
		if msg == nil || msg.Content == "" {
			continue
		}

		if m.sawMarker {
			m.trailer.WriteString(msg.Content)
			continue
		}

		text := m.carry + msg.Content
		if idx := strings.Index(text, MetricsMarker); idx >= 0 {
			m.sawMarker = true
			m.carry = ""
			m.trailer.WriteString(text[idx+len(MetricsMarker):])
			prose := text[:idx]
			if prose == "" {
				continue
			}
			m.emitted.WriteString(prose)
			return Chunk{Text: prose}, nil
		}

		hold := markerPrefixLen(text)
		emit := text[:len(text)-hold]
		m.carry = text[len(text)-hold:]
		if emit == "" {
			continue
		}
		m.emitted.WriteString(emit)
		return Chunk{Text: emit}, nil
	}
}

// finish 在流正常结束时组装终止片段。
func (m *modelStream) finish() (Chunk, error) {
	m.done = true

	leftover := ""
	if !m.sawMarker && m.carry != "" {
		leftover = m.carry
		m.emitted.WriteString(m.carry)
		m.carry = ""
	}

	text := strings.TrimSpace(m.emitted.String())
	if text == "" {
		return Chunk{}, fmt.Errorf("%w: stream produced no interpretation text", ErrMalformedResponse)
	}

	metrics, flags := m.resolveMetrics()
	result := buildResult(m.req, text, metrics, flags, false)
	log.Printf("[interpreter] stream completed id=%s length=%d marker=%v", result.ID, len(text), m.sawMarker)

	return Chunk{Text: leftover, Final: result}, nil
}

// resolveMetrics 依次尝试尾部标记、单次调用兜底和启发式估计。
func (m *modelStream) resolveMetrics() (interpretation.Metrics, []interpretation.RedFlag) {
	if m.sawMarker {
		payload, err := parseTrailer(m.trailer.String())
		if err == nil {
			return payload.Metrics, payload.RedFlags
		}
		log.Printf("[interpreter] metrics trailer unusable, falling back: %v", err)
	}

	if result, err := m.svc.Interpret(m.ctx, m.req); err == nil {
		return result.Metrics, result.RedFlags
	} else {
		log.Printf("[interpreter] metrics fallback invoke failed, using heuristics: %v", err)
	}

	return tone.EstimateMetrics(m.req.Message), nil
}

// Close 实现 Stream。
func (m *modelStream) Close() {
	m.inner.Close()
}

// markerPrefixLen 返回 text 末尾与指标标记前缀重合的最长长度。
func markerPrefixLen(text string) int {
	max := len(MetricsMarker) - 1
	if max > len(text) {
		max = len(text)
	}
	for n := max; n > 0; n-- {
		if strings.HasSuffix(text, MetricsMarker[:n]) {
			return n
		}
	}
	return 0
}
