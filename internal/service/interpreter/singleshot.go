package interpreter

import (
	"context"
	"io"

	"github.com/emojilens/backend/internal/model/interpretation"
)

// SingleShot 将底层生成器的流式调用改写为一次完整调用，
// 供 ARK_STREAM=false 的部署使用：正文作为单个片段交付，随后给出终止片段。
type SingleShot struct {
	inner Generator
}

// NewSingleShot 包装一个生成器，使其流式路径退化为单次调用。
func NewSingleShot(inner Generator) *SingleShot {
	return &SingleShot{inner: inner}
}

// Name 实现 Generator。
func (g *SingleShot) Name() string {
	return g.inner.Name() + "-invoke"
}

// Interpret 实现 Generator。
func (g *SingleShot) Interpret(ctx context.Context, req interpretation.Request) (*interpretation.Result, error) {
	return g.inner.Interpret(ctx, req)
}

// Stream 实现 Generator。调用推迟到第一次 Recv，
// 这样调用失败呈现为流中的接收错误而不是打开失败。
func (g *SingleShot) Stream(ctx context.Context, req interpretation.Request) (Stream, error) {
	return &invokeStream{gen: g.inner, ctx: ctx, req: req}, nil
}

// invokeStream 用单次调用结果模拟一条两片段的流。
type invokeStream struct {
	gen    Generator
	ctx    context.Context
	req    interpretation.Request
	opened bool
	inner  *sliceStream
}

// Recv 实现 Stream。
func (s *invokeStream) Recv() (Chunk, error) {
	if !s.opened {
		s.opened = true
		result, err := s.gen.Interpret(s.ctx, s.req)
		if err != nil {
			return Chunk{}, err
		}
		s.inner = &sliceStream{chunks: []Chunk{
			{Text: result.Interpretation},
			{Final: result},
		}}
	}
	if s.inner == nil {
		return Chunk{}, io.EOF
	}
	return s.inner.Recv()
}

// Close 实现 Stream。
func (s *invokeStream) Close() {
	if s.inner != nil {
		s.inner.Close()
	}
}
