package interpreter

import (
	"context"
	"errors"

	"github.com/emojilens/backend/internal/model/interpretation"
)

// ErrMalformedResponse 表示生成服务返回了无法解析成期望形态的数据。
var ErrMalformedResponse = errors.New("malformed generation response")

// Chunk 是流式解读的一个增量片段。终止片段携带完整结果。
type Chunk struct {
	Text  string
	Final *interpretation.Result
}

// Stream 按到达顺序逐个交付片段，结束时 Recv 返回 io.EOF。
type Stream interface {
	Recv() (Chunk, error)
	Close()
}

// Generator 是对文本生成服务的抽象。会话控制器只依赖这个接口，
// 因此既可以接真实模型，也可以接离线占位实现或测试桩。
type Generator interface {
	// Name 标识生成器实现，用于日志。
	Name() string

	// Interpret 以单次调用的方式产出完整解读结果。
	Interpret(ctx context.Context, req interpretation.Request) (*interpretation.Result, error)

	// Stream 打开可取消的流式解读，逐片段交付解读正文。
	Stream(ctx context.Context, req interpretation.Request) (Stream, error)
}
