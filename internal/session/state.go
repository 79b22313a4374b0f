package session

import (
	"time"

	"github.com/emojilens/backend/internal/analysis/tone"
	"github.com/emojilens/backend/internal/model/interpretation"
	"github.com/emojilens/backend/internal/validate"
)

// State 是解读会话生命周期状态机的命名状态。
type State string

const (
	StateIdle          State = "idle"
	StateValidating    State = "validating"
	StateQuotaChecking State = "quota_checking"
	StateStreaming     State = "streaming"
	StateComplete      State = "complete"
	StateErrored       State = "errored"
	StateCancelled     State = "cancelled"
)

// Terminal 表示该状态只能通过显式 reset 离开。
func (s State) Terminal() bool {
	return s == StateComplete || s == StateErrored || s == StateCancelled
}

// ErrorKind 是会话失败的分类，调用方按它决定是否展示重试入口。
type ErrorKind string

const (
	ErrorValidation        ErrorKind = "validation"
	ErrorQuotaExceeded     ErrorKind = "quota_exceeded"
	ErrorTransport         ErrorKind = "transport"
	ErrorStream            ErrorKind = "stream"
	ErrorTimeout           ErrorKind = "timeout"
	ErrorMalformedResponse ErrorKind = "malformed_response"
)

// Retryable 表示该类失败可以由用户手动重试。重试永远不会自动发生。
func (k ErrorKind) Retryable() bool {
	switch k {
	case ErrorTransport, ErrorStream, ErrorTimeout, ErrorMalformedResponse:
		return true
	default:
		return false
	}
}

// Error 是以终态形式呈现的会话失败，不以异常方式向外传播。
type Error struct {
	Kind    ErrorKind            `json:"kind"`
	Message string               `json:"message"`
	Fields  validate.FieldErrors `json:"fields,omitempty"`
	ResetAt time.Time            `json:"resetAt,omitempty"`
	ResetIn string               `json:"resetIn,omitempty"`
}

// Error 实现 error。
func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// EventType 标识控制器向传输层回调的事件种类。
type EventType string

const (
	EventState     EventType = "state"
	EventDelta     EventType = "delta"
	EventAdvisory  EventType = "advisory"
	EventComplete  EventType = "complete"
	EventCancelled EventType = "cancelled"
	EventError     EventType = "error"
)

// Event 是控制器推进状态机时产生的外部可见事件。
type Event struct {
	Type        EventType
	State       State
	Text        string
	Result      *interpretation.Result
	Suggestions []tone.Suggestion
	Err         *Error
}

// Snapshot 是会话状态的只读快照。
type Snapshot struct {
	State           State                  `json:"state"`
	AccumulatedText string                 `json:"accumulatedText"`
	Error           *Error                 `json:"error,omitempty"`
	StartedAt       time.Time              `json:"startedAt,omitempty"`
	SlowAdvisory    bool                   `json:"slowAdvisory,omitempty"`
	Result          *interpretation.Result `json:"result,omitempty"`
	Suggestions     []tone.Suggestion      `json:"suggestions,omitempty"`
}

// QuotaSnapshot 是面向调用方的配额视图。
type QuotaSnapshot struct {
	Remaining int       `json:"remaining"`
	Max       int       `json:"max"`
	ResetAt   time.Time `json:"resetAt"`
	ResetIn   string    `json:"resetIn"`
}
