package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/emojilens/backend/internal/analysis/tone"
	"github.com/emojilens/backend/internal/model/interpretation"
	"github.com/emojilens/backend/internal/quota"
	"github.com/emojilens/backend/internal/service/interpreter"
	"github.com/emojilens/backend/internal/validate"
)

const (
	// DefaultSoftTimeout 触发"比预期更久"的提示而不改变状态。
	DefaultSoftTimeout = 10 * time.Second
	// DefaultHardTimeout 在始终没有数据到达时强制会话进入超时错误。
	DefaultHardTimeout = 45 * time.Second
)

// Config carries the collaborators and tuning for one controller.
type Config struct {
	ClientID    string
	Governor    *quota.Governor
	Generator   interpreter.Generator
	SoftTimeout time.Duration
	HardTimeout time.Duration
	// OnEvent, when set, receives lifecycle events for transports to relay.
	// It is invoked without the controller lock held.
	OnEvent func(Event)
}

// Controller owns the request lifecycle state machine: it validates input,
// reserves a quota slot, drives the generation stream, and exposes the scored
// tone suggestions once metrics are known. Submit drives the pipeline in the
// calling goroutine; Cancel, Reset, and the timeout timers intervene from
// outside. A generation counter guards against late chunks being applied
// after a cancel or timeout settled the session.
type Controller struct {
	mu sync.Mutex

	clientID    string
	governor    *quota.Governor
	generator   interpreter.Generator
	softTimeout time.Duration
	hardTimeout time.Duration
	onEvent     func(Event)

	state        State
	accumulated  strings.Builder
	sessionErr   *Error
	startedAt    time.Time
	slowAdvisory bool
	gotData      bool
	lastInput    *validate.Input
	result       *interpretation.Result
	suggestions  []tone.Suggestion

	generation   int
	cancelStream context.CancelFunc
	softTimer    *time.Timer
	hardTimer    *time.Timer
}

// NewController creates an idle controller for one caller session.
func NewController(cfg Config) *Controller {
	softTimeout := cfg.SoftTimeout
	if softTimeout <= 0 {
		softTimeout = DefaultSoftTimeout
	}
	hardTimeout := cfg.HardTimeout
	if hardTimeout <= softTimeout {
		hardTimeout = DefaultHardTimeout
		if hardTimeout <= softTimeout {
			hardTimeout = softTimeout * 4
		}
	}

	return &Controller{
		clientID:    cfg.ClientID,
		governor:    cfg.Governor,
		generator:   cfg.Generator,
		softTimeout: softTimeout,
		hardTimeout: hardTimeout,
		onEvent:     cfg.OnEvent,
		state:       StateIdle,
	}
}

// Submit runs the full pipeline for a raw submission and blocks until the
// session reaches a terminal state. Validation and quota failures settle the
// session without touching the network; a quota slot is reserved optimistically
// before dispatch and rolled back only when the stream fails before any data
// arrived.
func (c *Controller) Submit(ctx context.Context, in validate.Input) Snapshot {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		log.Printf("[session] submit ignored in state=%s", c.state)
		return c.Snapshot()
	}
	c.generation++
	gen := c.generation
	c.state = StateValidating
	c.startedAt = time.Now()
	c.lastInput = &in
	c.mu.Unlock()
	c.emit(Event{Type: EventState, State: StateValidating})

	req, fieldErrs := validate.Validate(in)
	if !fieldErrs.Valid() {
		return c.fail(gen, &Error{
			Kind:    ErrorValidation,
			Message: "the submitted message could not be validated",
			Fields:  fieldErrs,
		})
	}

	c.setState(gen, StateQuotaChecking)

	decision, err := c.governor.Check(ctx, c.clientID)
	if err != nil {
		// Store trouble fails open toward quota available.
		log.Printf("[session] quota check failed, allowing request: %v", err)
		decision = quota.Decision{Allowed: true, Remaining: c.governor.Max()}
	}
	if !decision.Allowed {
		resetIn := quota.FormatReset(time.Until(decision.ResetAt))
		return c.fail(gen, &Error{
			Kind:    ErrorQuotaExceeded,
			Message: fmt.Sprintf("daily interpretation limit reached, resets in %s", resetIn),
			ResetAt: decision.ResetAt,
			ResetIn: resetIn,
		})
	}

	if _, err := c.governor.RecordUse(ctx, c.clientID); err != nil {
		log.Printf("[session] quota reserve failed: %v", err)
	}

	return c.run(ctx, gen, req)
}

// Retry re-enters the pipeline with the last submitted input. Only an errored
// session can be retried, and the retry goes through a fresh quota check.
func (c *Controller) Retry(ctx context.Context) Snapshot {
	c.mu.Lock()
	if c.state != StateErrored || c.lastInput == nil {
		c.mu.Unlock()
		return c.Snapshot()
	}
	in := *c.lastInput
	c.resetLocked()
	c.mu.Unlock()

	return c.Submit(ctx, in)
}

// Cancel aborts an in-flight stream. Text already accumulated is retained and
// the reserved quota slot is kept — the service may have begun processing.
// Returns false when the session is not streaming.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	if c.state != StateStreaming {
		c.mu.Unlock()
		return false
	}
	// Chunks still in flight after this point belong to a dead generation.
	c.generation++
	c.stopTimersLocked()
	if c.cancelStream != nil {
		c.cancelStream()
		c.cancelStream = nil
	}
	c.state = StateCancelled
	c.mu.Unlock()

	c.emit(Event{Type: EventCancelled, State: StateCancelled})
	return true
}

// Reset returns a terminal session to Idle, clearing accumulated text and the
// error. Resetting an already-idle session is a no-op; a streaming session
// cannot be reset.
func (c *Controller) Reset() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateIdle {
		return true
	}
	if !c.state.Terminal() {
		return false
	}
	c.resetLocked()
	return true
}

// Snapshot returns the current read-only session state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		State:           c.state,
		AccumulatedText: c.accumulated.String(),
		Error:           c.sessionErr,
		StartedAt:       c.startedAt,
		SlowAdvisory:    c.slowAdvisory,
		Result:          c.result,
		Suggestions:     append([]tone.Suggestion(nil), c.suggestions...),
	}
}

// Suggestions returns the ranked response-tone suggestions once available.
func (c *Controller) Suggestions() []tone.Suggestion {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]tone.Suggestion(nil), c.suggestions...)
}

// Quota exposes the caller-facing quota view without reserving anything.
func (c *Controller) Quota(ctx context.Context) (QuotaSnapshot, error) {
	decision, err := c.governor.Check(ctx, c.clientID)
	if err != nil {
		return QuotaSnapshot{}, err
	}
	return QuotaSnapshot{
		Remaining: decision.Remaining,
		Max:       c.governor.Max(),
		ResetAt:   decision.ResetAt,
		ResetIn:   quota.FormatReset(time.Until(decision.ResetAt)),
	}, nil
}

// run opens the generation stream and applies chunks strictly in arrival order.
func (c *Controller) run(ctx context.Context, gen int, req interpretation.Request) Snapshot {
	streamCtx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		cancel()
		return c.Snapshot()
	}
	c.state = StateStreaming
	c.cancelStream = cancel
	c.softTimer = time.AfterFunc(c.softTimeout, func() { c.advise(gen) })
	c.hardTimer = time.AfterFunc(c.hardTimeout, func() { c.expire(gen) })
	c.mu.Unlock()
	c.emit(Event{Type: EventState, State: StateStreaming})

	stream, err := c.generator.Stream(streamCtx, req)
	if err != nil {
		// The connection was never established, so the slot goes back.
		if refundErr := c.governor.Refund(ctx, c.clientID); refundErr != nil {
			log.Printf("[session] quota refund failed: %v", refundErr)
		}
		return c.fail(gen, &Error{
			Kind:    ErrorTransport,
			Message: "could not reach the generation service",
		})
	}
	defer stream.Close()

	for {
		chunk, recvErr := stream.Recv()
		if recvErr == nil {
			if !c.applyChunk(gen, chunk) {
				// Cancelled or timed out; late chunks are dropped.
				return c.Snapshot()
			}
			continue
		}
		if errors.Is(recvErr, io.EOF) {
			return c.complete(gen)
		}
		return c.streamFailure(ctx, gen, recvErr)
	}
}

// applyChunk appends stream text in arrival order. The first chunk stops the
// timeout timers and clears any slow advisory.
func (c *Controller) applyChunk(gen int, chunk interpreter.Chunk) bool {
	c.mu.Lock()
	if c.generation != gen || c.state != StateStreaming {
		c.mu.Unlock()
		return false
	}
	if !c.gotData {
		c.gotData = true
		c.slowAdvisory = false
		c.stopTimersLocked()
	}
	if chunk.Text != "" {
		c.accumulated.WriteString(chunk.Text)
	}
	if chunk.Final != nil {
		c.result = chunk.Final
	}
	c.mu.Unlock()

	if chunk.Text != "" {
		c.emit(Event{Type: EventDelta, State: StateStreaming, Text: chunk.Text})
	}
	return true
}

// complete settles a normally ended stream and scores the tone suggestions.
func (c *Controller) complete(gen int) Snapshot {
	c.mu.Lock()
	if c.generation != gen || c.state != StateStreaming {
		c.mu.Unlock()
		return c.Snapshot()
	}
	c.stopTimersLocked()

	if c.result == nil {
		sessErr := &Error{
			Kind:    ErrorMalformedResponse,
			Message: "the generation service returned an incomplete response",
		}
		c.state = StateErrored
		c.sessionErr = sessErr
		c.mu.Unlock()
		c.emit(Event{Type: EventError, State: StateErrored, Err: sessErr})
		return c.Snapshot()
	}

	c.state = StateComplete
	c.suggestions = tone.Score(c.result.Metrics)
	result := c.result
	suggestions := append([]tone.Suggestion(nil), c.suggestions...)
	c.mu.Unlock()

	c.emit(Event{Type: EventComplete, State: StateComplete, Result: result, Suggestions: suggestions})
	return c.Snapshot()
}

// streamFailure classifies a mid-flight failure. The reserved slot is refunded
// only when nothing was received — a pure failure to connect.
func (c *Controller) streamFailure(ctx context.Context, gen int, recvErr error) Snapshot {
	c.mu.Lock()
	if c.generation != gen || c.state != StateStreaming {
		// Cancel or hard timeout already settled the session.
		c.mu.Unlock()
		return c.Snapshot()
	}
	gotData := c.gotData
	c.mu.Unlock()

	log.Printf("[session] stream failed for client=%s: %v", c.clientID, recvErr)

	kind := ErrorStream
	message := "the interpretation stream failed"
	switch {
	case errors.Is(recvErr, interpreter.ErrMalformedResponse):
		kind = ErrorMalformedResponse
		message = "the generation service returned an unexpected response"
	case !gotData:
		kind = ErrorTransport
		message = "could not reach the generation service"
		if err := c.governor.Refund(ctx, c.clientID); err != nil {
			log.Printf("[session] quota refund failed: %v", err)
		}
	}

	return c.fail(gen, &Error{Kind: kind, Message: message})
}

// advise raises the slow advisory without leaving Streaming.
func (c *Controller) advise(gen int) {
	c.mu.Lock()
	if c.generation != gen || c.state != StateStreaming || c.gotData {
		c.mu.Unlock()
		return
	}
	c.slowAdvisory = true
	c.mu.Unlock()

	c.emit(Event{Type: EventAdvisory, State: StateStreaming})
}

// expire forces a timeout error after the hard deadline with no data.
func (c *Controller) expire(gen int) {
	c.mu.Lock()
	if c.generation != gen || c.state != StateStreaming || c.gotData {
		c.mu.Unlock()
		return
	}
	c.generation++
	c.stopTimersLocked()
	if c.cancelStream != nil {
		c.cancelStream()
		c.cancelStream = nil
	}
	sessErr := &Error{
		Kind:    ErrorTimeout,
		Message: "the generation service did not respond in time",
	}
	c.state = StateErrored
	c.sessionErr = sessErr
	c.mu.Unlock()

	c.emit(Event{Type: EventError, State: StateErrored, Err: sessErr})
}

// fail moves a live generation to Errored and releases stream resources.
func (c *Controller) fail(gen int, sessErr *Error) Snapshot {
	c.mu.Lock()
	if c.generation != gen || c.state.Terminal() || c.state == StateIdle {
		c.mu.Unlock()
		return c.Snapshot()
	}
	c.stopTimersLocked()
	if c.cancelStream != nil {
		c.cancelStream()
		c.cancelStream = nil
	}
	c.state = StateErrored
	c.sessionErr = sessErr
	c.mu.Unlock()

	c.emit(Event{Type: EventError, State: StateErrored, Err: sessErr})
	return c.Snapshot()
}

func (c *Controller) setState(gen int, state State) {
	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		return
	}
	c.state = state
	c.mu.Unlock()

	c.emit(Event{Type: EventState, State: state})
}

// resetLocked clears session state back to Idle. Callers hold the lock.
func (c *Controller) resetLocked() {
	c.generation++
	c.stopTimersLocked()
	if c.cancelStream != nil {
		c.cancelStream()
		c.cancelStream = nil
	}
	c.state = StateIdle
	c.accumulated.Reset()
	c.sessionErr = nil
	c.result = nil
	c.suggestions = nil
	c.slowAdvisory = false
	c.gotData = false
	c.startedAt = time.Time{}
}

func (c *Controller) stopTimersLocked() {
	if c.softTimer != nil {
		c.softTimer.Stop()
		c.softTimer = nil
	}
	if c.hardTimer != nil {
		c.hardTimer.Stop()
		c.hardTimer = nil
	}
}

func (c *Controller) emit(ev Event) {
	if c.onEvent != nil {
		c.onEvent(ev)
	}
}
