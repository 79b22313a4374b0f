package ws

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/emojilens/backend/internal/config"
	"github.com/emojilens/backend/internal/handler/interpret"
	"github.com/emojilens/backend/internal/quota"
	"github.com/emojilens/backend/internal/service/interpreter"
	"github.com/emojilens/backend/internal/session"
	"github.com/emojilens/backend/internal/validate"
)

// Handler 通过 WebSocket 暴露解读会话，支持推送途中取消。
// 一条连接对应一个会话控制器，可以多次 submit/retry/reset。
type Handler struct {
	governor  *quota.Governor
	generator interpreter.Generator
	stream    config.StreamConfig
	upgrader  websocket.Upgrader
}

// New 创建WebSocket处理器
func New(governor *quota.Governor, generator interpreter.Generator, stream config.StreamConfig) *Handler {
	return &Handler{
		governor:  governor,
		generator: generator,
		stream:    stream,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/interpret", h.handleInterpret)
}

type inboundMessage struct {
	Action   string `json:"action"`
	Message  string `json:"message,omitempty"`
	Platform string `json:"platform,omitempty"`
	Context  string `json:"context,omitempty"`
}

type outgoingMessage struct {
	Event     string `json:"event"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// handleInterpret 处理WebSocket连接的完整生命周期。
func (h *Handler) handleInterpret(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	clientID := interpret.ClientID(r)
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var writeMu sync.Mutex
	send := func(event string, data any) {
		writeMu.Lock()
		defer writeMu.Unlock()
		msg := outgoingMessage{Event: event, Data: data, Timestamp: time.Now().UnixMilli()}
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("[ws] write failed client=%s: %v", clientID, err)
		}
	}

	controller := session.NewController(session.Config{
		ClientID:    clientID,
		Governor:    h.governor,
		Generator:   h.generator,
		SoftTimeout: h.stream.SoftTimeout,
		HardTimeout: h.stream.HardTimeout,
		OnEvent: func(ev session.Event) {
			relayEvent(send, ev)
		},
	})

	if q, err := controller.Quota(ctx); err == nil {
		send("quota", q)
	}

	// submit/retry 在独立 goroutine 中推进，读循环保持畅通以接收取消。
	var pipeline sync.WaitGroup
	defer pipeline.Wait()

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[ws] connection closed client=%s: %v", clientID, err)
			}
			controller.Cancel()
			return
		}

		switch msg.Action {
		case "submit":
			input := validate.Input{Message: msg.Message, Platform: msg.Platform, Context: msg.Context}
			pipeline.Add(1)
			go func() {
				defer pipeline.Done()
				snapshot := controller.Submit(ctx, input)
				if q, err := controller.Quota(ctx); err == nil {
					send("quota", q)
				}
				send("end", map[string]any{"state": snapshot.State})
			}()
		case "retry":
			pipeline.Add(1)
			go func() {
				defer pipeline.Done()
				snapshot := controller.Retry(ctx)
				if q, err := controller.Quota(ctx); err == nil {
					send("quota", q)
				}
				send("end", map[string]any{"state": snapshot.State})
			}()
		case "cancel":
			if !controller.Cancel() {
				send("error", map[string]any{"message": "nothing to cancel"})
			}
		case "reset":
			if controller.Reset() {
				send("state", map[string]any{"state": session.StateIdle})
			} else {
				send("error", map[string]any{"message": "cannot reset a streaming session"})
			}
		case "snapshot":
			send("snapshot", controller.Snapshot())
		default:
			send("error", map[string]any{"message": "unknown action: " + msg.Action})
		}
	}
}

// relayEvent 将控制器事件映射为WebSocket消息，词汇与SSE端点保持一致。
func relayEvent(send func(event string, data any), ev session.Event) {
	switch ev.Type {
	case session.EventState:
		send("state", map[string]any{"state": ev.State})
	case session.EventDelta:
		send("delta", map[string]any{"content": ev.Text})
	case session.EventAdvisory:
		send("advisory", map[string]any{"message": "this is taking longer than expected"})
	case session.EventComplete:
		send("result", ev.Result)
		send("suggestions", map[string]any{"suggestions": ev.Suggestions})
	case session.EventCancelled:
		send("cancelled", map[string]any{"state": ev.State})
	case session.EventError:
		send("error", ev.Err)
	}
}
