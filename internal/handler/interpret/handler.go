package interpret

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/emojilens/backend/internal/config"
	"github.com/emojilens/backend/internal/quota"
	"github.com/emojilens/backend/internal/service/interpreter"
	"github.com/emojilens/backend/internal/session"
	"github.com/emojilens/backend/internal/validate"
	"github.com/emojilens/backend/pkg/utils"
)

// Handler exposes the interpretation pipeline over HTTP.
type Handler struct {
	governor  *quota.Governor
	generator interpreter.Generator
	stream    config.StreamConfig
}

// New creates the interpretation handler.
func New(governor *quota.Governor, generator interpreter.Generator, stream config.StreamConfig) *Handler {
	return &Handler{
		governor:  governor,
		generator: generator,
		stream:    stream,
	}
}

// RegisterRoutes 注册解读相关的路由。
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/interpret", h.handleInterpret)
	r.Post("/validate", h.handleValidate)
	r.Get("/quota", h.handleQuota)
}

// handleInterpret drives a full interpretation session and relays its events
// over Server-Sent Events. The connection stays open until the session
// reaches a terminal state.
func (h *Handler) handleInterpret(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	var input validate.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		// Malformed transport-level input is not a validator concern.
		utils.RespondErrorKind(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	utils.SetupSSEHeaders(w)

	// SSE writes can come from the submit goroutine and the advisory timer.
	var writeMu sync.Mutex
	send := func(event string, payload any) {
		writeMu.Lock()
		defer writeMu.Unlock()
		utils.SendSSEEvent(w, flusher, event, payload)
	}

	clientID := ClientID(r)
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

	snapshot := controller.Submit(r.Context(), input)

	if q, err := controller.Quota(r.Context()); err == nil {
		send("quota", q)
	}
	send("end", map[string]any{"state": snapshot.State, "finished": true})

	log.Printf("[interpret] session finished client=%s state=%s generator=%s",
		clientID, snapshot.State, h.generator.Name())
}

// relayEvent maps controller events onto the SSE event vocabulary.
func relayEvent(send func(event string, payload any), ev session.Event) {
	switch ev.Type {
	case session.EventState:
		send("state", map[string]any{"state": ev.State})
	case session.EventDelta:
		send("delta", map[string]any{"content": ev.Text})
	case session.EventAdvisory:
		send("advisory", map[string]any{
			"state":   ev.State,
			"message": "this is taking longer than expected",
		})
	case session.EventComplete:
		send("result", ev.Result)
		send("suggestions", map[string]any{"suggestions": ev.Suggestions})
	case session.EventCancelled:
		send("cancelled", map[string]any{"state": ev.State})
	case session.EventError:
		send("error", ev.Err)
	}
}

// handleValidate 只运行校验与 emoji 提取，供前端在提交前预检。
func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	var input validate.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondErrorKind(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	_, fieldErrs := validate.Validate(input)
	payload := map[string]any{
		"valid":  fieldErrs.Valid(),
		"emojis": validate.ExtractEmojis(input.Message),
		"length": validate.MessageLength(input.Message),
	}
	if !fieldErrs.Valid() {
		payload["errors"] = fieldErrs
	}

	utils.RespondJSON(w, http.StatusOK, payload)
}

// handleQuota 返回当前客户端的配额快照，不做任何保留。
func (h *Handler) handleQuota(w http.ResponseWriter, r *http.Request) {
	decision, err := h.governor.Check(r.Context(), ClientID(r))
	if err != nil {
		utils.RespondErrorKind(w, http.StatusInternalServerError, "store_unavailable", "quota lookup failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, session.QuotaSnapshot{
		Remaining: decision.Remaining,
		Max:       h.governor.Max(),
		ResetAt:   decision.ResetAt,
		ResetIn:   quota.FormatReset(time.Until(decision.ResetAt)),
	})
}

// ClientID 确定配额归属：优先显式的 X-Client-ID，否则退回远端 IP。
func ClientID(r *http.Request) string {
	if id := r.Header.Get("X-Client-ID"); id != "" {
		return id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
