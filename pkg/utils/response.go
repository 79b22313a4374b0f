package utils

import (
	"encoding/json"
	"log"
	"net/http"
)

// errorPayload 是所有非 SSE 错误响应的统一负载。
// kind 供前端按失败类别决定提示方式，可以为空。
type errorPayload struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// RespondJSON 发送JSON响应
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// RespondError 发送不带类别的错误响应
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, errorPayload{Error: message})
}

// RespondErrorKind 发送带失败类别的错误响应
func RespondErrorKind(w http.ResponseWriter, status int, kind, message string) {
	RespondJSON(w, status, errorPayload{Error: message, Kind: kind})
}
