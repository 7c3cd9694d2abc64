package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/techcorp/website/internal/core"
)

// Upstream produces the model's reply for a conversation, emitting text
// fragments in order.
type Upstream interface {
	StreamChat(ctx context.Context, history []core.ChatTurn, emit func(text string) error) error
}

type chatRequest struct {
	Messages []core.ChatTurn `json:"messages"`
}

// Handler serves POST /api/chat/stream: it validates the request body
// and relays the upstream reply as a server-sent event stream, one
// data: {"content":...} record per fragment, terminated by data: [DONE].
// A nil upstream (missing credentials) makes every request fail with a
// 500-class configuration error; that state is never retried from here.
type Handler struct {
	upstream Upstream
	logger   *slog.Logger
}

func NewHandler(upstream Upstream, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{upstream: upstream, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.upstream == nil {
		h.logger.Error("chat request rejected: upstream API key is not configured")
		writeJSONError(w, http.StatusInternalServerError, "API configuration error")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	if len(req.Messages) == 0 {
		writeJSONError(w, http.StatusBadRequest, "Invalid messages format")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.logger.Error("streaming unsupported by response writer")
		writeJSONError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	// SSE headers may only go out once we know the upstream accepted the
	// request; before the first fragment a failure still maps to a JSON
	// error status.
	started := false
	start := func() {
		if started {
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		started = true
	}

	err := h.upstream.StreamChat(r.Context(), req.Messages, func(text string) error {
		start()
		payload, err := json.Marshal(map[string]string{"content": text})
		if err != nil {
			return fmt.Errorf("encode chunk: %w", err)
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return fmt.Errorf("write chunk: %w", err)
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		if !started {
			status, message := classifyUpstreamError(err)
			h.logger.Error("upstream request failed", "status", status, "error", err)
			writeJSONError(w, status, message)
			return
		}

		h.logger.Error("streaming failed mid-reply", "error", err)
		fmt.Fprint(w, "data: {\"error\":\"Streaming failed\"}\n\n")
		flusher.Flush()
		return
	}

	start() // the model may legitimately produce no text at all
	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

func classifyUpstreamError(err error) (int, string) {
	message := err.Error()

	switch {
	case strings.Contains(message, "API key"):
		return http.StatusUnauthorized, "Invalid API key"
	case strings.Contains(message, "quota"):
		return http.StatusTooManyRequests, "API quota exceeded"
	default:
		return http.StatusServiceUnavailable, "AI service temporarily unavailable"
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
