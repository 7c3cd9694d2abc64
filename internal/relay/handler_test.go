package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/techcorp/website/internal/core"
)

type fakeUpstream struct {
	fragments []string
	err       error
	failAfter int // fragments emitted before err; -1 fails immediately
	history   []core.ChatTurn
}

func (f *fakeUpstream) StreamChat(ctx context.Context, history []core.ChatTurn, emit func(string) error) error {
	f.history = history
	if f.err != nil && f.failAfter < 0 {
		return f.err
	}
	for i, fragment := range f.fragments {
		if f.err != nil && i == f.failAfter {
			return f.err
		}
		if err := emit(fragment); err != nil {
			return err
		}
	}
	return f.err
}

func post(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat/stream", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func jsonError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("response is not a JSON error: %q", rec.Body.String())
	}
	return payload.Error
}

func TestHandler_StreamsReply(t *testing.T) {
	upstream := &fakeUpstream{fragments: []string{"Hello", " from TechCorp"}}
	h := NewHandler(upstream, nil)

	rec := post(t, h, `{"messages":[{"role":"user","content":"hi"}]}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("content type = %q", got)
	}

	want := "data: {\"content\":\"Hello\"}\n\n" +
		"data: {\"content\":\" from TechCorp\"}\n\n" +
		"data: [DONE]\n\n"
	if got := rec.Body.String(); got != want {
		t.Fatalf("body = %q, want %q", got, want)
	}

	if len(upstream.history) != 1 || upstream.history[0].Content != "hi" {
		t.Fatalf("unexpected history passed upstream: %+v", upstream.history)
	}
}

func TestHandler_EmptyReplyStillTerminates(t *testing.T) {
	h := NewHandler(&fakeUpstream{}, nil)

	rec := post(t, h, `{"messages":[{"role":"user","content":"hi"}]}`)

	if got := rec.Body.String(); got != "data: [DONE]\n\n" {
		t.Fatalf("body = %q", got)
	}
}

func TestHandler_MissingUpstream(t *testing.T) {
	h := NewHandler(nil, nil)

	rec := post(t, h, `{"messages":[{"role":"user","content":"hi"}]}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if got := jsonError(t, rec); got != "API configuration error" {
		t.Fatalf("error = %q", got)
	}
}

func TestHandler_BadRequestBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"not json", "{oops", "Invalid request format"},
		{"no messages", `{}`, "Invalid messages format"},
		{"empty messages", `{"messages":[]}`, "Invalid messages format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&fakeUpstream{}, nil)
			rec := post(t, h, tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if got := jsonError(t, rec); got != tt.want {
				t.Fatalf("error = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHandler_UpstreamErrorBeforeFirstFragment(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"bad key", errors.New("invalid API key provided"), http.StatusUnauthorized, "Invalid API key"},
		{"quota", errors.New("gemini stream: quota exhausted"), http.StatusTooManyRequests, "API quota exceeded"},
		{"other", errors.New("connection reset"), http.StatusServiceUnavailable, "AI service temporarily unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&fakeUpstream{err: tt.err, failAfter: -1}, nil)
			rec := post(t, h, `{"messages":[{"role":"user","content":"hi"}]}`)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := jsonError(t, rec); got != tt.wantError {
				t.Fatalf("error = %q, want %q", got, tt.wantError)
			}
		})
	}
}

func TestHandler_MidStreamFailure(t *testing.T) {
	upstream := &fakeUpstream{
		fragments: []string{"partial"},
		err:       errors.New("upstream dropped"),
		failAfter: 1,
	}
	h := NewHandler(upstream, nil)

	rec := post(t, h, `{"messages":[{"role":"user","content":"hi"}]}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; SSE was already started", rec.Code)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "data: {\"content\":\"partial\"}\n\n") {
		t.Fatalf("missing delivered fragment in %q", body)
	}
	if !strings.Contains(body, "data: {\"error\":\"Streaming failed\"}\n\n") {
		t.Fatalf("missing error record in %q", body)
	}
	if strings.Contains(body, "[DONE]") {
		t.Fatalf("failed stream must not carry the completion sentinel: %q", body)
	}
}
