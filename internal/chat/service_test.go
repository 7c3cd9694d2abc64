package chat

import (
	"testing"

	"github.com/techcorp/website/internal/core"
	"github.com/techcorp/website/internal/session"
)

// fakeTransport replays a scripted stream synchronously, the way the
// real client fires callbacks from inside Send.
type fakeTransport struct {
	chunks    []string
	failWith  string
	history   []core.ChatTurn
	cancelled bool
}

func (f *fakeTransport) Send(history []core.ChatTurn, onChunk func(string), onComplete func(), onError func(string)) {
	f.history = history
	for _, chunk := range f.chunks {
		onChunk(chunk)
	}
	if f.failWith != "" {
		onError(f.failWith)
		return
	}
	onComplete()
}

func (f *fakeTransport) Cancel() {
	f.cancelled = true
}

func TestSendMessage_FullTurn(t *testing.T) {
	store := session.NewStore(nil, nil)
	transport := &fakeTransport{chunks: []string{"Hi", " there"}}
	svc := NewService(store, transport, nil)

	var received []string
	svc.SendMessage("hello", func(chunk string) {
		received = append(received, chunk)
	})

	sess, ok := store.CurrentSession()
	if !ok {
		t.Fatal("expected a session to be created")
	}
	if len(sess.Messages) != 2 {
		t.Fatalf("expected user message + assistant reply, got %d messages", len(sess.Messages))
	}

	user, assistant := sess.Messages[0], sess.Messages[1]
	if user.Role != core.RoleUser || user.Content != "hello" {
		t.Fatalf("unexpected user message: %+v", user)
	}
	if assistant.Role != core.RoleAssistant || assistant.Content != "Hi there" {
		t.Fatalf("unexpected assistant message: %+v", assistant)
	}
	if assistant.IsStreaming {
		t.Fatal("assistant message should be settled after completion")
	}

	if store.IsStreaming() {
		t.Fatal("streaming flag should be cleared")
	}
	if store.Err() != "" {
		t.Fatalf("unexpected error: %q", store.Err())
	}
	if len(received) != 2 {
		t.Fatalf("chunk sink saw %d chunks, want 2", len(received))
	}
}

func TestSendMessage_HistoryExcludesPlaceholder(t *testing.T) {
	store := session.NewStore(nil, nil)
	id := store.CreateSession()
	store.AppendMessage(id, core.Message{Role: core.RoleUser, Content: "earlier question"})
	store.AppendMessage(id, core.Message{Role: core.RoleAssistant, Content: "earlier answer"})

	transport := &fakeTransport{chunks: []string{"ok"}}
	svc := NewService(store, transport, nil)
	svc.SendMessage("follow-up", nil)

	want := []core.ChatTurn{
		{Role: "user", Content: "earlier question"},
		{Role: "assistant", Content: "earlier answer"},
		{Role: "user", Content: "follow-up"},
	}
	if len(transport.history) != len(want) {
		t.Fatalf("history length = %d, want %d", len(transport.history), len(want))
	}
	for i := range want {
		if transport.history[i] != want[i] {
			t.Fatalf("history[%d] = %+v, want %+v", i, transport.history[i], want[i])
		}
	}
}

func TestSendMessage_ReusesCurrentSession(t *testing.T) {
	store := session.NewStore(nil, nil)
	id := store.CreateSession()

	svc := NewService(store, &fakeTransport{chunks: []string{"ok"}}, nil)
	svc.SendMessage("hello", nil)

	if got := store.CurrentSessionID(); got != id {
		t.Fatalf("expected turn to run in the existing session, got %q", got)
	}
	if len(store.Sessions()) != 1 {
		t.Fatal("no extra session should be created")
	}
}

func TestSendMessage_ErrorOverwritesPlaceholder(t *testing.T) {
	store := session.NewStore(nil, nil)
	transport := &fakeTransport{chunks: []string{"partial"}, failWith: "quota exceeded"}
	svc := NewService(store, transport, nil)

	svc.SendMessage("hello", nil)

	if got := store.Err(); got != "quota exceeded" {
		t.Fatalf("error slot = %q", got)
	}

	sess, _ := store.CurrentSession()
	assistant := sess.Messages[len(sess.Messages)-1]
	if assistant.Content != errorReply {
		t.Fatalf("placeholder content = %q, want the apology", assistant.Content)
	}
	if assistant.IsStreaming {
		t.Fatal("placeholder should be settled after the error")
	}
	if store.IsStreaming() {
		t.Fatal("streaming flag should be cleared after the error")
	}
}

func TestCancel_KeepsPartialContent(t *testing.T) {
	store := session.NewStore(nil, nil)
	id := store.CreateSession()
	store.AppendMessage(id, core.Message{ID: "ph", Role: core.RoleAssistant})
	store.UpdateStreamingContent(id, "ph", "partial text")

	transport := &fakeTransport{}
	svc := NewService(store, transport, nil)
	store.SetStreaming(true)

	svc.Cancel()

	if !transport.cancelled {
		t.Fatal("expected the transport to be cancelled")
	}
	if store.IsStreaming() {
		t.Fatal("streaming flag should be cleared")
	}

	sess, _ := store.Session(id)
	if sess.Messages[0].Content != "partial text" {
		t.Fatalf("partial content must survive cancellation, got %q", sess.Messages[0].Content)
	}
	if sess.Messages[0].IsStreaming {
		t.Fatal("message flag should be cleared by SetStreaming(false)")
	}
}
