package chat

import (
	"log/slog"
	"strings"

	"github.com/techcorp/website/internal/core"
	"github.com/techcorp/website/internal/session"
)

const errorReply = "Sorry, I encountered an error. Please try again."

// Transport is the streaming pipeline a Service drives; satisfied by
// stream.Client.
type Transport interface {
	Send(history []core.ChatTurn, onChunk func(string), onComplete func(), onError func(string))
	Cancel()
}

// Service wires the session store to the streaming transport: one
// SendMessage call runs a full conversation turn.
type Service struct {
	store  *session.Store
	client Transport
	logger *slog.Logger
}

func NewService(store *session.Store, client Transport, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{store: store, client: client, logger: logger}
}

// SendMessage appends the user message to the current session (creating
// one if needed), appends an empty assistant placeholder, and streams the
// reply into it. chunkSink, when non-nil, receives each raw chunk as it
// arrives. Blocks until the stream settles; a concurrent Cancel makes it
// return early with the partial content kept.
func (s *Service) SendMessage(content string, chunkSink func(string)) {
	sessionID := s.store.CurrentSessionID()
	if sessionID == "" {
		sessionID = s.store.CreateSession()
	}

	s.store.AppendMessage(sessionID, core.Message{Role: core.RoleUser, Content: content})

	// pre-allocate the placeholder id so streaming updates can address it
	placeholderID := core.NewMessageID()
	s.store.AppendMessage(sessionID, core.Message{ID: placeholderID, Role: core.RoleAssistant})

	s.store.SetStreaming(true)
	s.store.SetError("")

	var accumulated strings.Builder
	s.client.Send(s.history(sessionID),
		func(chunk string) {
			// accumulate locally and push the full text wholesale, so
			// out-of-order application is structurally impossible
			accumulated.WriteString(chunk)
			s.store.UpdateStreamingContent(sessionID, placeholderID, accumulated.String())
			if chunkSink != nil {
				chunkSink(chunk)
			}
		},
		func() {
			s.store.SetStreaming(false)
		},
		func(reason string) {
			s.logger.Warn("chat turn failed", "session", sessionID, "reason", reason)
			s.store.SetError(reason)
			s.store.UpdateStreamingContent(sessionID, placeholderID, errorReply)
			s.store.SetStreaming(false)
		},
	)
}

// Cancel aborts the in-flight turn. The partially streamed content stays
// in the session; only the streaming flags are cleared.
func (s *Service) Cancel() {
	s.client.Cancel()
	s.store.SetStreaming(false)
}

// history builds the relay request body: the session's messages with the
// trailing empty placeholder excluded, the new user turn last.
func (s *Service) history(sessionID string) []core.ChatTurn {
	sess, ok := s.store.Session(sessionID)
	if !ok {
		return nil
	}

	msgs := sess.Messages
	if n := len(msgs); n > 0 && msgs[n-1].Role == core.RoleAssistant && msgs[n-1].Content == "" {
		msgs = msgs[:n-1]
	}

	turns := make([]core.ChatTurn, 0, len(msgs))
	for _, msg := range msgs {
		turns = append(turns, core.ChatTurn{Role: string(msg.Role), Content: msg.Content})
	}

	return turns
}
