package session

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/techcorp/website/internal/core"
)

const (
	defaultTitle = "New Chat"
	titleMaxLen  = 50
)

// Store owns the set of conversation sessions, the current-session
// pointer, the global streaming/error flags, and the user preferences.
// Mutations persist a snapshot through the configured Storage; persistence
// is best-effort and failures are logged, never returned.
//
// A mutex guards all state: the streaming transport invokes its callbacks
// from the goroutine reading the response body, so callers need no
// external locking.
type Store struct {
	mu        sync.Mutex
	sessions  []core.Session
	currentID string
	streaming bool
	lastError string
	prefs     core.UserPreferences
	storage   Storage
	logger    *slog.Logger
}

// NewStore returns an empty store. storage may be nil, in which case
// persistence is disabled.
func NewStore(storage Storage, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		storage: storage,
		prefs:   core.DefaultPreferences(),
		logger:  logger,
	}
}

// Reset drops all in-memory state back to the initial empty store.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = nil
	s.currentID = ""
	s.streaming = false
	s.lastError = ""
	s.prefs = core.DefaultPreferences()
}

// CreateSession inserts a new empty session at the front of the list,
// makes it current, clears any error, and returns the new id.
func (s *Store) CreateSession() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	session := core.Session{
		ID:        core.NewSessionID(),
		Title:     defaultTitle,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.sessions = append([]core.Session{session}, s.sessions...)
	s.currentID = session.ID
	s.lastError = ""
	s.saveLocked()

	return session.ID
}

// SelectSession moves the current pointer. The id is not validated;
// reads against a stale pointer simply find no session.
func (s *Store) SelectSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentID = sessionID
	s.lastError = ""
}

// AppendMessage adds msg to the target session. An empty ID or zero
// Timestamp is filled in here; a pre-assigned ID lets the caller address
// the message later for streaming updates. The first user message sets
// the session title. Unknown session ids are ignored.
func (s *Store) AppendMessage(sessionID string, msg core.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.findLocked(sessionID)
	if session == nil {
		return
	}

	if msg.ID == "" {
		msg.ID = core.NewMessageID()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	if len(session.Messages) == 0 && msg.Role == core.RoleUser {
		session.Title = truncateTitle(msg.Content)
	}

	session.Messages = append(session.Messages, msg)
	session.UpdatedAt = time.Now()
	s.saveLocked()
}

// UpdateStreamingContent replaces the addressed message's content with
// the latest accumulated text and marks it streaming. This is the
// high-frequency path, so it does not persist; the snapshot is written
// when the stream settles. A crash mid-stream loses the partial text but
// never corrupts stored state.
func (s *Store) UpdateStreamingContent(sessionID, messageID, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.findLocked(sessionID)
	if session == nil {
		return
	}

	for i := range session.Messages {
		if session.Messages[i].ID == messageID {
			session.Messages[i].Content = content
			session.Messages[i].IsStreaming = true
			break
		}
	}

	session.UpdatedAt = time.Now()
}

// SetStreaming sets the global streaming flag. Turning it off also
// force-clears IsStreaming on every message in every session, so a
// stream that ended abnormally cannot leave a stale flag behind, and
// persists.
func (s *Store) SetStreaming(streaming bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.streaming = streaming

	if !streaming {
		for i := range s.sessions {
			for j := range s.sessions[i].Messages {
				s.sessions[i].Messages[j].IsStreaming = false
			}
		}
		s.saveLocked()
	}
}

// SetError records the displayed error string; an empty string clears it.
func (s *Store) SetError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastError = message
}

// DeleteSession removes the session. If it was current, the pointer is
// cleared.
func (s *Store) DeleteSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.sessions[:0]
	for _, session := range s.sessions {
		if session.ID != sessionID {
			kept = append(kept, session)
		}
	}
	s.sessions = kept

	if s.currentID == sessionID {
		s.currentID = ""
	}

	s.saveLocked()
}

// UpdatePreferences merges the patch into the current preferences.
func (s *Store) UpdatePreferences(patch core.PreferencesPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if patch.Theme != nil {
		s.prefs.Theme = *patch.Theme
	}
	if patch.AutoScroll != nil {
		s.prefs.AutoScroll = *patch.AutoScroll
	}

	s.saveLocked()
}

// Load replaces in-memory state with the persisted snapshot. Stored
// preferences are merged over the defaults, so keys absent from older
// snapshots keep their default values. Absent or corrupt storage leaves
// the store unchanged.
func (s *Store) Load() {
	if s.storage == nil {
		return
	}

	data, err := s.storage.Load()
	if err != nil {
		s.logger.Warn("failed to load chat state", "error", err)
		return
	}
	if len(data) == 0 {
		return
	}

	var doc struct {
		Sessions         []core.Session  `json:"sessions"`
		CurrentSessionID string          `json:"currentSessionId"`
		UserPreferences  json.RawMessage `json:"userPreferences"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("ignoring corrupt chat state", "error", err)
		return
	}

	prefs := core.DefaultPreferences()
	if len(doc.UserPreferences) > 0 {
		if err := json.Unmarshal(doc.UserPreferences, &prefs); err != nil {
			s.logger.Warn("ignoring corrupt preferences", "error", err)
			prefs = core.DefaultPreferences()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = doc.Sessions
	s.currentID = doc.CurrentSessionID
	s.prefs = prefs
}

// Save writes the current snapshot. Failures are logged only: losing
// persistence must never block the chat.
func (s *Store) Save() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saveLocked()
}

func (s *Store) saveLocked() {
	if s.storage == nil {
		return
	}

	// isStreaming is transient: a save triggered by an unrelated mutation
	// while another session streams must not write the flag to disk.
	sessions := make([]core.Session, len(s.sessions))
	for i, session := range s.sessions {
		sessions[i] = copySession(session)
		for j := range sessions[i].Messages {
			sessions[i].Messages[j].IsStreaming = false
		}
	}

	data, err := json.Marshal(core.Snapshot{
		Sessions:         sessions,
		CurrentSessionID: s.currentID,
		UserPreferences:  s.prefs,
	})
	if err != nil {
		s.logger.Error("failed to serialize chat state", "error", err)
		return
	}

	if err := s.storage.Save(data); err != nil {
		s.logger.Warn("failed to save chat state", "error", err)
	}
}

// Sessions returns a snapshot of the sessions newest-first. Messages are
// copied too: streaming updates mutate them in place, so handing out the
// live backing array would race with the transport goroutine.
func (s *Store) Sessions() []core.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Session, len(s.sessions))
	for i, session := range s.sessions {
		out[i] = copySession(session)
	}

	return out
}

// Session returns a snapshot of the session with the given id.
func (s *Store) Session(sessionID string) (core.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session := s.findLocked(sessionID); session != nil {
		return copySession(*session), true
	}

	return core.Session{}, false
}

func (s *Store) CurrentSessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.currentID
}

// CurrentSession resolves the current pointer; a cleared or stale
// pointer yields no session.
func (s *Store) CurrentSession() (core.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentID == "" {
		return core.Session{}, false
	}
	if session := s.findLocked(s.currentID); session != nil {
		return copySession(*session), true
	}

	return core.Session{}, false
}

func (s *Store) IsStreaming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.streaming
}

func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastError
}

func (s *Store) Preferences() core.UserPreferences {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.prefs
}

func (s *Store) findLocked(sessionID string) *core.Session {
	for i := range s.sessions {
		if s.sessions[i].ID == sessionID {
			return &s.sessions[i]
		}
	}

	return nil
}

func copySession(session core.Session) core.Session {
	msgs := make([]core.Message, len(session.Messages))
	copy(msgs, session.Messages)
	session.Messages = msgs

	return session
}

func truncateTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= titleMaxLen {
		return content
	}

	return string(runes[:titleMaxLen]) + "..."
}
