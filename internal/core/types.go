package core

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Message is a single chat turn owned by its parent session. Content is
// mutated in place while a reply streams in; IsStreaming drops back to
// false once the stream settles, for any reason.
type Message struct {
	ID          string    `json:"id"`
	Role        Role      `json:"role"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	IsStreaming bool      `json:"isStreaming,omitempty"`
}

// Session is one independent conversation thread.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Messages  []Message `json:"messages"`
}

type UserPreferences struct {
	Theme      Theme `json:"theme"`
	AutoScroll bool  `json:"autoScroll"`
}

func DefaultPreferences() UserPreferences {
	return UserPreferences{Theme: ThemeLight, AutoScroll: true}
}

// PreferencesPatch carries a partial preferences update; nil fields are
// left unchanged.
type PreferencesPatch struct {
	Theme      *Theme
	AutoScroll *bool
}

// Snapshot is the persisted document. Streaming and error state are
// transient and never written.
type Snapshot struct {
	Sessions         []Session       `json:"sessions"`
	CurrentSessionID string          `json:"currentSessionId"`
	UserPreferences  UserPreferences `json:"userPreferences"`
}

// ChatTurn is one entry of the relay request body.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
