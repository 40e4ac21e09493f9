package domain

import (
	"fmt"
	"time"
)

// SessionKey identifies one user's conversation with the bot.
type SessionKey struct {
	UserID int64
	ChatID int64
}

func (k SessionKey) String() string {
	return fmt.Sprintf("%d:%d", k.UserID, k.ChatID)
}

// SessionState is the position of a key in the intake → choice → terminal flow.
type SessionState string

const (
	StateNone           SessionState = "none"
	StateAwaitingFormat SessionState = "awaiting_format"
	StateResolving      SessionState = "resolving"
	StateTerminal       SessionState = "terminal"
)

// Session holds what a format choice needs from the preceding URL intake.
type Session struct {
	ID         string
	Key        SessionKey
	State      SessionState
	URL        string
	Metadata   Metadata
	MessageIDs []int
	Variant    Variant
	CreatedAt  time.Time
}

// Clone returns a copy that shares no slices with s.
func (s *Session) Clone() *Session {
	c := *s
	c.MessageIDs = append([]int(nil), s.MessageIDs...)
	return &c
}

// Expired reports whether the session was created more than ttl ago.
func (s *Session) Expired(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(s.CreatedAt) > ttl
}
