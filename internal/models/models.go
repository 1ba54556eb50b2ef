package models

import (
	"slices"
	"time"
)

// Message is a single happy thought on the board.
//
// IDs are opaque strings: a canonical UUID on Postgres, an ObjectID hex on
// Mongo. Handlers and services never parse them; only the store does.
//
// AuthorID is nil for anonymous messages. Those can never be deleted.
//
// HeartCount moves together with the liked-by sets. The store updates
// both in a single statement, never as two writes.
type Message struct {
	ID               string    `json:"id"`
	Text             string    `json:"text"`
	HeartCount       int       `json:"heartCount"`
	CreatedAt        time.Time `json:"createdAt"`
	AuthorID         *string   `json:"authorId,omitempty"`
	LikedByUserIDs   []string  `json:"likedByUserIds"`
	LikedByClientIDs []string  `json:"likedByClientIds"`
}

// IsAnonymous reports whether the message was posted without a resolved author.
func (m *Message) IsAnonymous() bool {
	return m.AuthorID == nil || *m.AuthorID == ""
}

// IsAuthoredBy compares author identity by value.
func (m *Message) IsAuthoredBy(userID string) bool {
	return !m.IsAnonymous() && userID != "" && *m.AuthorID == userID
}

// LikedByClient reports whether an anonymous client already liked the message.
func (m *Message) LikedByClient(clientID string) bool {
	return slices.Contains(m.LikedByClientIDs, clientID)
}

// Normalize makes nil sets serialize as [] instead of null.
func (m *Message) Normalize() {
	if m.LikedByUserIDs == nil {
		m.LikedByUserIDs = make([]string, 0)
	}
	if m.LikedByClientIDs == nil {
		m.LikedByClientIDs = make([]string, 0)
	}
}

// User is a registered author.
//
// AccessToken is the bearer credential. It is issued once at registration
// and never rotated, matching how clients store it.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	AccessToken  string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
