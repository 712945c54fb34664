package models

import "time"

// Event kinds mirror the websocket message names the frontend listens for.
const (
	EventNewsCreated = "newsCreated"
	EventNewsUpdated = "newsUpdated"
	EventNewsDeleted = "newsDeleted"
)

// Event is the ephemeral notification produced once per article mutation and
// fanned out to every connected subscriber. It is never persisted; a client
// connecting after publication never sees it.
type Event struct {
	Kind      string    `json:"kind"`
	ArticleID string    `json:"id"`
	Title     string    `json:"title,omitempty"` // absent for deletions
	Timestamp time.Time `json:"timestamp"`
}
