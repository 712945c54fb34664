// Package notify implements the client side of the realtime channel: a
// websocket listener and an in-memory notification store backing the bell
// dropdown. Nothing here survives a restart.
package notify

import (
	"sync"

	"github.com/google/uuid"
	"github.com/newswire/backend/internal/models"
)

// Record is one entry in the notification dropdown.
type Record struct {
	LocalID string       `json:"localId"`
	Event   models.Event `json:"event"`
	Read    bool         `json:"read"`
}

// NavigateFunc is invoked with the article ID when a notification is selected.
type NavigateFunc func(articleID string)

// Store keeps the ordered notification log for one client, newest first.
type Store struct {
	mu       sync.Mutex
	records  []Record
	unread   int
	navigate NavigateFunc
}

func NewStore(navigate NavigateFunc) *Store {
	return &Store{navigate: navigate}
}

// OnEvent prepends a new unread record and bumps the unread counter.
func (s *Store) OnEvent(event models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record := Record{LocalID: uuid.NewString(), Event: event}
	s.records = append([]Record{record}, s.records...)
	s.unread++
}

// Open marks every record read and zeroes the counter. Opening the dropdown
// twice in a row is a no-op the second time.
func (s *Store) Open() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		s.records[i].Read = true
	}
	s.unread = 0
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Records returns a snapshot of the log, newest first.
func (s *Store) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Unread returns the current unread count.
func (s *Store) Unread() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

// Select navigates to the notification's article. Deleted articles have
// nowhere to go, so selecting their notification does nothing.
func (s *Store) Select(localID string) {
	s.mu.Lock()
	var target *Record
	for i := range s.records {
		if s.records[i].LocalID == localID {
			target = &s.records[i]
			break
		}
	}
	if target == nil || target.Event.Kind == models.EventNewsDeleted {
		s.mu.Unlock()
		return
	}
	articleID := target.Event.ArticleID
	s.mu.Unlock()

	if s.navigate != nil {
		s.navigate(articleID)
	}
}
