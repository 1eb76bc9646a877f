package toast

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level classifies a toast.
const (
	LevelSuccess = "success"
	LevelError   = "error"
)

// maxBacklog bounds the number of retained toasts; older ones are dropped.
const maxBacklog = 20

// Toast is one transient notification.
type Toast struct {
	ID        string    `json:"id"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the process-wide toast queue. Toasts never block anything; they
// accumulate until dismissed or displaced.
type Store struct {
	mu     sync.Mutex
	toasts []Toast
}

// NewStore creates an empty toast store.
func NewStore() *Store {
	return &Store{}
}

// Success pushes a success toast and returns its id.
func (s *Store) Success(message string) string {
	return s.push(LevelSuccess, message)
}

// Error pushes an error toast and returns its id.
func (s *Store) Error(message string) string {
	return s.push(LevelError, message)
}

func (s *Store) push(level, message string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := Toast{
		ID:        uuid.New().String(),
		Level:     level,
		Message:   message,
		CreatedAt: time.Now(),
	}
	s.toasts = append(s.toasts, t)
	if len(s.toasts) > maxBacklog {
		s.toasts = s.toasts[len(s.toasts)-maxBacklog:]
	}
	return t.ID
}

// Active returns the pending toasts, newest first.
func (s *Store) Active() []Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Toast, len(s.toasts))
	for i, t := range s.toasts {
		out[len(s.toasts)-1-i] = t
	}
	return out
}

// Dismiss removes a toast by id. Unknown ids are a no-op.
func (s *Store) Dismiss(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.toasts {
		if t.ID == id {
			s.toasts = append(s.toasts[:i], s.toasts[i+1:]...)
			return
		}
	}
}
