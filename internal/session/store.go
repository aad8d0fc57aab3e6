package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kalambet/murmur/internal/emotion"
)

// ErrNotFound is returned when a session id is unknown or expired.
var ErrNotFound = errors.New("session not found")

// Turn is one recorded exchange in a live session.
type Turn struct {
	Text   string         `json:"text"`
	Result emotion.Result `json:"result"`
	At     time.Time      `json:"at"`
}

// Session accumulates turns for one conversation. Turns are
// most-recent-last; the wellness aggregator depends on that ordering.
type Session struct {
	ID        string    `json:"id"`
	ProfileID string    `json:"profile_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Turns     []Turn    `json:"turns"`
}

// Store is the live-session state abstraction. It is injected into the
// API layer rather than held as package-level state so tests can swap it.
type Store interface {
	Create(profileID string) Session
	Get(id string) (Session, error)
	Append(id string, t Turn) (Session, error)
	Delete(id string)
}

const defaultTTL = 30 * time.Minute

// MemoryStore keeps sessions in a map guarded by a mutex, expiring them
// TTL after their last update. Concurrent calls for different sessions
// are independent; callers classifying turns of one session must
// serialize their own appends to preserve turn order.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	newID    func() string
	now      func() time.Time
}

// NewMemoryStore creates a MemoryStore. ttl <= 0 uses the 30m default.
// newID generates session identifiers; nil uses uuid.NewString.
func NewMemoryStore(ttl time.Duration, newID func() string) *MemoryStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if newID == nil {
		newID = uuid.NewString
	}
	return &MemoryStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		newID:    newID,
		now:      time.Now,
	}
}

func (s *MemoryStore) Create(profileID string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess := &Session{
		ID:        s.newID(),
		ProfileID: profileID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions[sess.ID] = sess
	return snapshot(sess)
}

func (s *MemoryStore) Get(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || s.expired(sess) {
		return Session{}, ErrNotFound
	}
	return snapshot(sess), nil
}

func (s *MemoryStore) Append(id string, t Turn) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || s.expired(sess) {
		return Session{}, ErrNotFound
	}
	if t.At.IsZero() {
		t.At = s.now()
	}
	sess.Turns = append(sess.Turns, t)
	sess.UpdatedAt = s.now()
	return snapshot(sess), nil
}

func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *MemoryStore) expired(sess *Session) bool {
	return s.now().Sub(sess.UpdatedAt) > s.ttl
}

// snapshot copies a session so callers never share the internal slice.
func snapshot(sess *Session) Session {
	out := *sess
	out.Turns = make([]Turn, len(sess.Turns))
	copy(out.Turns, sess.Turns)
	return out
}

// Run sweeps expired sessions until ctx is cancelled. Modeled on the
// polling worker loop the ingest pipeline uses.
func (s *MemoryStore) Run(ctx context.Context) {
	interval := s.ttl / 2
	if interval > time.Minute {
		interval = time.Minute
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}

		s.mu.Lock()
		removed := 0
		for id, sess := range s.sessions {
			if s.expired(sess) {
				delete(s.sessions, id)
				removed++
			}
		}
		s.mu.Unlock()
		if removed > 0 {
			slog.Debug("session sweep", "removed", removed)
		}
	}
}
