// Package store holds the workspace state: the current session, the
// search filter, the selected element and the dark-mode flag.
//
// Every mutation is all-or-nothing and silently does nothing when its
// preconditions fail (no session, unknown id, wrong element type). After
// each accepted transition the durable part of the state is written to a
// storage.Storage under a fixed key.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xaenox/problem-notes/internal/models"
	"github.com/xaenox/problem-notes/internal/storage"
)

// DefaultKey is the storage key the workspace state lives under.
const DefaultKey = "problem-notes-storage"

// persistedState is the durable subset of the store.
type persistedState struct {
	CurrentSession *models.Session `json:"currentSession"`
	IsDarkMode     bool            `json:"isDarkMode"`
}

type Store struct {
	mu      sync.Mutex
	storage storage.Storage
	key     string
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
	jitter  func() models.Position

	session     *models.Session
	searchQuery string
	selectedID  string
	darkMode    bool
}

type Option func(*Store)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithJitter sets the offset source used to scatter a deleted group's
// children around the group's position.
func WithJitter(jitter func() models.Position) Option {
	return func(s *Store) { s.jitter = jitter }
}

// New returns an empty store writing to st. It does not read st.
func New(st storage.Storage, opts ...Option) *Store {
	s := &Store{
		storage: st,
		key:     DefaultKey,
		logger:  zap.NewNop(),
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
		jitter:  randomJitter,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open returns a store rehydrated from st. Missing or malformed stored
// state means a fresh store; it is never an error.
func Open(ctx context.Context, st storage.Storage, opts ...Option) *Store {
	s := New(st, opts...)
	s.rehydrate(ctx)
	return s
}

func (s *Store) rehydrate(ctx context.Context) {
	if s.storage == nil {
		return
	}

	data, err := s.storage.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return
	}
	if err != nil {
		s.logger.Warn("Failed to read stored state", zap.Error(err), zap.String("key", s.key))
		return
	}

	var state persistedState
	if err := json.Unmarshal(data, &state); err != nil {
		s.logger.Warn("Ignoring malformed stored state", zap.Error(err), zap.String("key", s.key))
		return
	}

	if state.CurrentSession != nil {
		if err := state.CurrentSession.Validate(); err != nil {
			s.logger.Warn("Ignoring malformed stored state", zap.Error(err), zap.String("key", s.key))
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = state.CurrentSession
	if s.session != nil && s.session.Elements == nil {
		s.session.Elements = []models.Element{}
	}
	s.darkMode = state.IsDarkMode
}

// persistLocked writes the durable state. A failed write is logged and
// the in-memory transition stands.
func (s *Store) persistLocked() {
	if s.storage == nil {
		return
	}

	data, err := json.Marshal(persistedState{
		CurrentSession: s.session,
		IsDarkMode:     s.darkMode,
	})
	if err != nil {
		s.logger.Error("Failed to encode state", zap.Error(err))
		return
	}

	if err := s.storage.Put(context.Background(), s.key, data); err != nil {
		s.logger.Error("Failed to persist state",
			zap.Error(err),
			zap.String("key", s.key),
			zap.Int("bytes", len(data)))
	}
}

// stamp returns the current time, never earlier than prev.
func (s *Store) stamp(prev time.Time) time.Time {
	now := s.now()
	if now.Before(prev) {
		return prev
	}
	return now
}

func (s *Store) CreateSession(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.session = &models.Session{
		ID:        s.newID(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		Elements:  []models.Element{},
	}
	s.persistLocked()
}

// LoadSession replaces the current session with a copy of session and
// stamps its updatedAt. A session without ids, a name or with an
// unknown element type is ignored.
func (s *Store) LoadSession(session *models.Session) {
	if session == nil || session.Validate() != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	loaded := session.Clone()
	if loaded.Elements == nil {
		loaded.Elements = []models.Element{}
	}
	loaded.UpdatedAt = s.stamp(loaded.UpdatedAt)
	s.session = loaded
	s.persistLocked()
}

// ExportSession returns a copy of the current session, or nil.
func (s *Store) ExportSession() *models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Clone()
}

func (s *Store) SetSearchQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchQuery = query
	s.persistLocked()
}

// SetSelectedElement selects id; the empty string clears the selection.
func (s *Store) SetSelectedElement(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedID = id
	s.persistLocked()
}

func (s *Store) ToggleDarkMode() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.darkMode = !s.darkMode
	s.persistLocked()
}

// ClearSession discards the session along with the search and selection.
// The dark-mode flag is kept.
func (s *Store) ClearSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	s.searchQuery = ""
	s.selectedID = ""
	s.persistLocked()
}
