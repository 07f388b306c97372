package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"codereview/internal/model"
	"codereview/internal/repository"
)

// Store is an in-process implementation of repository.Store.
// A single RWMutex guards all maps, so there is at most one writer at a time.
type Store struct {
	mu        sync.RWMutex
	sessions  map[string]*model.AnalysisSession
	files     map[string]*model.FileAnalysis
	bySession map[string][]string
	byKey     map[string]string
	now       func() time.Time
	newID     func() string
}

// Option customises a Store.
type Option func(*Store)

// WithClock overrides the time source used for CreatedAt/CompletedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides identifier generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// NewStore creates an empty in-memory store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		sessions:  make(map[string]*model.AnalysisSession),
		files:     make(map[string]*model.FileAnalysis),
		bySession: make(map[string][]string),
		byKey:     make(map[string]string),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ repository.Store = (*Store)(nil)

func (s *Store) CreateSession(_ context.Context, in repository.NewSession) (*model.AnalysisSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := repository.BuildSession(s.newID(), in, s.now())
	s.sessions[sess.ID] = sess
	return repository.CloneSession(sess), nil
}

func (s *Store) GetSession(_ context.Context, id string) (*model.AnalysisSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return repository.CloneSession(sess), nil
}

func (s *Store) UpdateSession(_ context.Context, id string, u repository.SessionUpdate) (*model.AnalysisSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	next := repository.CloneSession(cur)
	if err := repository.ApplySessionUpdate(next, u, s.now()); err != nil {
		return nil, err
	}
	s.sessions[id] = next
	return repository.CloneSession(next), nil
}

// CreateFile does not check that the session exists; callers create the
// session first.
func (s *Store) CreateFile(_ context.Context, in repository.NewFile) (*model.FileAnalysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := repository.BuildFile(s.newID(), in, s.now())
	s.files[f.ID] = f
	s.bySession[f.SessionID] = append(s.bySession[f.SessionID], f.ID)
	if f.ObjectKey != "" {
		s.byKey[f.ObjectKey] = f.ID
	}
	return repository.CloneFile(f), nil
}

func (s *Store) GetFile(_ context.Context, id string) (*model.FileAnalysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.files[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return repository.CloneFile(f), nil
}

func (s *Store) ListFilesBySession(_ context.Context, sessionID string) ([]model.FileAnalysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.bySession[sessionID]
	out := make([]model.FileAnalysis, 0, len(ids))
	for _, id := range ids {
		out = append(out, *repository.CloneFile(s.files[id]))
	}
	return out, nil
}

func (s *Store) GetFileByObjectKey(_ context.Context, key string) (*model.FileAnalysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byKey[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return repository.CloneFile(s.files[id]), nil
}

func (s *Store) UpdateFile(_ context.Context, id string, u repository.FileUpdate) (*model.FileAnalysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateFileLocked(id, u)
}

func (s *Store) UpdateFileByObjectKey(_ context.Context, key string, u repository.FileUpdate) (*model.FileAnalysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byKey[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.updateFileLocked(id, u)
}

func (s *Store) updateFileLocked(id string, u repository.FileUpdate) (*model.FileAnalysis, error) {
	cur, ok := s.files[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	next := repository.CloneFile(cur)
	if err := repository.ApplyFileUpdate(next, u, s.now()); err != nil {
		return nil, err
	}
	s.files[id] = next
	return repository.CloneFile(next), nil
}

// Ping always succeeds; the store lives in process memory.
func (s *Store) Ping(context.Context) error { return nil }
