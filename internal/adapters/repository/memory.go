package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/okian/comfortloop/internal/domain/model"
)

// MemoryStore keeps everything in process memory. Used for tests and the "memory" driver.
type MemoryStore struct {
	mu       sync.RWMutex
	opts     options
	feedback []model.FeedbackRecord // sorted by CreatedAt asc, insertion order on ties
	votes    []model.UserFeedback
	comfort  *model.ComfortRange
	state    model.ControllerState
	closed   bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{opts: newOptions("store.memory", opts)}
}

func (s *MemoryStore) Name() string { return "memory" }

func (s *MemoryStore) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *MemoryStore) AppendFeedback(ctx context.Context, rec model.FeedbackRecord) (model.FeedbackRecord, error) {
	if err := ctx.Err(); err != nil {
		return rec, err
	}
	rec, err := prepareFeedback(rec, s.opts.now)
	if err != nil {
		return rec, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return rec, ErrClosed
	}
	// first index strictly after rec.CreatedAt keeps ties in insertion order
	i := sort.Search(len(s.feedback), func(i int) bool {
		return s.feedback[i].CreatedAt.After(rec.CreatedAt)
	})
	s.feedback = append(s.feedback, model.FeedbackRecord{})
	copy(s.feedback[i+1:], s.feedback[i:])
	s.feedback[i] = rec
	return rec, nil
}

func (s *MemoryStore) RecentFeedback(ctx context.Context, n int) ([]model.FeedbackRecord, error) {
	if err := checkLimit(n); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	out := make([]model.FeedbackRecord, 0, min(n, len(s.feedback)))
	for i := len(s.feedback) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.feedback[i])
	}
	return out, nil
}

func (s *MemoryStore) ComfortRange(ctx context.Context) (model.ComfortRange, error) {
	if err := ctx.Err(); err != nil {
		return model.ComfortRange{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return model.ComfortRange{}, ErrClosed
	}
	if s.comfort == nil {
		return model.ComfortRange{}, ErrNotFound
	}
	return *s.comfort, nil
}

func (s *MemoryStore) SaveComfortRange(ctx context.Context, r model.ComfortRange) (model.ComfortRange, error) {
	if err := ctx.Err(); err != nil {
		return r, err
	}
	r, err := prepareRange(r, s.opts.now)
	if err != nil {
		return r, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return r, ErrClosed
	}
	if s.comfort != nil {
		return *s.comfort, ErrAlreadyConfigured
	}
	s.comfort = &r
	return r, nil
}

func (s *MemoryStore) ResetComfortRange(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.comfort = nil
	return nil
}

func (s *MemoryStore) ControllerState(ctx context.Context) (model.ControllerState, error) {
	if err := ctx.Err(); err != nil {
		return model.ControllerState{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return model.ControllerState{}, ErrClosed
	}
	return s.state, nil
}

func (s *MemoryStore) SaveControllerState(ctx context.Context, st model.ControllerState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.state = st
	return nil
}

func (s *MemoryStore) AppendUserFeedback(ctx context.Context, f model.UserFeedback) (model.UserFeedback, error) {
	if err := ctx.Err(); err != nil {
		return f, err
	}
	f = prepareUserFeedback(f, s.opts.now)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return f, ErrClosed
	}
	s.votes = append(s.votes, f)
	return f, nil
}

func (s *MemoryStore) RecentUserFeedback(ctx context.Context, n int) ([]model.UserFeedback, error) {
	if err := checkLimit(n); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	out := make([]model.UserFeedback, 0, min(n, len(s.votes)))
	for i := len(s.votes) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.votes[i])
	}
	return out, nil
}
