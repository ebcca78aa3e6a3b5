// Package testutil provides in-memory repository implementations used by
// service and gateway tests. Behavior mirrors the Postgres repositories:
// ordered question/option reads, delete-by-filter returning counts, and the
// same sentinel errors.
package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"livepoll/internal/domain/poll"
	"livepoll/internal/domain/response"
	livepoll_errors "livepoll/pkg/errors"
)

// MemoryStore backs both repositories so responses can be joined to polls
// through their questions, like the SQL schema does.
type MemoryStore struct {
	mu        sync.Mutex
	polls     map[uuid.UUID]poll.Poll
	questions map[uuid.UUID]uuid.UUID // question ID -> poll ID
	responses []response.Response

	// FailWith, when set, makes every subsequent operation fail. Used to
	// exercise storage-failure paths.
	FailWith error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		polls:     make(map[uuid.UUID]poll.Poll),
		questions: make(map[uuid.UUID]uuid.UUID),
	}
}

func (s *MemoryStore) Polls() *MemoryPollRepository {
	return &MemoryPollRepository{store: s}
}

func (s *MemoryStore) Responses() *MemoryResponseRepository {
	return &MemoryResponseRepository{store: s}
}

// ResponseCount reports rows currently held for a question.
func (s *MemoryStore) ResponseCount(questionID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.responses {
		if r.QuestionID == questionID {
			n++
		}
	}
	return n
}

type MemoryPollRepository struct {
	store *MemoryStore
}

func (r *MemoryPollRepository) CreateTree(_ context.Context, p *poll.Poll) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	s.polls[p.ID] = clonePoll(*p)
	for _, q := range p.Questions {
		s.questions[q.ID] = p.ID
	}
	return nil
}

func (r *MemoryPollRepository) GetByID(_ context.Context, id uuid.UUID) (poll.Poll, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return poll.Poll{}, s.FailWith
	}
	p, ok := s.polls[id]
	if !ok {
		return poll.Poll{}, livepoll_errors.ErrNotFound
	}
	out := clonePoll(p)
	sort.SliceStable(out.Questions, func(i, j int) bool {
		return out.Questions[i].Position < out.Questions[j].Position
	})
	for qi := range out.Questions {
		opts := out.Questions[qi].Options
		sort.SliceStable(opts, func(i, j int) bool {
			return opts[i].Position < opts[j].Position
		})
	}
	return out, nil
}

func (r *MemoryPollRepository) GetLive(_ context.Context, id uuid.UUID) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return false, s.FailWith
	}
	p, ok := s.polls[id]
	if !ok {
		return false, livepoll_errors.ErrNotFound
	}
	return p.IsLive, nil
}

func (r *MemoryPollRepository) ToggleLive(_ context.Context, id uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	p, ok := s.polls[id]
	if !ok {
		return livepoll_errors.ErrNotFound
	}
	p.IsLive = !p.IsLive
	s.polls[id] = p
	return nil
}

type MemoryResponseRepository struct {
	store *MemoryStore
}

func (r *MemoryResponseRepository) Create(_ context.Context, resp *response.Response) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	s.responses = append(s.responses, *resp)
	return nil
}

func (r *MemoryResponseRepository) FindByQuestionAndUser(_ context.Context, questionID uuid.UUID, userID string) (response.Response, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return response.Response{}, s.FailWith
	}
	var found *response.Response
	for i := range s.responses {
		resp := s.responses[i]
		if resp.QuestionID == questionID && resp.UserID == userID {
			if found == nil || resp.CreatedAt.After(found.CreatedAt) {
				found = &s.responses[i]
			}
		}
	}
	if found == nil {
		return response.Response{}, livepoll_errors.ErrNotFound
	}
	return *found, nil
}

func (r *MemoryResponseRepository) DeleteByQuestionAndUser(_ context.Context, questionID uuid.UUID, userID string) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return 0, s.FailWith
	}
	var kept []response.Response
	var removed int64
	for _, resp := range s.responses {
		if resp.QuestionID == questionID && resp.UserID == userID {
			removed++
			continue
		}
		kept = append(kept, resp)
	}
	s.responses = kept
	return removed, nil
}

func (r *MemoryResponseRepository) ListByPoll(_ context.Context, pollID uuid.UUID) ([]response.Response, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	var out []response.Response
	for _, resp := range s.responses {
		if s.questions[resp.QuestionID] == pollID {
			out = append(out, resp)
		}
	}
	return out, nil
}

func clonePoll(p poll.Poll) poll.Poll {
	out := p
	out.Questions = make([]poll.Question, len(p.Questions))
	for i, q := range p.Questions {
		qc := q
		qc.Options = append([]poll.Option(nil), q.Options...)
		out.Questions[i] = qc
	}
	return out
}
