package lifecycle_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"healthquiz/internal/domain/entity"
	"healthquiz/internal/repository"
)

/* ─── in-memory QuestionRepository ─── */

var errStorage = errors.New("connection reset by peer")

type stubRepo struct {
	mu        sync.Mutex
	questions map[string]*entity.Question
	responses map[string][]time.Time // question id -> answered_at
	failOn    map[string]bool        // ids whose writes fail
	countFail map[string]bool        // ids whose response counts fail
	listErr   error
}

func newStub() *stubRepo {
	return &stubRepo{
		questions: map[string]*entity.Question{},
		responses: map[string][]time.Time{},
		failOn:    map[string]bool{},
		countFail: map[string]bool{},
	}
}

func (s *stubRepo) put(q *entity.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions[q.ID] = q
}

func (s *stubRepo) respond(id string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[id] = append(s.responses[id], at)
}

func (s *stubRepo) snapshot(id string) entity.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.questions[id]
}

func (s *stubRepo) recent(id string, since time.Time) int {
	n := 0
	for _, at := range s.responses[id] {
		if !at.Before(since) {
			n++
		}
	}
	return n
}

func (s *stubRepo) Create(_ context.Context, q *entity.Question) error {
	s.put(q)
	return nil
}

func (s *stubRepo) Get(_ context.Context, id string) (*entity.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.questions[id], nil
}

func (s *stubRepo) CountByArticle(context.Context, string) (int, error) { return 0, nil }

func (s *stubRepo) ListForQuiz(context.Context, int) ([]*entity.Question, error) { return nil, nil }

func (s *stubRepo) filtered(f repository.QuestionFilter) []*entity.Question {
	var out []*entity.Question
	for _, q := range s.questions {
		if f.Status == nil || q.Status == *f.Status {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *stubRepo) List(_ context.Context, f repository.QuestionFilter, since time.Time) ([]repository.QuestionWithStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.filtered(f)
	if f.Offset >= len(all) {
		return nil, nil
	}
	end := f.Offset + f.Limit
	if end > len(all) {
		end = len(all)
	}
	var out []repository.QuestionWithStats
	for _, q := range all[f.Offset:end] {
		out = append(out, repository.QuestionWithStats{
			Question:            q,
			RecentResponseCount: s.recent(q.ID, since),
			TotalResponseCount:  len(s.responses[q.ID]),
		})
	}
	return out, nil
}

func (s *stubRepo) Count(_ context.Context, f repository.QuestionFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.filtered(f))), nil
}

func (s *stubRepo) Archive(_ context.Context, id, reason, actor string, at, deleteAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn[id] {
		return false, errStorage
	}
	q, ok := s.questions[id]
	if !ok || q.Status != entity.QuestionStatusActive {
		return false, nil
	}
	q.Status = entity.QuestionStatusArchived
	q.ArchivedAt, q.ScheduledDeletionAt = &at, &deleteAt
	q.ArchivedBy, q.ArchivedReason = actor, reason
	q.UpdatedAt = at
	return true, nil
}

func (s *stubRepo) Restore(_ context.Context, id string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn[id] {
		return false, errStorage
	}
	q, ok := s.questions[id]
	if !ok || q.Status != entity.QuestionStatusArchived {
		return false, nil
	}
	q.Status = entity.QuestionStatusActive
	q.ArchivedAt, q.ScheduledDeletionAt = nil, nil
	q.ArchivedBy, q.ArchivedReason = "", ""
	q.UpdatedAt = at
	return true, nil
}

func (s *stubRepo) MarkDeleted(_ context.Context, id string, now, since time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn[id] {
		return false, errStorage
	}
	q, ok := s.questions[id]
	if !ok || !q.Expired(now) || s.recent(id, since) > 0 {
		return false, nil
	}
	q.Status = entity.QuestionStatusDeleted
	q.UpdatedAt = now
	return true, nil
}

func (s *stubRepo) ListExpired(_ context.Context, now time.Time) ([]*entity.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []*entity.Question
	for _, q := range s.questions {
		if q.Expired(now) {
			cp := *q
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledDeletionAt.Before(*out[j].ScheduledDeletionAt) })
	return out, nil
}

func (s *stubRepo) CountResponsesSince(_ context.Context, id string, since time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.countFail[id] {
		return 0, errStorage
	}
	return s.recent(id, since), nil
}

func (s *stubRepo) CountByStatus(_ context.Context, st entity.QuestionStatus) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, q := range s.questions {
		if q.Status == st {
			n++
		}
	}
	return n, nil
}
