package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"healthquiz/internal/common/pagination"
	"healthquiz/internal/domain/entity"
	"healthquiz/internal/observability/metrics"
	"healthquiz/internal/repository"
)

// Defaults applied when callers leave reason or actor empty.
const (
	DefaultArchiveReason = "Archived by admin"
	BulkArchiveReason    = "Bulk archived by admin"
	DefaultActor         = "admin"
)

// Service applies lifecycle transitions to persisted questions.
type Service struct {
	Repo repository.QuestionRepository
	// Now defaults to time.Now; tests pin it.
	Now func() time.Time
}

// NewService returns a Service using the wall clock.
func NewService(repo repository.QuestionRepository) *Service {
	return &Service{Repo: repo, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// Archive moves an active question to archived and schedules its deletion
// RetentionPeriod from now. It returns false when the question does not
// exist or is not active.
func (s *Service) Archive(ctx context.Context, id, reason, actor string) (bool, error) {
	if reason == "" {
		reason = DefaultArchiveReason
	}
	if actor == "" {
		actor = DefaultActor
	}
	if entity.ValidateID("question_id", id) != nil {
		metrics.RecordTransition(string(entity.TransitionArchive), metrics.TransitionIneligible)
		return false, nil
	}

	// The stored archive fields are the ones the entity transition sets.
	staged := entity.Question{ID: id, Status: entity.QuestionStatusActive}
	staged.Apply(entity.TransitionArchive, s.now(), reason, actor)
	ok, err := s.Repo.Archive(ctx, id, reason, actor, *staged.ArchivedAt, *staged.ScheduledDeletionAt)
	if err != nil {
		metrics.RecordTransition(string(entity.TransitionArchive), metrics.TransitionError)
		return false, fmt.Errorf("archive question %s: %w", id, err)
	}
	recordOutcome(entity.TransitionArchive, ok)
	if ok {
		slog.Info("question archived",
			slog.String("question_id", id),
			slog.String("archived_by", actor),
			slog.String("reason", reason))
	}
	return ok, nil
}

// Restore moves an archived question back to active and clears its archive
// fields. It returns false when the question does not exist or is not archived.
func (s *Service) Restore(ctx context.Context, id string) (bool, error) {
	if entity.ValidateID("question_id", id) != nil {
		metrics.RecordTransition(string(entity.TransitionRestore), metrics.TransitionIneligible)
		return false, nil
	}

	ok, err := s.Repo.Restore(ctx, id, s.now())
	if err != nil {
		metrics.RecordTransition(string(entity.TransitionRestore), metrics.TransitionError)
		return false, fmt.Errorf("restore question %s: %w", id, err)
	}
	recordOutcome(entity.TransitionRestore, ok)
	if ok {
		slog.Info("question restored", slog.String("question_id", id))
	}
	return ok, nil
}

func recordOutcome(t entity.Transition, ok bool) {
	outcome := metrics.TransitionIneligible
	if ok {
		outcome = metrics.TransitionApplied
	}
	metrics.RecordTransition(string(t), outcome)
}

// ListParams selects a page of questions for the admin listing.
type ListParams struct {
	Status *entity.QuestionStatus // nil lists every status, deleted included
	Page   pagination.Params
}

// ListResult is one page of questions with their response statistics.
type ListResult struct {
	Questions  []repository.QuestionWithStats
	Pagination pagination.Metadata
}

// List returns questions newest first. RecentResponseCount covers the
// protection window.
func (s *Service) List(ctx context.Context, p ListParams) (*ListResult, error) {
	filter := repository.QuestionFilter{
		Status: p.Status,
		Offset: p.Page.Offset(),
		Limit:  p.Page.Limit,
	}

	total, err := s.Repo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	questions, err := s.Repo.List(ctx, filter, s.now().Add(-entity.ProtectionWindow))
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	return &ListResult{
		Questions:  questions,
		Pagination: pagination.NewMetadata(p.Page, total),
	}, nil
}

// RefreshStatusGauges publishes the number of questions in each status.
func (s *Service) RefreshStatusGauges(ctx context.Context) error {
	for _, st := range []entity.QuestionStatus{
		entity.QuestionStatusActive,
		entity.QuestionStatusArchived,
		entity.QuestionStatusDeleted,
	} {
		n, err := s.Repo.CountByStatus(ctx, st)
		if err != nil {
			return fmt.Errorf("count %s questions: %w", st, err)
		}
		metrics.UpdateQuestionsByStatus(string(st), n)
	}
	return nil
}
