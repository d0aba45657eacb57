package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"healthquiz/internal/domain/entity"
	"healthquiz/internal/observability/metrics"
	"healthquiz/internal/observability/tracing"
)

// SweepCandidate is an archived question whose deletion date has passed.
type SweepCandidate struct {
	QuestionID          string    `json:"id"`
	ArticleID           string    `json:"article_id"`
	Prompt              string    `json:"prompt"`
	ArchivedAt          time.Time `json:"archived_at"`
	ScheduledDeletionAt time.Time `json:"scheduled_deletion_at"`
	RecentResponses     int       `json:"recent_responses"`
	Protected           bool      `json:"protected"`

	// Err is set when the protection check itself failed; the question is
	// then neither deleted nor reported as protected.
	Err error `json:"-"`
}

// SweepPreview splits the current candidates into those a sweep would delete
// and those it would keep. Unchecked holds questions whose recent responses
// could not be counted. TotalArchived counts all expired archived questions.
type SweepPreview struct {
	Eligible      []SweepCandidate `json:"questions_ready_for_deletion"`
	Protected     []SweepCandidate `json:"protected_questions"`
	Unchecked     []SweepCandidate `json:"unchecked_questions"`
	TotalArchived int              `json:"total_archived"`
	AsOf          time.Time        `json:"as_of"`
}

// SweepReport summarizes a live sweep.
type SweepReport struct {
	Candidates int           `json:"candidates"`
	Deleted    int           `json:"deleted_count"`
	Protected  int           `json:"protected_count"`
	Failed     int           `json:"failed_count"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
}

// assess lists expired archived questions and applies the protection rule
// to each. Preview and sweep both go through here so they cannot disagree.
// A failed count is recorded on that candidate only.
func (s *Service) assess(ctx context.Context, now time.Time) ([]SweepCandidate, error) {
	expired, err := s.Repo.ListExpired(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list expired questions: %w", err)
	}

	since := now.Add(-entity.ProtectionWindow)
	out := make([]SweepCandidate, 0, len(expired))
	for _, q := range expired {
		if !q.Expired(now) {
			continue
		}
		c := SweepCandidate{
			QuestionID: q.ID,
			ArticleID:  q.ArticleID,
			Prompt:     q.Prompt,
		}
		recent, err := s.Repo.CountResponsesSince(ctx, q.ID, since)
		if err != nil {
			c.Err = fmt.Errorf("count recent responses for %s: %w", q.ID, err)
			slog.Error("sweep protection check failed",
				slog.String("question_id", q.ID),
				slog.Any("error", err))
		} else {
			c.RecentResponses = recent
			c.Protected = recent > 0
		}
		if q.ArchivedAt != nil {
			c.ArchivedAt = *q.ArchivedAt
		}
		if q.ScheduledDeletionAt != nil {
			c.ScheduledDeletionAt = *q.ScheduledDeletionAt
		}
		out = append(out, c)
	}
	return out, nil
}

// PreviewSweep reports what SweepExpired would do now without changing anything.
func (s *Service) PreviewSweep(ctx context.Context) (*SweepPreview, error) {
	now := s.now()
	candidates, err := s.assess(ctx, now)
	if err != nil {
		return nil, err
	}

	p := &SweepPreview{
		Eligible:      []SweepCandidate{},
		Protected:     []SweepCandidate{},
		Unchecked:     []SweepCandidate{},
		TotalArchived: len(candidates),
		AsOf:          now,
	}
	for _, c := range candidates {
		switch {
		case c.Err != nil:
			p.Unchecked = append(p.Unchecked, c)
		case c.Protected:
			p.Protected = append(p.Protected, c)
		default:
			p.Eligible = append(p.Eligible, c)
		}
	}
	metrics.RecordSweep(true, 0, 0, 0, 0)
	return p, nil
}

// SweepExpired deletes every expired, unprotected archived question and
// returns how many were deleted. Running it again immediately returns 0.
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	report, err := s.Sweep(ctx)
	if report == nil {
		return 0, err
	}
	return report.Deleted, err
}

// Sweep is SweepExpired with a full report. A storage failure on one
// question is logged and counted in Failed; the others are still processed
// and the failures are returned joined.
func (s *Service) Sweep(ctx context.Context) (*SweepReport, error) {
	ctx, span := tracing.StartSpan(ctx, "lifecycle.sweep")
	defer span.End()

	now := s.now()
	report := &SweepReport{StartedAt: now}
	start := time.Now()

	candidates, err := s.assess(ctx, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "assess failed")
		return nil, err
	}
	report.Candidates = len(candidates)

	since := now.Add(-entity.ProtectionWindow)
	var errs []error
	for _, c := range candidates {
		if c.Err != nil {
			report.Failed++
			errs = append(errs, c.Err)
			metrics.RecordTransition(string(entity.TransitionSweep), metrics.TransitionError)
			continue
		}
		if c.Protected {
			report.Protected++
			continue
		}
		// MarkDeleted re-checks status, expiry and protection atomically, so a
		// restore or a fresh response since assess makes it report false.
		ok, err := s.Repo.MarkDeleted(ctx, c.QuestionID, now, since)
		switch {
		case err != nil:
			report.Failed++
			errs = append(errs, fmt.Errorf("delete question %s: %w", c.QuestionID, err))
			metrics.RecordTransition(string(entity.TransitionSweep), metrics.TransitionError)
			slog.Error("sweep delete failed",
				slog.String("question_id", c.QuestionID),
				slog.Any("error", err))
		case !ok:
			report.Protected++
			metrics.RecordTransition(string(entity.TransitionSweep), metrics.TransitionIneligible)
		default:
			report.Deleted++
			metrics.RecordTransition(string(entity.TransitionSweep), metrics.TransitionApplied)
		}
	}

	report.Duration = time.Since(start)
	metrics.RecordSweep(false, report.Deleted, report.Protected, report.Failed, report.Duration)
	span.SetAttributes(
		attribute.Int("sweep.candidates", report.Candidates),
		attribute.Int("sweep.deleted", report.Deleted),
		attribute.Int("sweep.protected", report.Protected),
		attribute.Int("sweep.failed", report.Failed),
	)

	slog.Info("sweep completed",
		slog.Int("candidates", report.Candidates),
		slog.Int("deleted_count", report.Deleted),
		slog.Int("protected_count", report.Protected),
		slog.Int("failed_count", report.Failed),
		slog.Duration("duration", report.Duration))

	if len(errs) > 0 {
		err := errors.Join(errs...)
		span.RecordError(err)
		span.SetStatus(codes.Error, "some questions could not be swept")
		return report, err
	}
	return report, nil
}
