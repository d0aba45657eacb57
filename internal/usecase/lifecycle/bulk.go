package lifecycle

import (
	"context"
	"log/slog"

	"healthquiz/internal/domain/entity"
)

// Outcome is the per-id result of a bulk transition.
type Outcome string

const (
	OutcomeSuccess    Outcome = "success"
	OutcomeIneligible Outcome = "not_found_or_ineligible"
	OutcomeError      Outcome = "error"
)

// ItemResult records what happened to one id.
type ItemResult struct {
	ID      string  `json:"id"`
	Outcome Outcome `json:"status"`
	Message string  `json:"message,omitempty"`
}

// BulkResult holds per-id results in input order. ErrorCount counts every
// id that did not succeed, ineligible ones included.
type BulkResult struct {
	Action       entity.Transition `json:"action"`
	Results      []ItemResult      `json:"results"`
	SuccessCount int               `json:"success"`
	ErrorCount   int               `json:"errors"`
}

// Total is the number of ids processed.
func (r *BulkResult) Total() int { return len(r.Results) }

// BulkApply applies archive or restore to each id in order. A failure on one
// id is recorded and processing continues with the next; the returned error
// is only set when the request itself is unusable.
func (s *Service) BulkApply(ctx context.Context, action entity.Transition, ids []string, reason, actor string) (*BulkResult, error) {
	if action != entity.TransitionArchive && action != entity.TransitionRestore {
		return nil, ErrUnsupportedAction
	}
	if len(ids) == 0 {
		return nil, ErrNoQuestionIDs
	}
	if action == entity.TransitionArchive && reason == "" {
		reason = BulkArchiveReason
	}

	res := &BulkResult{Action: action, Results: make([]ItemResult, 0, len(ids))}
	for _, id := range ids {
		item := s.applyOne(ctx, action, id, reason, actor)
		if item.Outcome == OutcomeSuccess {
			res.SuccessCount++
		} else {
			res.ErrorCount++
		}
		res.Results = append(res.Results, item)
	}

	slog.Info("bulk transition completed",
		slog.String("action", string(action)),
		slog.Int("total", res.Total()),
		slog.Int("success", res.SuccessCount),
		slog.Int("errors", res.ErrorCount))
	return res, nil
}

func (s *Service) applyOne(ctx context.Context, action entity.Transition, id, reason, actor string) ItemResult {
	var (
		ok  bool
		err error
	)
	switch action {
	case entity.TransitionArchive:
		ok, err = s.Archive(ctx, id, reason, actor)
	case entity.TransitionRestore:
		ok, err = s.Restore(ctx, id)
	}

	switch {
	case err != nil:
		slog.Warn("bulk transition failed",
			slog.String("question_id", id),
			slog.String("action", string(action)),
			slog.Any("error", err))
		return ItemResult{ID: id, Outcome: OutcomeError, Message: err.Error()}
	case !ok:
		return ItemResult{ID: id, Outcome: OutcomeIneligible}
	default:
		return ItemResult{ID: id, Outcome: OutcomeSuccess}
	}
}
