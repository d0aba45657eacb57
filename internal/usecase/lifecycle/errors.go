// Package lifecycle implements the question lifecycle: archiving, restoring,
// bulk transitions and sweeping expired archived questions.
//
// A transition attempted from the wrong state is an outcome, not an error:
// the single-question methods return false and BulkApply records
// OutcomeIneligible. Only storage failures surface as errors.
package lifecycle

import "errors"

var (
	// ErrUnsupportedAction is returned by BulkApply for anything other than archive or restore.
	ErrUnsupportedAction = errors.New("action must be archive or restore")

	// ErrNoQuestionIDs is returned by BulkApply for an empty id list.
	ErrNoQuestionIDs = errors.New("question_ids is required")
)
