package metrics

import (
	"strconv"
	"time"
)

// Extraction results.
const (
	ExtractionSuccess    = "success"
	ExtractionFetchError = "fetch_error"
	ExtractionParseError = "parse_error"
)

// Ingestion outcomes.
const (
	IngestCreated   = "created"
	IngestDuplicate = "duplicate"
	IngestRejected  = "rejected"
	IngestFailed    = "failed"
)

// Transition outcomes.
const (
	TransitionApplied    = "applied"
	TransitionIneligible = "ineligible"
	TransitionError      = "error"
)

// RecordExtraction records one Extract call.
func RecordExtraction(result string, duration time.Duration) {
	ExtractionAttemptsTotal.WithLabelValues(result).Inc()
	ExtractionDuration.WithLabelValues(result).Observe(duration.Seconds())
}

// RecordIngest records the outcome of ingesting one article.
func RecordIngest(outcome string) {
	IngestedArticlesTotal.WithLabelValues(outcome).Inc()
}

// RecordTransition records a lifecycle transition attempt.
func RecordTransition(transition, outcome string) {
	QuestionTransitionsTotal.WithLabelValues(transition, outcome).Inc()
}

// RecordSweep records a completed sweep run. Dry runs only count the run.
func RecordSweep(dryRun bool, deleted, protected, failed int, duration time.Duration) {
	if dryRun {
		SweepRunsTotal.WithLabelValues("dry_run").Inc()
		return
	}
	SweepRunsTotal.WithLabelValues("live").Inc()
	SweepQuestionsTotal.WithLabelValues("deleted").Add(float64(deleted))
	SweepQuestionsTotal.WithLabelValues("protected").Add(float64(protected))
	SweepQuestionsTotal.WithLabelValues("failed").Add(float64(failed))
	SweepDuration.Observe(duration.Seconds())
}

// UpdateQuestionsByStatus sets the gauge for one lifecycle status.
func UpdateQuestionsByStatus(status string, count int64) {
	QuestionsByStatus.WithLabelValues(status).Set(float64(count))
}

// RecordGeneration records a question generation attempt.
func RecordGeneration(success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	QuestionsGeneratedTotal.WithLabelValues(status).Inc()
	GenerationDuration.Observe(duration.Seconds())
}

// RecordQuizSessionStarted increments the started counter.
func RecordQuizSessionStarted() {
	QuizSessionsTotal.WithLabelValues("started").Inc()
}

// RecordQuizSessionFinished increments the finished counter.
func RecordQuizSessionFinished() {
	QuizSessionsTotal.WithLabelValues("finished").Inc()
}

// RecordQuizResponse records one answered question.
func RecordQuizResponse(correct bool) {
	QuizResponsesTotal.WithLabelValues(strconv.FormatBool(correct)).Inc()
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "archive_question", "list_expired").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
