package notify

import (
	"fmt"
	"strconv"
	"time"
)

// SweepSummary is what NewSweepReport needs from a sweep run.
type SweepSummary struct {
	Trigger    string // "cron", "admin" or "cli"
	Candidates int
	Deleted    int
	Protected  int
	Failed     int
	Duration   time.Duration
}

// NewSweepReport renders a sweep run as an operator report. Runs with
// failed deletions are flagged as alerts.
func NewSweepReport(s SweepSummary) *Report {
	return &Report{
		Title:   "Archived question sweep",
		Summary: fmt.Sprintf("Deleted %d of %d expired archived questions (%s).", s.Deleted, s.Candidates, s.Trigger),
		Fields: []ReportField{
			{Name: "Deleted", Value: strconv.Itoa(s.Deleted)},
			{Name: "Protected", Value: strconv.Itoa(s.Protected)},
			{Name: "Failed", Value: strconv.Itoa(s.Failed)},
			{Name: "Duration", Value: s.Duration.Round(time.Millisecond).String()},
		},
		Alert: s.Failed > 0,
	}
}

// IngestSummary is what NewIngestReport needs from an ingestion batch.
type IngestSummary struct {
	Source  string
	Total   int
	Success int
	Skipped int
	Failed  int
}

// NewIngestReport renders an ingestion batch as an operator report. A batch
// where every item failed is flagged as an alert.
func NewIngestReport(s IngestSummary) *Report {
	return &Report{
		Title:   "Article ingestion",
		Summary: fmt.Sprintf("Ingested %d new articles from %s.", s.Success, s.Source),
		Fields: []ReportField{
			{Name: "Total", Value: strconv.Itoa(s.Total)},
			{Name: "Success", Value: strconv.Itoa(s.Success)},
			{Name: "Skipped", Value: strconv.Itoa(s.Skipped)},
			{Name: "Failed", Value: strconv.Itoa(s.Failed)},
		},
		Alert: s.Total > 0 && s.Failed == s.Total,
	}
}
