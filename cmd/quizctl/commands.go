package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"healthquiz/internal/domain/entity"
	"healthquiz/internal/usecase/lifecycle"
	"healthquiz/internal/utils/text"
)

func newRootCmd(d deps) *cobra.Command {
	root := &cobra.Command{
		Use:           "quizctl",
		Short:         "Operate the healthcare quiz: extraction checks and question lifecycle",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Bool("json", false, "print results as JSON")

	root.AddCommand(
		newExtractCmd(d),
		newIngestCmd(d),
		newSweepCmd(d),
		newTransitionCmd(d, entity.TransitionArchive),
		newTransitionCmd(d, entity.TransitionRestore),
	)
	return root
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newExtractCmd(d deps) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <url>",
		Short: "Extract an article and report whether it passes the content gate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ex, err := d.extractor()
			if err != nil {
				return err
			}
			content, err := ex.Extract(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			gateErr := entity.ValidateContent(content)

			out := cmd.OutOrStdout()
			if jsonOutput(cmd) {
				verdict := map[string]any{
					"title":        content.Title,
					"source":       content.Source,
					"published_at": content.PublishedAt,
					"length":       text.CountRunes(content.CleanText),
					"clean_text":   content.CleanText,
					"acceptable":   gateErr == nil,
				}
				if gateErr != nil {
					verdict["reason"] = gateErr.Error()
				}
				return printJSON(out, verdict)
			}

			fmt.Fprintf(out, "Title:     %s\n", content.Title)
			fmt.Fprintf(out, "Source:    %s\n", content.Source)
			fmt.Fprintf(out, "Published: %s\n", content.PublishedAt.Format(time.RFC3339))
			fmt.Fprintf(out, "Length:    %d characters\n", text.CountRunes(content.CleanText))
			fmt.Fprintf(out, "Preview:   %s\n", text.Truncate(content.CleanText, 200))
			if gateErr != nil {
				fmt.Fprintf(out, "Verdict:   rejected (%s)\n", gateErr)
			} else {
				fmt.Fprintln(out, "Verdict:   acceptable")
			}
			return nil
		},
	}
}

func newIngestCmd(d deps) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <url>...",
		Short: "Extract and store articles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := d.ingest(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			batch, err := svc.IngestURLs(cmd.Context(), args)
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return printJSON(cmd.OutOrStdout(), batch)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "URL\tSTATUS\tMESSAGE")
			for _, r := range batch.Results {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", r.URL, r.Status, r.Message)
			}
			fmt.Fprintf(tw, "\n%d total, %d stored, %d skipped, %d failed\n",
				batch.Summary.Total, batch.Summary.Success, batch.Summary.Skipped, batch.Summary.Failed)
			return tw.Flush()
		},
	}
}

func newSweepCmd(d deps) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete archived questions past their deletion date",
		Long: "Delete archived questions whose scheduled deletion date has passed, " +
			"keeping any answered in the last 90 days. --dry-run only lists them.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeFn, err := d.lifecycle(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			out := cmd.OutOrStdout()
			if dryRun {
				preview, err := svc.PreviewSweep(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput(cmd) {
					return printJSON(out, preview)
				}
				return printPreview(out, preview)
			}

			report, err := svc.Sweep(cmd.Context())
			if report != nil {
				if jsonOutput(cmd) {
					if perr := printJSON(out, report); perr != nil {
						return perr
					}
				} else {
					fmt.Fprintf(out, "Deleted %d, protected %d, failed %d of %d expired archived questions.\n",
						report.Deleted, report.Protected, report.Failed, report.Candidates)
				}
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list what would be deleted without deleting")
	return cmd
}

func printPreview(w io.Writer, p *lifecycle.SweepPreview) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSCHEDULED\tRECENT RESPONSES\tACTION")
	for _, group := range []struct {
		items  []lifecycle.SweepCandidate
		action string
	}{{p.Eligible, "delete"}, {p.Protected, "keep"}, {p.Unchecked, "unchecked"}} {
		for _, c := range group.items {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n",
				c.QuestionID, c.ScheduledDeletionAt.Format(time.DateOnly), c.RecentResponses, group.action)
		}
	}
	fmt.Fprintf(tw, "\n%d would be deleted, %d protected\n", len(p.Eligible), len(p.Protected))
	if len(p.Unchecked) > 0 {
		fmt.Fprintf(tw, "%d could not be checked for recent responses\n", len(p.Unchecked))
	}
	return tw.Flush()
}

func newTransitionCmd(d deps, action entity.Transition) *cobra.Command {
	var reason, actor string
	cmd := &cobra.Command{
		Use:   string(action) + " <question-id>...",
		Short: fmt.Sprintf("%s questions by id", actionTitle(action)),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := d.lifecycle(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := svc.BulkApply(cmd.Context(), action, args, reason, actor)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOutput(cmd) {
				if err := printJSON(out, res); err != nil {
					return err
				}
			} else {
				for _, r := range res.Results {
					line := fmt.Sprintf("%s\t%s", r.ID, r.Outcome)
					if r.Message != "" {
						line += "\t" + r.Message
					}
					fmt.Fprintln(out, line)
				}
				fmt.Fprintf(out, "%d of %d succeeded\n", res.SuccessCount, res.Total())
			}
			if res.ErrorCount > 0 {
				return fmt.Errorf("%s: %d of %d questions not changed", action, res.ErrorCount, res.Total())
			}
			return nil
		},
	}
	if action == entity.TransitionArchive {
		cmd.Flags().StringVar(&reason, "reason", "", "why the questions are archived")
		cmd.Flags().StringVar(&actor, "actor", "cli", "who archived the questions")
	}
	return cmd
}

func actionTitle(t entity.Transition) string {
	switch t {
	case entity.TransitionArchive:
		return "Archive"
	case entity.TransitionRestore:
		return "Restore"
	}
	return string(t)
}
