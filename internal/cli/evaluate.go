package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/evaluation"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/store"
)

func newEvaluateCommand(opts *options) *cobra.Command {
	var (
		file    string
		archive string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a decision problem file",
		Long: `Evaluate a decision problem described in YAML or JSON.

The problem lists criteria (optionally nested through parent_id), alternatives,
experts, pairwise comparisons and ratings. Add a "sensitivity" section to sweep
criterion weights after ranking. Use "-f -" to read from stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "text" && output != "json" {
				return fmt.Errorf("unsupported output %q: must be text or json", output)
			}
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.Logging, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			p, err := readProblem(file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			var db store.Store
			if archive != "" {
				s, err := store.NewSQLiteStore(archive)
				if err != nil {
					return fmt.Errorf("open archive: %w", err)
				}
				defer s.Close()
				db = s
			}

			engine := evaluation.New(db, nil, evaluation.SettingsFromConfig(cfg), logger)
			res, err := engine.Evaluate(cmd.Context(), p)
			if err != nil {
				return err
			}

			if output == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			writeReport(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Problem file (YAML or JSON), - for stdin")
	cmd.Flags().StringVar(&archive, "archive", "", "SQLite file to archive the run in")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text or json")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func readProblem(file string, stdin io.Reader) (*evaluation.Problem, error) {
	if file == "-" {
		return evaluation.DecodeProblem(stdin)
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("open problem: %w", err)
	}
	defer f.Close()
	return evaluation.DecodeProblem(f)
}

func writeReport(w io.Writer, res *evaluation.Result) {
	if res.Name != "" {
		fmt.Fprintf(w, "%s\n\n", res.Name)
	}

	fmt.Fprintln(w, "Criterion weights")
	for _, l := range res.Leaves {
		fmt.Fprintf(w, "  %-20s %8.4f  %s\n", label(l.ID, l.Name), l.Weight, l.Polarity)
	}

	fmt.Fprintln(w, "\nRanking")
	for _, a := range res.Ranking {
		mark := ""
		if a.NonDominated {
			mark = "  non-dominated"
		}
		fmt.Fprintf(w, "  %2d. %-20s CC %.4f  d+ %.4f  d- %.4f%s\n",
			a.Rank, label(a.ID, a.Name), a.Closeness, a.DistanceIdeal, a.DistanceAntiIdeal, mark)
	}

	if len(res.Warnings) > 0 {
		fmt.Fprintln(w, "\nConsistency warnings")
		for _, warn := range res.Warnings {
			fmt.Fprintf(w, "  %s: %s\n", warn.Group, warn.Message)
		}
		for _, d := range res.Diagnoses {
			fmt.Fprintf(w, "  %s: %s vs %s judged %.3g, weights imply %.3g (%s)\n",
				d.Group, d.A, d.B, d.Judgment, d.Implied, d.Direction)
		}
	}

	if s := res.Sensitivity; s != nil {
		fmt.Fprintf(w, "\nSensitivity  stability index %.2f\n", s.StabilityIndex)
		for i, c := range s.Criteria {
			critical := "stable"
			if c.CriticalPerturbation != nil {
				critical = fmt.Sprintf("reversal at %+.1f%%", *c.CriticalPerturbation*100)
			}
			fmt.Fprintf(w, "  %-20s %s\n", s.CriterionIDs[i], critical)
		}
		if len(s.Focus) > 0 {
			fmt.Fprintf(w, "  most variable: %s\n", strings.Join(s.Focus, ", "))
		}
	}

	if r := res.Robustness; r != nil {
		fmt.Fprintf(w, "\nRobustness  %d draws, most common order in %.1f%%\n", r.Iterations, r.Probability*100)
	}

	if res.RunID != nil {
		fmt.Fprintf(w, "\nArchived as %s\n", res.RunID)
	}
}

func label(id, name string) string {
	if name == "" {
		return id
	}
	return name + " (" + id + ")"
}
