package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/ahp"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/topsis"
)

func newScalesCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "scales",
		Short: "Print the linguistic comparison and rating scales",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			switch output {
			case "json":
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{
					"judgments": ahp.Scale(),
					"grades":    topsis.Grades(),
				})
			case "text":
			default:
				return fmt.Errorf("unsupported output %q: must be text or json", output)
			}

			fmt.Fprintln(w, "Pairwise judgments")
			for _, e := range ahp.Scale() {
				fmt.Fprintf(w, "  %3d  %-22s %s\n", e.Judgment, e.Value, e.Label)
			}
			fmt.Fprintln(w, "\nRating grades")
			for _, g := range topsis.Grades() {
				fmt.Fprintf(w, "  %-10s %s\n", g.Grade, g.Value)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text or json")
	return cmd
}
