package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"dramagen/internal/heuristics"
)

func newHeuristicsCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "heuristics",
		Short:       "Inspect the genre, pacing, and title lookups offered to the model",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print the lookup result as JSON")

	cmd.AddCommand(&cobra.Command{
		Use:   "tropes [genre]",
		Short: "List trope keywords for a genre",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			genre := strings.Join(args, " ")
			tropes := heuristics.Tropes(genre)
			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, tropes)
			}
			fmt.Fprintf(out, "Genre: %s\n", heuristics.ResolveGenre(genre))
			rows := make([][]string, 0, len(tropes))
			for i, trope := range tropes {
				rows = append(rows, []string{fmt.Sprint(i + 1), trope})
			}
			fmt.Fprintln(out, renderTable([]string{"#", "Trope"}, rows, []columnAlignment{alignRight, alignLeft}))
			return nil
		},
	})

	var pacingMinutes int
	pacingCmd := &cobra.Command{
		Use:   "pacing [style]",
		Short: "Show a pacing template with suggested beat lengths",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if pacingMinutes < 1 {
				return fmt.Errorf("--minutes must be at least 1 (got %d)", pacingMinutes)
			}
			style := heuristics.PacingFast
			if len(args) == 1 {
				style = args[0]
			}
			template := heuristics.Pacing(style)
			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, template)
			}
			seconds := template.Allocate(pacingMinutes * 60)
			rows := make([][]string, 0, len(template.Ratios))
			for i, ratio := range template.Ratios {
				rows = append(rows, []string{fmt.Sprint(i + 1), fmt.Sprintf("%.0f%%", ratio*100), formatSeconds(seconds[i])})
			}
			fmt.Fprintf(out, "Pacing: %s (%d minute episode)\n", template.Name, pacingMinutes)
			fmt.Fprintln(out, renderTable([]string{"Segment", "Share", "Length"}, rows, []columnAlignment{alignRight, alignRight, alignRight}))
			for _, tip := range template.Tips {
				fmt.Fprintf(out, "- %s\n", tip)
			}
			return nil
		},
	}
	pacingCmd.Flags().IntVar(&pacingMinutes, "minutes", 5, "Episode length used to compute segment lengths")
	cmd.AddCommand(pacingCmd)

	var titleCount int
	titlesCmd := &cobra.Command{
		Use:   "titles <seed>",
		Short: "Generate catchy title variants from a seed phrase",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			titles := heuristics.TitleVariants(strings.Join(args, " "), titleCount)
			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, titles)
			}
			for _, title := range titles {
				fmt.Fprintln(out, title)
			}
			return nil
		},
	}
	titlesCmd.Flags().IntVarP(&titleCount, "count", "n", heuristics.MaxTitleVariants, "Number of variants (1-5)")
	cmd.AddCommand(titlesCmd)

	return cmd
}

func writeJSON(out io.Writer, value any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
