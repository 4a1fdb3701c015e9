package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/ppigraph/internal/literature"
)

var literatureProtein string

func init() {
	literatureCmd.Flags().StringVar(&literatureProtein, "protein", "", "Only list papers mentioning this protein")
	rootCmd.AddCommand(literatureCmd)
}

var literatureCmd = &cobra.Command{
	Use:   "literature [pmid]",
	Short: "List literature evidence",
	Long: `List the papers shown in the literature panel.

Examples:
  ppi literature
  ppi literature --protein Tau
  ppi literature 31201283 --human`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLiterature,
}

func runLiterature(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		rec, err := literature.ByPMID(args[0])
		if err != nil {
			if errors.Is(err, literature.ErrNotFound) {
				exitWithError(ExitDataError, "%v", err)
			}
			return err
		}
		if humanOutput {
			printRecord(rec)
			return nil
		}
		return outputJSON(rec)
	}

	records := literature.All()
	if literatureProtein != "" {
		records = literature.MentioningProtein(literatureProtein)
	}
	if records == nil {
		records = []literature.Record{}
	}

	if !humanOutput {
		return outputJSON(records)
	}
	if len(records) == 0 {
		outputHuman("No papers found\n")
		return nil
	}
	for i, rec := range records {
		if i > 0 {
			fmt.Println()
		}
		printRecord(rec)
	}
	return nil
}

func printRecord(rec literature.Record) {
	headerColor.Println(truncateString(rec.Title, TitleMaxLen))
	outputHuman("  %s\n", rec.Authors)
	outputHuman("  %s (%d) %s\n", rec.Journal, rec.Year, subtleColor.Sprintf("%d citations", rec.Citations))
	for _, p := range rec.RelevantProteins {
		outputHuman("  %s", proteinColor.Sprint(p))
	}
	outputHuman("\n  %s\n", subtleColor.Sprint(rec.URL()))
}
