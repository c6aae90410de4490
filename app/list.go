package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/repcheck/internal/config"
	"github.com/ayoisaiah/repcheck/internal/models"
	"github.com/ayoisaiah/repcheck/internal/timeutil"
	"github.com/ayoisaiah/repcheck/internal/ui"
)

const (
	noAnalysesMsg = "No analyses found for the specified time range"
)

// printAnalysesTable prints an analysis table to the command-line.
func printAnalysesTable(
	w io.Writer,
	analyses []models.Analysis,
	exercises map[string]string,
) {
	tableBody := make([][]string, len(analyses))

	for i := range analyses {
		a := analyses[i]

		score := "-"
		if a.Score != nil {
			score = ui.Score(*a.Score)
		}

		row := []string{
			fmt.Sprintf("%d", i+1),
			a.CompletedAt.Local().Format("Jan 02, 2006 03:04 PM"),
			exerciseName(exercises, a.Exercise),
			a.FileName,
			score,
			timeutil.Human(a.Elapsed),
			strings.Join(a.Warnings, " · "),
		}

		tableBody[i] = row
	}

	tableBody = append([][]string{
		{"#", "DATE", "EXERCISE", "FILE", "SCORE", "TOOK", "WARNINGS"},
	}, tableBody...)

	ui.PrintTable(tableBody, w)
}

// historyAction handles the history command and prints the analyses
// completed within a time period.
func historyAction(ctx *cli.Context) error {
	d, err := newDeps(ctx)
	if err != nil {
		return err
	}

	defer d.Close()

	cfg := d.cfg

	analyses, err := d.db.GetAnalyses(cfg.CLI.Since, cfg.CLI.Until, cfg.CLI.Exercises)
	if err != nil {
		return err
	}

	if cfg.CLI.JSON {
		if analyses == nil {
			analyses = []models.Analysis{}
		}

		return printJSON(config.Stdout, analyses)
	}

	if len(analyses) == 0 {
		pterm.Info.Println(noAnalysesMsg)
		return nil
	}

	printAnalysesTable(config.Stdout, analyses, cfg.Analysis.Exercises)

	return nil
}
