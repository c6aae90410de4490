package app

import "github.com/urfave/cli/v2"

var (
	serverFlag = &cli.StringFlag{
		Name:    "server",
		Aliases: []string{"s"},
		Usage:   "Base URL of the analysis service (default: http://localhost:8000)",
	}

	tokenFlag = &cli.StringFlag{
		Name:  "token",
		Usage: "Bearer token sent to the analysis service. Without one, a single free analysis is allowed",
	}

	noColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable coloured output",
	}

	exerciseFlag = &cli.StringFlag{
		Name:    "exercise",
		Aliases: []string{"e"},
		Usage:   "Exercise id shown in the video (e.g. '1' for squat). Prompts when unset and no default is configured",
	}

	notesFlag = &cli.StringFlag{
		Name:    "notes",
		Aliases: []string{"n"},
		Usage:   "Optional notes sent along with the analysis request",
	}

	noNotifyFlag = &cli.BoolFlag{
		Name:    "no-notify",
		Aliases: []string{"d"},
		Usage:   "Disable the system notification that appears after an analysis is completed",
	}

	onCompleteFlag = &cli.StringFlag{
		Name:    "on-complete",
		Aliases: []string{"cmd"},
		Usage:   "Execute an arbitrary command after each completed analysis",
	}

	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "Print the result as JSON without the interactive view",
	}

	sinceFlag = &cli.StringFlag{
		Name:  "since",
		Usage: "Only include analyses completed after this time (e.g. '2 weeks ago', '2026-10-01')",
	}

	untilFlag = &cli.StringFlag{
		Name:  "until",
		Usage: "Only include analyses completed before this time (default: now)",
	}

	historyExerciseFlag = &cli.StringFlag{
		Name:    "exercise",
		Aliases: []string{"e"},
		Usage:   "Only include the comma-delimited exercise ids",
	}
)

var analyzeFlags = []cli.Flag{
	exerciseFlag,
	notesFlag,
	noNotifyFlag,
	onCompleteFlag,
	jsonFlag,
}

var globalFlags = []cli.Flag{
	serverFlag,
	tokenFlag,
	noColorFlag,
}
