package app

import (
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/repcheck/internal/config"
)

// disableStyling disables all styling provided by pterm.
func disableStyling() {
	pterm.DisableColor()
	pterm.DisableStyling()
	pterm.Debug.Prefix.Text = ""
	pterm.Info.Prefix.Text = ""
	pterm.Success.Prefix.Text = ""
	pterm.Warning.Prefix.Text = ""
	pterm.Error.Prefix.Text = ""
	pterm.Fatal.Prefix.Text = ""
}

// Get retrieves the repcheck app instance.
func Get() *cli.App {
	return &cli.App{
		Name: "repcheck",
		Authors: []*cli.Author{
			{
				Name:  "Ayooluwa Isaiah",
				Email: "ayo@freshman.tech",
			},
		},
		Usage: `
		repcheck uploads a short exercise video to a form-analysis service and
		follows it through upload and analysis, reporting the score and any
		problems with the recording.`,
		UsageText:            "[COMMAND] [OPTIONS] FILE",
		Version:              config.Version,
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name:      "analyze",
				Usage:     "Upload a video and analyze it (default command)",
				ArgsUsage: "FILE",
				Flags:     analyzeFlags,
				Action:    analyzeAction,
			},
			{
				Name:      "validate",
				Usage:     "Check a video against the upload limits without sending it",
				ArgsUsage: "FILE",
				Action:    validateAction,
			},
			{
				Name:   "activate",
				Usage:  "Activate the pending tokens of the configured credential",
				Action: activateAction,
			},
			{
				Name:   "status",
				Usage:  "Print the current identity, free analysis state and token balance",
				Action: statusAction,
			},
			{
				Name: "history",
				Usage: `
				List past analyses recorded on this machine. Defaults to every
				recorded analysis`,
				Flags: []cli.Flag{
					sinceFlag,
					untilFlag,
					historyExerciseFlag,
					jsonFlag,
				},
				Action: historyAction,
			},
			{
				Name:      "cleanup",
				Usage:     "Delete an uploaded video that was never analyzed",
				ArgsUsage: "SESSION_ID",
				Action:    cleanupAction,
			},
			{
				Name:   "edit-config",
				Usage:  "Edit the configuration file",
				Action: editConfigAction,
			},
		},
		Flags:  append(globalFlags, analyzeFlags...),
		Action: analyzeAction,
		Before: beforeAction,
		After:  afterAction,
	}
}
