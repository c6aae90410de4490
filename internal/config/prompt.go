package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"

	"github.com/ayoisaiah/repcheck/internal/session"
)

const asciiLogo = `
██████╗ ███████╗██████╗  ██████╗██╗  ██╗███████╗ ██████╗██╗  ██╗
██╔══██╗██╔════╝██╔══██╗██╔════╝██║  ██║██╔════╝██╔════╝██║ ██╔╝
██████╔╝█████╗  ██████╔╝██║     ███████║█████╗  ██║     █████╔╝
██╔══██╗██╔══╝  ██╔═══╝ ██║     ██╔══██║██╔══╝  ██║     ██╔═██╗
██║  ██║███████╗██║     ╚██████╗██║  ██║███████╗╚██████╗██║  ██╗
╚═╝  ╚═╝╚══════╝╚═╝      ╚═════╝╚═╝  ╚═╝╚══════╝ ╚═════╝╚═╝  ╚═╝`

// PromptOptions holds the user's responses to the configuration prompts.
type PromptOptions struct {
	BaseURL         string
	DefaultExercise string
}

// WithPromptConfig returns an Option that asks for the first-run settings
// when no config file exists yet. It must precede WithViperConfig, which
// writes the answers to the new file.
func WithPromptConfig(configPath string) Option {
	return func(c *Config) error {
		_, err := os.Stat(configPath)
		if err == nil || !errors.Is(err, os.ErrNotExist) {
			return err
		}

		opts, err := promptUser()
		if err != nil {
			return fmt.Errorf("user prompt failed: %w", err)
		}

		return applyPromptOptions(c, opts)
	}
}

// promptUser handles the interactive configuration process.
func promptUser() (PromptOptions, error) {
	opts := PromptOptions{
		BaseURL: "http://localhost:8000",
	}

	pterm.Println(asciiLogo)

	_ = putils.BulletListFromString(`Follow the prompts below to configure repcheck for the first time.
Press ENTER to accept the defaults.
Edit the config file with 'repcheck edit-config' to change any settings.`, " ").
		Render()

	exercises := []huh.Option[string]{
		huh.NewOption("Ask every time", "").Selected(true),
	}

	for _, id := range session.ExerciseIDs(DefaultExercises) {
		exercises = append(exercises, huh.NewOption(DefaultExercises[id], id))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Analysis service URL").
				Value(&opts.BaseURL),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Default exercise").
				Options(exercises...).
				Value(&opts.DefaultExercise),
		),
	)

	err := form.Run()
	if err != nil {
		return opts, fmt.Errorf("form interaction failed: %w", err)
	}

	return opts, nil
}

// applyPromptOptions applies the user's prompt responses to the configuration.
func applyPromptOptions(c *Config, opts PromptOptions) error {
	c.Server.BaseURL = strings.TrimSpace(opts.BaseURL)
	c.Analysis.DefaultExercise = opts.DefaultExercise

	return nil
}

// PromptExercise asks which exercise the video shows. Exercises are listed
// in natural id order.
func PromptExercise(exercises map[string]string) (string, error) {
	var id string

	options := make([]huh.Option[string], 0, len(exercises))

	for _, k := range session.ExerciseIDs(exercises) {
		options = append(options, huh.NewOption(exercises[k], k))
	}

	err := huh.NewSelect[string]().
		Title("Which exercise does the video show?").
		Options(options...).
		Value(&id).
		Run()
	if err != nil {
		return "", err
	}

	return id, nil
}

// PromptNotes asks for optional notes to send with the analysis.
func PromptNotes() (string, error) {
	var notes string

	err := huh.NewText().
		Title("Notes for the analysis (optional)").
		CharLimit(500).
		Value(&notes).
		Run()
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(notes), nil
}
