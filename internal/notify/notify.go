// Package notify reports finished analyses outside the terminal: a desktop
// notification and an optional user command.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"

	"github.com/gen2brain/beeep"
	"github.com/kballard/go-shellquote"

	"github.com/ayoisaiah/repcheck/internal/apperr"
	"github.com/ayoisaiah/repcheck/internal/models"
)

const (
	EnvSessionID = "REPCHECK_SESSION_ID"
	EnvExercise  = "REPCHECK_EXERCISE"
	EnvScore     = "REPCHECK_SCORE"
)

var errParseCmd = &apperr.Error{
	Message: "unable to parse on_complete_cmd option",
}

type (
	alertFunc func(title, message, icon string) error
	runFunc   func(ctx context.Context, name string, args, env []string) error
)

// Notifier runs the completion side effects.
type Notifier struct {
	logger  *slog.Logger
	alert   alertFunc
	run     runFunc
	cmd     string
	icon    string
	enabled bool
}

// New returns a Notifier. enabled controls the desktop notification; cmd,
// when set, runs after every completed analysis. icon may be empty.
func New(enabled bool, cmd, icon string, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}

	return &Notifier{
		logger:  logger,
		alert:   beeep.Notify,
		run:     runCommand,
		cmd:     cmd,
		icon:    icon,
		enabled: enabled,
	}
}

func runCommand(ctx context.Context, name string, args, env []string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), env...)

	return cmd.Run()
}

// Completed announces a finished analysis and runs the completion command.
// A notification that cannot be shown is logged, not returned.
func (n *Notifier) Completed(ctx context.Context, a *models.Analysis, exerciseName string) error {
	msg := fmt.Sprintf("%s in %s has been analyzed", exerciseName, a.FileName)
	if a.Score != nil {
		msg = fmt.Sprintf("%s: overall score %.0f", msg, *a.Score)
	}

	n.Alert("Analysis complete", msg)

	return n.runHook(ctx, a)
}

// Alert shows a desktop notification when notifications are enabled.
func (n *Notifier) Alert(title, msg string) {
	if !n.enabled {
		return
	}

	if err := n.alert(title, msg, n.icon); err != nil {
		n.logger.Warn("unable to display notification", slog.Any("error", err))
	}
}

func (n *Notifier) runHook(ctx context.Context, a *models.Analysis) error {
	if n.cmd == "" {
		return nil
	}

	cmdSlice, err := shellquote.Split(n.cmd)
	if err != nil {
		return errParseCmd.Wrap(err)
	}

	if len(cmdSlice) == 0 {
		return nil
	}

	env := []string{
		EnvSessionID + "=" + a.SessionID,
		EnvExercise + "=" + a.Exercise,
	}

	if a.Score != nil {
		env = append(env, EnvScore+"="+strconv.FormatFloat(*a.Score, 'f', -1, 64))
	}

	n.logger.Debug("running completion command", slog.String("cmd", cmdSlice[0]))

	return n.run(ctx, cmdSlice[0], cmdSlice[1:], env)
}
