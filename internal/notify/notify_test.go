package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/repcheck/internal/models"
)

type recorder struct {
	alertErr error
	alerts   []string
	name     string
	args     []string
	env      []string
	runs     int
}

func (r *recorder) install(n *Notifier) {
	n.alert = func(title, message, _ string) error {
		r.alerts = append(r.alerts, title+": "+message)
		return r.alertErr
	}

	n.run = func(_ context.Context, name string, args, env []string) error {
		r.runs++
		r.name, r.args, r.env = name, args, env

		return nil
	}
}

func TestCompleted(t *testing.T) {
	score := 87.5

	testCases := []struct {
		Name       string
		Cmd        string
		Score      *float64
		WantAlerts []string
		WantName   string
		WantArgs   []string
		WantEnv    []string
		Enabled    bool
	}{
		{
			Name:       "notification with score and hook",
			Enabled:    true,
			Cmd:        `notify-send "form check" --urgency=low`,
			Score:      &score,
			WantAlerts: []string{"Analysis complete: Squat in squat.mp4 has been analyzed: overall score 88"},
			WantName:   "notify-send",
			WantArgs:   []string{"form check", "--urgency=low"},
			WantEnv: []string{
				"REPCHECK_SESSION_ID=s1",
				"REPCHECK_EXERCISE=1",
				"REPCHECK_SCORE=87.5",
			},
		},
		{
			Name:       "no score",
			Enabled:    true,
			WantAlerts: []string{"Analysis complete: Squat in squat.mp4 has been analyzed"},
		},
		{
			Name:     "notifications disabled",
			Cmd:      "true",
			WantName: "true",
			WantArgs: []string{},
			WantEnv: []string{
				"REPCHECK_SESSION_ID=s1",
				"REPCHECK_EXERCISE=1",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			var r recorder

			n := New(tc.Enabled, tc.Cmd, "", nil)
			r.install(n)

			err := n.Completed(context.Background(), &models.Analysis{
				SessionID: "s1",
				Exercise:  "1",
				FileName:  "squat.mp4",
				Score:     tc.Score,
			}, "Squat")
			require.NoError(t, err)

			assert.Equal(t, tc.WantAlerts, r.alerts)

			if tc.Cmd == "" {
				assert.Zero(t, r.runs)
				return
			}

			assert.Equal(t, 1, r.runs)
			assert.Equal(t, tc.WantName, r.name)
			assert.Equal(t, tc.WantArgs, r.args)
			assert.Equal(t, tc.WantEnv, r.env)
		})
	}
}

func TestAlertErrorIsNotReturned(t *testing.T) {
	r := recorder{alertErr: errors.New("no notification daemon")}

	n := New(true, "", "", nil)
	r.install(n)

	err := n.Completed(context.Background(), &models.Analysis{FileName: "a.mp4"}, "Squat")
	assert.NoError(t, err)
	assert.Len(t, r.alerts, 1)
}

func TestUnparseableHook(t *testing.T) {
	var r recorder

	n := New(false, `echo "unterminated`, "", nil)
	r.install(n)

	err := n.Completed(context.Background(), &models.Analysis{}, "Squat")
	assert.True(t, errors.Is(err, errParseCmd))
	assert.Zero(t, r.runs)
}
