package store_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/repcheck/internal/models"
	"github.com/ayoisaiah/repcheck/internal/store"
)

func newClient(t *testing.T) *store.Client {
	t.Helper()

	c, err := store.NewClient(filepath.Join(t.TempDir(), "repcheck.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.Close()
	})

	return c
}

func TestAnonymousFlag(t *testing.T) {
	c := newClient(t)

	exhausted, err := c.AnonymousExhausted()
	require.NoError(t, err)
	assert.False(t, exhausted)

	require.NoError(t, c.SetAnonymousExhausted(true))

	exhausted, err = c.AnonymousExhausted()
	require.NoError(t, err)
	assert.True(t, exhausted)

	require.NoError(t, c.SetAnonymousExhausted(false))

	exhausted, err = c.AnonymousExhausted()
	require.NoError(t, err)
	assert.False(t, exhausted)
}

func TestFlagSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repcheck.db")

	c, err := store.NewClient(path)
	require.NoError(t, err)
	require.NoError(t, c.SetAnonymousExhausted(true))
	require.NoError(t, c.Close())

	c, err = store.NewClient(path)
	require.NoError(t, err)

	defer c.Close()

	exhausted, err := c.AnonymousExhausted()
	require.NoError(t, err)
	assert.True(t, exhausted)
}

func TestBalance(t *testing.T) {
	c := newClient(t)

	bal, err := c.Balance()
	require.NoError(t, err)
	assert.Nil(t, bal)

	want := models.Balance{
		Remaining: 12,
		UpdatedAt: time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC),
	}

	require.NoError(t, c.SaveBalance(want))

	bal, err = c.Balance()
	require.NoError(t, err)
	require.NotNil(t, bal)
	assert.True(t, want.UpdatedAt.Equal(bal.UpdatedAt))
	assert.Equal(t, want.Remaining, bal.Remaining)
}

func TestGetAnalyses(t *testing.T) {
	c := newClient(t)

	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	score := 87.5

	records := []models.Analysis{
		{CompletedAt: base, SessionID: "s1", Exercise: "squat", FrameCount: 240},
		{CompletedAt: base.Add(500 * time.Millisecond), SessionID: "s2", Exercise: "pushup"},
		{CompletedAt: base.Add(time.Hour), SessionID: "s3", Exercise: "squat", Score: &score},
		{CompletedAt: base.Add(48 * time.Hour), SessionID: "s4", Exercise: "squat"},
	}

	for i := range records {
		require.NoError(t, c.SaveAnalysis(&records[i]))
	}

	ids := func(as []models.Analysis) []string {
		out := make([]string, len(as))
		for i := range as {
			out[i] = as[i].SessionID
		}

		return out
	}

	testCases := []struct {
		Name      string
		Since     time.Time
		Until     time.Time
		Exercises []string
		Expected  []string
	}{
		{
			Name:     "everything in order",
			Since:    base.Add(-time.Hour),
			Until:    base.Add(72 * time.Hour),
			Expected: []string{"s1", "s2", "s3", "s4"},
		},
		{
			Name:     "bounded window",
			Since:    base,
			Until:    base.Add(time.Hour),
			Expected: []string{"s1", "s2", "s3"},
		},
		{
			Name:      "filtered by exercise",
			Since:     base.Add(-time.Hour),
			Until:     base.Add(72 * time.Hour),
			Exercises: []string{"squat"},
			Expected:  []string{"s1", "s3", "s4"},
		},
		{
			Name:     "empty window",
			Since:    base.Add(100 * time.Hour),
			Until:    base.Add(200 * time.Hour),
			Expected: []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			got, err := c.GetAnalyses(tc.Since, tc.Until, tc.Exercises)
			require.NoError(t, err)

			if diff := cmp.Diff(tc.Expected, ids(got)); diff != "" {
				t.Errorf("GetAnalyses() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
