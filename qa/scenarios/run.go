package scenarios

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/timetable/core/convert"
	"github.com/kilianp07/timetable/core/emit"
	"github.com/kilianp07/timetable/infra/logger"
)

// RunScenario converts the scenario rows and compares the result.
func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	opts, err := sc.Options()
	require.NoError(t, err)
	conv := convert.NewConverter(opts, logger.NopLogger{})

	ctx := conv.NewContext()
	for i, r := range sc.Rows {
		if err = ctx.Add(r.ToModel(i + 2)); err != nil {
			break
		}
	}
	if sc.Expected.Error != "" {
		require.Error(t, err)
		assert.Contains(t, err.Error(), sc.Expected.Error)
		return
	}
	require.NoError(t, err)
	sessions, _ := ctx.Result()

	got := make([]SessionDef, len(sessions))
	for i, s := range sessions {
		got[i] = SessionDef{
			Subject:  s.Subject,
			Group:    s.Group,
			Weekday:  s.Weekday,
			Start:    s.Start,
			Duration: s.Duration,
			Type:     s.Type.String(),
			Weeks:    s.Weeks,
		}
	}
	assert.Equal(t, sc.Expected.Sessions, got)

	stats := ctx.Stats()
	for reason, n := range sc.Expected.Skipped {
		assert.Equal(t, n, stats.Skipped[convert.SkipReason(reason)], "skipped %s", reason)
	}

	payload, err := emit.Encode(emit.NewPayload(sessions), 2)
	require.NoError(t, err)
	assert.NoError(t, emit.Validate(payload))
}
