package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exportCSV = `Subject,Start Date,Start Time,End Time
MO(P) - 4ES1,16/02/2026,09:00:00,11:00:00
MO(P) - 4ES1,23/02/2026,09:00:00,11:00:00
AM(G) - 2A,17/02/2026,10:00:00,12:00:00
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestConvertAndPlan(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "data")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "EspaiC4.csv"), []byte(exportCSV), 0o644))
	out := filepath.Join(root, "src", "data.json")
	missingCfg := filepath.Join(root, "config.yaml")

	got, err := execute(t, "convert", "-c", missingCfg, "--source", src, "--out", out)
	require.NoError(t, err)
	assert.Contains(t, got, "2 sessions from 1 files")
	_, err = os.Stat(out)
	require.NoError(t, err)

	got, err = execute(t, "plan", "-c", missingCfg, "--payload", out, "--subjects", "AM,MO", "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, got, "rank,score,subject")
	assert.Contains(t, got, "AM,2A,T,2,10:00,2,1")
}

func TestConvertWithoutSourceSucceeds(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "data.json")
	got, err := execute(t, "convert", "-c", filepath.Join(root, "config.yaml"), "--source", filepath.Join(root, "missing"), "--out", out)
	require.NoError(t, err)
	assert.Contains(t, got, "nothing to convert")
	_, err = os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestHistoryRequiresBackend(t *testing.T) {
	_, err := execute(t, "history", "-c", filepath.Join(t.TempDir(), "config.yaml"))
	assert.ErrorContains(t, err, "history is disabled")
}
