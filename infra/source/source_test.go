package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const export = "\uFEFFSubject , Start Date, Start Time, End Time ,Location\n" +
	" MO(P) - 4ES1 , 16/02/2026 , 09:00:00 , 11:00:00 ,C4-002\n" +
	"NO LECTIU,17/02/2026,,,\n" +
	"\"AM(G) - 2A\",18/02/2026,10:00:00,12:00:00,\"C4, aula 1\"\n"

func TestReadTrimsAndBinds(t *testing.T) {
	recs, err := Read(strings.NewReader(export))
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "MO(P) - 4ES1", recs[0].Subject)
	assert.Equal(t, "16/02/2026", recs[0].StartDate)
	assert.Equal(t, "09:00:00", recs[0].StartTime)
	assert.Equal(t, "11:00:00", recs[0].EndTime)
	assert.Equal(t, 2, recs[0].Line)
	assert.Equal(t, "NO LECTIU", recs[1].Subject)
	assert.Equal(t, "", recs[1].EndTime)
	assert.Equal(t, "AM(G) - 2A", recs[2].Subject)
	assert.Equal(t, 4, recs[2].Line)
}

func TestReadMissingColumns(t *testing.T) {
	_, err := Read(strings.NewReader("Subject,Start Date\nMO(P) - 4ES1,16/02/2026\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Start Time")
}

func TestReadLineFollowsMultilineFields(t *testing.T) {
	data := "Subject,Start Date,Start Time,End Time,Notes\n" +
		"MO(P) - 4ES1,16/02/2026,09:00:00,11:00:00,\"bring\nlaptop\"\n" +
		"AM(G) - 2A,18/02/2026,10:00:00,12:00:00,\n"
	recs, err := Read(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 2, recs[0].Line)
	assert.Equal(t, 4, recs[1].Line)
}

func TestReadEmptyInput(t *testing.T) {
	for name, data := range map[string]string{
		"empty":       "",
		"header only": "Subject,Start Date,Start Time,End Time\n",
	} {
		t.Run(name, func(t *testing.T) {
			recs, err := Read(strings.NewReader(data))
			require.NoError(t, err)
			assert.Empty(t, recs)
		})
	}

	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	recs, err := ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestReadFileSetsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "EspaiC4.csv")
	require.NoError(t, os.WriteFile(path, []byte(export), 0o644))
	recs, err := ReadFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	assert.Equal(t, path, recs[0].File)
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.csv", "a.CSV", "notes.txt", "old-2024.csv"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(export), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.csv"), 0o755))

	files, err := Discover(Config{Dir: dir, Exclude: []string{"old-*.csv"}})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.CSV"), filepath.Join(dir, "b.csv")}, files)
}

func TestDiscoverErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Discover(Config{Dir: filepath.Join(dir, "missing")})
	assert.True(t, errors.Is(err, ErrSourceMissing), "got %v", err)

	_, err = Discover(Config{Dir: dir})
	assert.True(t, errors.Is(err, ErrNoSourceFiles), "got %v", err)

	_, err = Discover(Config{File: filepath.Join(dir, "legacy.csv")})
	assert.True(t, errors.Is(err, ErrSourceMissing), "got %v", err)

	legacy := filepath.Join(dir, "legacy.csv")
	require.NoError(t, os.WriteFile(legacy, []byte(export), 0o644))
	files, err := Discover(Config{Dir: "ignored", File: legacy})
	require.NoError(t, err)
	assert.Equal(t, []string{legacy}, files)
}
