package planner

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/timetable/core/model"
)

func sess(subject, group string, day int, start string, dur int, weeks ...int) *model.Session {
	return &model.Session{Subject: subject, Group: group, Weekday: day, Start: start, Duration: dur, Type: model.Theory, Weeks: weeks}
}

func fixture() []*model.Session {
	return []*model.Session{
		sess("AM", "2A", 1, "09:00", 2, 1, 2, 3),
		sess("AM", "2B", 1, "15:00", 2, 1, 2, 3),
		sess("FI", "3A", 1, "10:00", 2, 1, 2),
		sess("FI", "3B", 2, "16:00", 2, 1, 2),
		sess("FI", "3B", 4, "16:00", 1, 1, 2),
	}
}

func TestSubjectsAndGroups(t *testing.T) {
	p := New(fixture())
	assert.Equal(t, []string{"AM", "FI"}, p.Subjects())
	assert.Equal(t, []string{"3A", "3B"}, p.Groups("FI"))
	assert.Nil(t, p.Groups("XX"))
}

func TestPlanRejectsCollisions(t *testing.T) {
	p := New(fixture())
	got, err := p.Plan(Request{Subjects: []string{"AM", "FI"}})
	require.NoError(t, err)
	// AM 2A (Mon 9-10) collides with FI 3A (Mon 10-11).
	require.Len(t, got, 3)
	for _, s := range got {
		assert.False(t, s.Groups["AM"] == "2A" && s.Groups["FI"] == "3A")
	}

	all, err := p.Plan(Request{Subjects: []string{"AM", "FI"}, AllowOverlap: true})
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestCollisionNeedsSharedWeek(t *testing.T) {
	p := New([]*model.Session{
		sess("AM", "1", 1, "09:00", 2, 1, 2),
		sess("FI", "1", 1, "09:00", 2, 3, 4),
	})
	got, err := p.Plan(Request{Subjects: []string{"AM", "FI"}})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestPlanScoring(t *testing.T) {
	p := New(fixture())

	morning, err := p.Plan(Request{Subjects: []string{"AM"}, Preference: PreferMorning})
	require.NoError(t, err)
	require.Len(t, morning, 2)
	assert.Equal(t, "2A", morning[0].Groups["AM"])
	assert.Equal(t, (22-9)+(22-10), morning[0].Score)
	assert.Equal(t, 0, morning[1].Score)

	afternoon, err := p.Plan(Request{Subjects: []string{"AM"}, Preference: PreferAfternoon})
	require.NoError(t, err)
	assert.Equal(t, "2B", afternoon[0].Groups["AM"])
	assert.Equal(t, 15+16, afternoon[0].Score)

	flat, err := p.Plan(Request{Subjects: []string{"AM"}})
	require.NoError(t, err)
	assert.Equal(t, "2A", flat[0].Groups["AM"])
	assert.Equal(t, 0, flat[0].Score)
}

func TestPlanLimitAndErrors(t *testing.T) {
	p := New(fixture())
	got, err := p.Plan(Request{Subjects: []string{"AM", "AM", "FI"}, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Len(t, got[0].Groups, 2)

	_, err = p.Plan(Request{Subjects: []string{"XX"}})
	assert.ErrorIs(t, err, ErrUnknownSubject)
	_, err = p.Plan(Request{})
	assert.Error(t, err)
	_, err = p.Plan(Request{Subjects: []string{"AM"}, Preference: "evening"})
	assert.Error(t, err)
}

func TestDecodeRequest(t *testing.T) {
	req, err := DecodeRequest(bytes.NewBufferString("subjects: [AM, FI]\npreference: Morning\nlimit: 5\n"), "yaml")
	require.NoError(t, err)
	require.NoError(t, req.Validate())
	assert.Equal(t, []string{"AM", "FI"}, req.Subjects)
	assert.Equal(t, PreferMorning, req.Preference)
	assert.Equal(t, 5, req.Limit)

	path := filepath.Join(t.TempDir(), "req.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"subjects":["AM"],"allow_overlap":true}`), 0o644))
	req, err = LoadRequest(path)
	require.NoError(t, err)
	assert.True(t, req.AllowOverlap)

	_, err = DecodeRequest(bytes.NewBufferString(""), "toml")
	assert.Error(t, err)
}
