package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	assert.NoError(t, os.Setenv("APP_ENV", "dev"))
	defer func() { assert.NoError(t, os.Unsetenv("APP_ENV")) }()
	var buf bytes.Buffer
	Configure(Options{Level: "debug", Out: &buf})
	defer Configure(Options{})
	l := NewZerologLogger("test")
	require.NotNil(t, l)
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
	assert.Contains(t, buf.String(), "info test")
}

func TestZerologLoggerJSONComponent(t *testing.T) {
	var buf bytes.Buffer
	Configure(Options{Level: "info", Format: "json", Out: &buf})
	defer Configure(Options{})
	New("converter").Infof("rows %d", 3)
	New("converter").Debugf("hidden")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "converter", line["component"])
	assert.Equal(t, "rows 3", line["message"])
}
