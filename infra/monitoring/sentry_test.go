package monitoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/timetable/config"
	coremon "github.com/kilianp07/timetable/core/monitoring"
)

func TestNewSentryMonitorWithoutDSN(t *testing.T) {
	m, err := NewSentryMonitor(config.SentryConfig{})
	require.NoError(t, err)
	assert.IsType(t, coremon.NopMonitor{}, m)
}

func TestNewSentryMonitorInvalidDSN(t *testing.T) {
	_, err := NewSentryMonitor(config.SentryConfig{DSN: "ftp://public@example.com/1"})
	assert.Error(t, err)
}
