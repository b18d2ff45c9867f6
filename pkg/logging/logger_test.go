package logging

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureOutput struct {
	mu      sync.Mutex
	entries []LogEntry
}

func (c *captureOutput) Write(entry LogEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, entry)
	return nil
}

func (c *captureOutput) Sync() error  { return nil }
func (c *captureOutput) Close() error { return nil }

func TestParseSeverity(t *testing.T) {
	assert.Equal(t, DEBUG, ParseSeverity("DEBUG"))
	assert.Equal(t, WARN, ParseSeverity("WARN"))
	assert.Equal(t, ERROR, ParseSeverity("ERROR"))
	assert.Equal(t, INFO, ParseSeverity("anything else"))
}

func TestLoggerFiltersBySeverity(t *testing.T) {
	out := &captureOutput{}
	logger := NewLogger(Config{Severity: WARN, Outputs: []Output{out}})

	logger.Debug(context.Background(), "debug line")
	logger.Info(context.Background(), "info line")
	logger.Warn(context.Background(), "warn line")
	logger.Error(context.Background(), "error line")

	require.Len(t, out.entries, 2)
	assert.Equal(t, WARN, out.entries[0].Severity)
	assert.Equal(t, "warn line", out.entries[0].Message)
	assert.Equal(t, ERROR, out.entries[1].Severity)
}

func TestLoggerCarriesRunIDFromContext(t *testing.T) {
	out := &captureOutput{}
	logger := NewLogger(Config{Severity: DEBUG, Outputs: []Output{out}})

	ctx := WithRunID(context.Background(), 7)
	logger.Info(ctx, "starting run: %s", "Plan a trip")
	logger.Info(context.Background(), "outside any run")

	require.Len(t, out.entries, 2)
	assert.Equal(t, 7, out.entries[0].RunID)
	assert.Equal(t, "starting run: Plan a trip", out.entries[0].Message)
	assert.Equal(t, 0, out.entries[1].RunID)
}

func TestGetRunID(t *testing.T) {
	_, ok := GetRunID(context.Background())
	assert.False(t, ok)

	id, ok := GetRunID(WithRunID(context.Background(), 3))
	assert.True(t, ok)
	assert.Equal(t, 3, id)
}

func TestSetLoggerReplacesGlobal(t *testing.T) {
	original := GetLogger()
	defer SetLogger(original)

	out := &captureOutput{}
	SetLogger(NewLogger(Config{Severity: DEBUG, Outputs: []Output{out}}))

	GetLogger().Info(context.Background(), "through the global")
	require.Len(t, out.entries, 1)
}
