package testutil

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/systmms/ssmconfig/internal/logging"
)

// TestLogger captures logging.Logger output so tests can check that
// messages were written and that values never were.
type TestLogger struct {
	*logging.Logger

	mu     sync.Mutex
	buffer bytes.Buffer
}

// NewTestLogger returns a colorless logger writing to an in-memory buffer.
func NewTestLogger(t *testing.T, debug bool) *TestLogger {
	t.Helper()

	tl := &TestLogger{}
	tl.Logger = logging.NewWithWriter(lockedWriter{tl}, debug, true)
	return tl
}

// GetOutput returns everything logged so far.
func (l *TestLogger) GetOutput() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buffer.String()
}

// AssertContains fails unless the output contains expected.
func (l *TestLogger) AssertContains(t *testing.T, expected string) {
	t.Helper()
	assert.Contains(t, l.GetOutput(), expected)
}

// AssertNotContains fails if the output contains unexpected.
func (l *TestLogger) AssertNotContains(t *testing.T, unexpected string) {
	t.Helper()
	output := l.GetOutput()
	if strings.Contains(output, unexpected) {
		t.Errorf("log output unexpectedly contains %q:\n%s", unexpected, output)
	}
}

type lockedWriter struct{ l *TestLogger }

func (w lockedWriter) Write(p []byte) (int, error) {
	w.l.mu.Lock()
	defer w.l.mu.Unlock()
	return w.l.buffer.Write(p)
}
