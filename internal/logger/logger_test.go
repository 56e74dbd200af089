package logger

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{" warn ", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"info", LevelInfo},
		{"", LevelInfo},
		{"nonsense", LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "input %q", tt.in)
	}
}

func TestLeveled_Format(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelDebug)

	l.Debug("parsed %d rows", 3)
	l.Info("hello")
	l.Warn("careful %s", "now")
	l.Error("boom")

	assert.Equal(t, "[DEBUG] parsed 3 rows\n[INFO] hello\n[WARN] careful now\n[ERROR] boom\n", buf.String())
}

func TestLeveled_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarn)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")

	assert.Equal(t, "[WARN] shown\n", buf.String())

	buf.Reset()
	l.SetLevel(LevelDebug)
	l.Debug("now shown")
	assert.Equal(t, "[DEBUG] now shown\n", buf.String())
}

func TestLeveled_NilWriter(t *testing.T) {
	l := New(nil, LevelDebug)
	assert.NotPanics(t, func() { l.Error("dropped") })
}

func TestNop(t *testing.T) {
	l := Nop()
	assert.NotPanics(t, func() {
		l.Debug("x")
		l.Info("x")
		l.Warn("x")
		l.Error("x")
	})
}

func TestLeveled_ConcurrentAccess(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelInfo)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			l.Info("worker %d", n)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, bytes.Count(buf.Bytes(), []byte("\n")))
}
