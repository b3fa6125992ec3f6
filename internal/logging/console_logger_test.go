package logging

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"
)

// syncBuffer serialises writes from concurrent loggers in tests.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestConsoleLogger_Verbose_WhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(&buf, true, false)
	logger.Verbose("loading %s", "staging_events")

	expected := "[VERBOSE] loading staging_events\n"
	if buf.String() != expected {
		t.Errorf("Expected %q, got %q", expected, buf.String())
	}
}

func TestConsoleLogger_Verbose_WhenDisabled(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(&buf, false, false)
	logger.Verbose("loading %s", "staging_events")

	if buf.String() != "" {
		t.Errorf("Expected no output, got %q", buf.String())
	}
}

func TestConsoleLogger_Info(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(&buf, false, false)
	logger.Info("✓ Created %d tables", 7)

	expected := "✓ Created 7 tables\n"
	if buf.String() != expected {
		t.Errorf("Expected %q, got %q", expected, buf.String())
	}
}

func TestConsoleLogger_Error(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(&buf, false, false)
	logger.Error("copy %s failed", "staging_songs")

	expected := "[ERROR] copy staging_songs failed\n"
	if buf.String() != expected {
		t.Errorf("Expected %q, got %q", expected, buf.String())
	}
}

func TestConsoleLogger_NoArgsKeepsPercent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(&buf, false, false)
	logger.Info("100% done")

	if buf.String() != "100% done\n" {
		t.Errorf("Expected literal format without args, got %q", buf.String())
	}
}

func TestConsoleLogger_ColorKeepsTagText(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(&buf, true, true)
	logger.Error("boom")
	logger.Verbose("detail")

	out := buf.String()
	if !strings.Contains(out, "[ERROR]") || !strings.Contains(out, "boom") {
		t.Errorf("Expected error tag and message, got %q", out)
	}
	if !strings.Contains(out, "[VERBOSE]") || !strings.Contains(out, "detail") {
		t.Errorf("Expected verbose tag and message, got %q", out)
	}
}

func TestConsoleLogger_ConcurrentSafety(t *testing.T) {
	buf := &syncBuffer{}
	logger := NewConsoleLoggerTo(buf, true, false)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			logger.Info("message %d", id)
			logger.Verbose("verbose %d", id)
			logger.Error("error %d", id)
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 30 {
		t.Errorf("Expected 30 lines, got %d", len(lines))
	}
	for i, line := range lines {
		if !strings.Contains(line, "message") && !strings.Contains(line, "verbose") && !strings.Contains(line, "error") {
			t.Errorf("Line %d appears corrupted: %q", i, line)
		}
	}
}

func TestNullLogger_ConcurrentSafety(t *testing.T) {
	logger := NewNullLogger()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			logger.Info("message %d", id)
			logger.Verbose("verbose %d", id)
			logger.Error("error %d", id)
		}(i)
	}
	wg.Wait()
}

func BenchmarkConsoleLogger_Verbose(b *testing.B) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(&buf, true, false)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Verbose("benchmark message %d", i)
		buf.Reset()
	}
}

func BenchmarkConsoleLogger_VerboseDisabled(b *testing.B) {
	logger := NewConsoleLoggerTo(&bytes.Buffer{}, false, false)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Verbose("benchmark message %d", i)
	}
}

func ExampleNullLogger() {
	logger := NewNullLogger()
	logger.Info("This message is discarded")
	logger.Verbose("This too")
	logger.Error("And this")
	fmt.Println("Done")
	// Output:
	// Done
}

func TestConsoleLogger_SetOutput(t *testing.T) {
	var first, second bytes.Buffer
	logger := NewConsoleLoggerTo(&first, false, false)

	prev := logger.SetOutput(&second)
	logger.Info("moved")
	if prev != &first {
		t.Errorf("Expected previous writer to be returned")
	}
	if first.Len() != 0 || second.String() != "moved\n" {
		t.Errorf("Expected message on new writer, got %q / %q", first.String(), second.String())
	}

	logger.SetOutput(prev)
	logger.Info("back")
	if first.String() != "back\n" {
		t.Errorf("Expected message on restored writer, got %q", first.String())
	}
}

func TestConsoleLogger_NoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(&buf, false, true)
	logger.Error("boom")

	if buf.String() != "[ERROR] boom\n" {
		t.Errorf("Expected plain prefix with NO_COLOR, got %q", buf.String())
	}
}
