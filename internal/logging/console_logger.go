package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/vvka-141/dwhload/pkg/dwhload"
)

var (
	verboseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// ConsoleLogger writes log messages to stderr.
// Safe for concurrent use by multiple goroutines.
type ConsoleLogger struct {
	out     io.Writer
	verbose bool
	color   bool
	mu      sync.Mutex
}

var _ dwhload.Logger = (*ConsoleLogger)(nil)

// NewConsoleLoggerTo creates a ConsoleLogger writing to out.
// If verbose is false, Verbose() calls are no-ops. Prefixes are coloured
// only when color is set and NO_COLOR is unset.
func NewConsoleLoggerTo(out io.Writer, verbose, color bool) *ConsoleLogger {
	color = color && os.Getenv("NO_COLOR") == ""
	return &ConsoleLogger{out: out, verbose: verbose, color: color}
}

// SetOutput redirects subsequent messages to out and returns the previous
// writer.
func (l *ConsoleLogger) SetOutput(out io.Writer) io.Writer {
	l.mu.Lock()
	defer l.mu.Unlock()
	prev := l.out
	l.out = out
	return prev
}

// Verbose logs detailed diagnostic information if verbose mode is enabled.
func (l *ConsoleLogger) Verbose(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.write(l.prefix("[VERBOSE]", verboseStyle), format, args)
}

// Info logs informational messages about normal operations.
func (l *ConsoleLogger) Info(format string, args ...interface{}) {
	l.write("", format, args)
}

// Error logs error messages.
func (l *ConsoleLogger) Error(format string, args ...interface{}) {
	l.write(l.prefix("[ERROR]", errorStyle), format, args)
}

func (l *ConsoleLogger) prefix(tag string, style lipgloss.Style) string {
	if l.color {
		return style.Render(tag) + " "
	}
	return tag + " "
}

func (l *ConsoleLogger) write(prefix, format string, args []interface{}) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.out, prefix+msg+"\n")
}
