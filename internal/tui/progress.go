package tui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vvka-141/dwhload/pkg/dwhload"
)

type statementStartedMsg struct {
	stmt         dwhload.Statement
	index, total int
}

type statementFinishedMsg struct {
	stmt    dwhload.Statement
	elapsed time.Duration
	err     error
}

type progressDoneMsg struct{}

// progressModel shows finished statements above a spinner for the one in
// flight. Parallel transforms may have several in flight at once.
type progressModel struct {
	spinner  spinner.Model
	running  []string
	finished []string
	done     bool
}

func newProgressModel() progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle
	return progressModel{spinner: s}
}

func statementLabel(stmt dwhload.Statement) string {
	return fmt.Sprintf("%s %s", stmt.Purpose, stmt.Table)
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statementStartedMsg:
		m.running = append(m.running, fmt.Sprintf("%s (%d/%d)", statementLabel(msg.stmt), msg.index+1, msg.total))
		return m, nil

	case statementFinishedMsg:
		label := statementLabel(msg.stmt)
		for i, r := range m.running {
			if strings.HasPrefix(r, label+" (") {
				m.running = append(m.running[:i:i], m.running[i+1:]...)
				break
			}
		}
		elapsed := MutedStyle.Render(msg.elapsed.Round(time.Millisecond).String())
		if msg.err != nil {
			m.finished = append(m.finished, ErrorStyle.Render(SymbolCross+" "+label)+" "+elapsed)
		} else {
			m.finished = append(m.finished, SuccessStyle.Render(SymbolCheck+" "+label)+" "+elapsed)
		}
		return m, nil

	case progressDoneMsg:
		m.done = true
		m.running = nil
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	var b strings.Builder
	for _, line := range m.finished {
		b.WriteString(line + "\n")
	}
	for _, r := range m.running {
		b.WriteString(m.spinner.View() + " " + r + "\n")
	}
	return b.String()
}

// LogSink is a logger whose output can be moved while the view owns the
// terminal. SetOutput returns the previous writer.
type LogSink interface {
	SetOutput(w io.Writer) io.Writer
}

// ProgressObserver renders statement progress with a spinner. The view
// starts with the first statement, so approval prompts shown before it
// keep the terminal to themselves. Safe for concurrent notifications.
type ProgressObserver struct {
	program  *tea.Program
	sink     LogSink
	prevOut  io.Writer
	done     chan struct{}
	started  atomic.Bool
	startOne sync.Once
	stopOnce sync.Once
}

var _ dwhload.Observer = (*ProgressObserver)(nil)

// NewProgressObserver creates a progress view on out. It reads no input,
// so Ctrl+C reaches the process signal handler. While the view runs, sink
// output is printed above it instead of being written to out directly.
// sink may be nil.
func NewProgressObserver(out io.Writer, sink LogSink) *ProgressObserver {
	return &ProgressObserver{
		program: tea.NewProgram(newProgressModel(), tea.WithOutput(out), tea.WithInput(nil)),
		sink:    sink,
		done:    make(chan struct{}),
	}
}

func (p *ProgressObserver) start() {
	p.startOne.Do(func() {
		if p.sink != nil {
			p.prevOut = p.sink.SetOutput(printWriter{p.program})
		}
		p.started.Store(true)
		go func() {
			defer close(p.done)
			_, _ = p.program.Run()
		}()
	})
}

// Stop renders the final state and waits for the view to exit. A view that
// never started is left alone. Idempotent.
func (p *ProgressObserver) Stop() {
	p.stopOnce.Do(func() {
		if !p.started.Load() {
			return
		}
		// Println blocks once the program has exited.
		if p.sink != nil {
			p.sink.SetOutput(p.prevOut)
		}
		p.program.Send(progressDoneMsg{})
		<-p.done
	})
}

func (p *ProgressObserver) StatementStarted(stmt dwhload.Statement, index, total int) {
	p.start()
	p.program.Send(statementStartedMsg{stmt: stmt, index: index, total: total})
}

func (p *ProgressObserver) StatementFinished(stmt dwhload.Statement, elapsed time.Duration, err error) {
	p.program.Send(statementFinishedMsg{stmt: stmt, elapsed: elapsed, err: err})
}

// printWriter prints each write above the running view.
type printWriter struct {
	program *tea.Program
}

func (w printWriter) Write(b []byte) (int, error) {
	w.program.Println(strings.TrimSuffix(string(b), "\n"))
	return len(b), nil
}
