package viz

import (
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/ising/internal/progress"
)

const (
	barWidth     = 50
	permille     = 1000
	tickInterval = time.Second / 10
)

type ProgressMsg struct {
	Done  int64
	Total int64
}

// FinishedMsg ends the display. A nil Err renders the finished state.
type FinishedMsg struct {
	Err error
}

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// ProgressModel shows how many measurements of a sweep have completed.
type ProgressModel struct {
	title    string
	done     int64
	total    int64
	started  time.Time
	now      time.Time
	finished bool
	hidden   bool
	err      error
}

func NewProgressModel(title string, total int64) ProgressModel {
	now := time.Now()
	return ProgressModel{title: title, total: total, started: now, now: now}
}

func (m ProgressModel) Init() tea.Cmd {
	return tick()
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.hidden = true
			return m, tea.Quit
		}
	case ProgressMsg:
		m.done, m.total = msg.Done, msg.Total
	case TickMsg:
		m.now = time.Time(msg)
		if m.finished {
			return m, nil
		}
		return m, tick()
	case FinishedMsg:
		m.finished = true
		m.err = msg.Err
		m.now = time.Now()
		if msg.Err == nil {
			m.done = m.total
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m ProgressModel) Fraction() float64 {
	if m.total <= 0 {
		return 1
	}
	return float64(m.done) / float64(m.total)
}

func (m ProgressModel) Finished() bool { return m.finished }

func (m ProgressModel) View() string {
	if m.hidden {
		return ""
	}

	var status string
	switch {
	case m.err != nil:
		status = StatusFailed.Render("Failed: " + m.err.Error())
	case m.finished:
		status = StatusFinished.Render("Finished!")
	default:
		status = StatusRunning.Render("Running...")
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.title) + "\n\n")
	b.WriteString(ProgressBar(m.Fraction(), barWidth))
	b.WriteString(fmt.Sprintf(" %s\n", MetricValue.Render(fmt.Sprintf("%5.1f%%", 100*m.Fraction()))))
	b.WriteString(MetricLabel.Render("measurements ") + MetricValue.Render(fmt.Sprintf("%d/%d", m.done, m.total)) + "\n")
	b.WriteString(MetricLabel.Render("elapsed      ") + MetricValue.Render(m.now.Sub(m.started).Round(time.Second).String()) + "\n\n")
	b.WriteString(status)
	if !m.finished {
		b.WriteString("\n" + KeyHint.Render("q: hide progress"))
	}
	return PanelStyle.Render(b.String()) + "\n"
}

// Display runs a ProgressModel in its own Bubble Tea program and feeds it
// from a progress observer. Updates are forwarded at most once per permille
// of progress.
type Display struct {
	program *tea.Program
	last    atomic.Int64
	errc    chan error
}

func NewDisplay(title string, total int64, opts ...tea.ProgramOption) *Display {
	d := &Display{
		program: tea.NewProgram(NewProgressModel(title, total), opts...),
		errc:    make(chan error, 1),
	}
	d.last.Store(-1)
	return d
}

// Start runs the program in the background.
func (d *Display) Start() {
	go func() {
		_, err := d.program.Run()
		d.errc <- err
	}()
}

// Observer is called from the progress consumer goroutine only.
func (d *Display) Observer() progress.Observer {
	return func(done, total int64) {
		step := int64(permille)
		if total > 0 {
			step = done * permille / total
		}
		if step == d.last.Load() && done != total {
			return
		}
		d.last.Store(step)
		d.program.Send(ProgressMsg{Done: done, Total: total})
	}
}

// Finish tells the model the sweep is over and waits for the program to exit.
func (d *Display) Finish(err error) error {
	d.program.Send(FinishedMsg{Err: err})
	return <-d.errc
}

// LogProgress returns an observer that logs every `every` measurements and
// on completion.
func LogProgress(logger *slog.Logger, every int64) progress.Observer {
	if every < 1 {
		every = 1
	}
	return func(done, total int64) {
		if done%every == 0 || done == total {
			logger.Info("progress", "done", done, "total", total)
		}
	}
}
