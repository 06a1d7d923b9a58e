package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/balkashynov/sensorset/internal/logging"
)

// ClassSummary describes the outcome of building one class dataset
type ClassSummary struct {
	Label      string
	Sessions   int
	Rows       int
	OutputPath string
	Skipped    bool // class folder had no sessions
}

// BuildFunc aggregates one class. Notices go to log.
type BuildFunc func(ctx context.Context, label string, log *logging.Logger) (ClassSummary, error)

// classDoneMsg is sent when a class finishes building
type classDoneMsg struct {
	index   int
	summary ClassSummary
	err     error
}

// noticeMsg carries one log line from the running build
type noticeMsg string

const maxNotices = 6

// BuildModel shows progress while classes are aggregated one after another
type BuildModel struct {
	ctx    context.Context
	cancel context.CancelFunc
	labels []string
	build  BuildFunc
	log    *logging.Logger

	spinner spinner.Model
	current int
	done    []ClassSummary
	notices []string

	running    bool // a build command is in flight
	cancelling bool
	err        error
	finished   bool
}

// NewBuildModel creates a build progress model. cancel is called when the
// user quits early.
func NewBuildModel(ctx context.Context, cancel context.CancelFunc, labels []string, build BuildFunc, log *logging.Logger) BuildModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))

	return BuildModel{
		ctx:     ctx,
		cancel:  cancel,
		labels:  labels,
		build:   build,
		log:     log,
		spinner: s,
		running: len(labels) > 0,
	}
}

// Init starts the spinner and the first class
func (m BuildModel) Init() tea.Cmd {
	if len(m.labels) == 0 {
		return tea.Quit
	}
	return tea.Batch(m.spinner.Tick, m.runClass(0))
}

func (m BuildModel) runClass(i int) tea.Cmd {
	ctx, build, log, label := m.ctx, m.build, m.log, m.labels[i]
	return func() tea.Msg {
		summary, err := build(ctx, label, log)
		return classDoneMsg{index: i, summary: summary, err: err}
	}
}

// Update handles messages
func (m BuildModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case classDoneMsg:
		m.running = false
		if msg.err != nil {
			m.err = msg.err
			if m.cancelling {
				m.err = context.Canceled
			}
			m.finished = true
			return m, tea.Quit
		}
		m.done = append(m.done, msg.summary)
		m.current = msg.index + 1
		if m.cancelling {
			m.err = context.Canceled
			m.finished = true
			return m, tea.Quit
		}
		if m.current >= len(m.labels) {
			m.finished = true
			return m, tea.Quit
		}
		m.running = true
		return m, m.runClass(m.current)

	case noticeMsg:
		m.notices = append(m.notices, string(msg))
		if len(m.notices) > maxNotices {
			m.notices = m.notices[len(m.notices)-maxNotices:]
		}
		return m, nil

	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			if m.cancel != nil {
				m.cancel()
			}
			// Quit only once the running class has returned
			if m.running {
				m.cancelling = true
				return m, nil
			}
			m.err = context.Canceled
			m.finished = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders finished classes, the class in progress and recent notices
func (m BuildModel) View() string {
	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentMain)).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText)).Bold(true).Width(8)
	detailStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDisabledText))
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWarning))
	noticeBox := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(lipgloss.Color(ColorBorder)).
		PaddingLeft(1)
	okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSuccess))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError)).Bold(true)

	var b strings.Builder
	b.WriteString(headerStyle.Render("sensorset build"))
	b.WriteString("\n")

	for _, s := range m.done {
		if s.Skipped {
			b.WriteString(fmt.Sprintf("%s %s %s\n", mutedStyle.Render("–"), labelStyle.Render(s.Label), mutedStyle.Render("no sessions")))
			continue
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n",
			okStyle.Render("✓"),
			labelStyle.Render(s.Label),
			detailStyle.Render(fmt.Sprintf("%d sessions  %s rows  → %s", s.Sessions, humanize.Comma(int64(s.Rows)), s.OutputPath)),
		))
	}

	switch {
	case m.err != nil:
		b.WriteString(errStyle.Render(fmt.Sprintf("✗ %v", m.err)))
		b.WriteString("\n")
	case m.cancelling:
		b.WriteString(fmt.Sprintf("%s cancelling %s…\n", m.spinner.View(), m.labels[m.current]))
	case !m.finished && m.current < len(m.labels):
		b.WriteString(fmt.Sprintf("%s aggregating %s…\n", m.spinner.View(), m.labels[m.current]))
	}

	if !m.finished && len(m.notices) > 0 {
		lines := make([]string, len(m.notices))
		for i, n := range m.notices {
			if strings.HasPrefix(n, "[WARN]") || strings.HasPrefix(n, "[ERROR]") {
				lines[i] = warnStyle.Render(n)
			} else {
				lines[i] = mutedStyle.Render(n)
			}
		}
		b.WriteString(noticeBox.Render(strings.Join(lines, "\n")))
		b.WriteString("\n")
	}
	return b.String()
}

// Summaries returns the classes built so far
func (m BuildModel) Summaries() []ClassSummary {
	return m.done
}

// Err returns the error that stopped the build, if any
func (m BuildModel) Err() error {
	return m.err
}
