package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/xteampro/funnel/internal/models"
	"github.com/xteampro/funnel/internal/worker"
)

type pollMsg worker.PollUpdate

type pollClosedMsg struct{}

// ResultsModel shows the results page while the poller runs
type ResultsModel struct {
	auditID string
	updates <-chan worker.PollUpdate
	stop    func()
	styles  Styles

	spinner spinner.Model
	bar     progress.Model
	last    worker.PollUpdate
	closed  bool
}

// NewResultsModel renders updates for auditID. stop is called when the user
// quits before the poller finishes.
func NewResultsModel(auditID string, updates <-chan worker.PollUpdate, stop func()) ResultsModel {
	return ResultsModel{
		auditID: auditID,
		updates: updates,
		stop:    stop,
		styles:  DefaultStyles(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		last:    worker.PollUpdate{Phase: worker.PhaseLoading},
	}
}

// Result returns the finished audit, nil unless the poller completed
func (m ResultsModel) Result() *models.AuditResult {
	return m.last.Result
}

// Final returns the last update received
func (m ResultsModel) Final() worker.PollUpdate {
	return m.last
}

func waitForUpdate(updates <-chan worker.PollUpdate) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return pollClosedMsg{}
		}
		return pollMsg(u)
	}
}

// Init implements tea.Model
func (m ResultsModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForUpdate(m.updates))
}

// Update implements tea.Model
func (m ResultsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if m.stop != nil {
				m.stop()
			}
			return m, tea.Quit
		}
		return m, nil

	case pollMsg:
		m.last = worker.PollUpdate(msg)
		switch m.last.Phase {
		case worker.PhaseCompleted, worker.PhaseFailed:
			return m, tea.Quit
		}
		return m, waitForUpdate(m.updates)

	case pollClosedMsg:
		m.closed = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.bar.Width = min(msg.Width-4, 60)
		return m, nil
	}
	return m, nil
}

// View implements tea.Model
func (m ResultsModel) View() string {
	s := m.styles
	var b strings.Builder

	switch m.last.Phase {
	case worker.PhaseCompleted:
		return RenderResult(m.last.Result, s)
	case worker.PhaseFailed:
		b.WriteString(s.Error.Render(m.last.Message) + "\n")
		return b.String()
	case worker.PhaseProcessing:
		b.WriteString(s.Title.Render("Analyzing your business processes") + "\n")
		b.WriteString(s.Subtle.Render("Audit "+m.auditID) + "\n\n")
		b.WriteString(m.bar.ViewAs(m.last.Progress/100) + "\n")
		b.WriteString(s.Subtle.Render("This usually takes a few minutes. q: stop waiting") + "\n")
	default:
		b.WriteString(m.spinner.View() + " Loading audit results...\n")
	}
	return b.String()
}
