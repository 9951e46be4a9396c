package tui

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xteampro/funnel/internal/audit"
	"github.com/xteampro/funnel/internal/domain/workflow"
	"github.com/xteampro/funnel/internal/models"
	"github.com/xteampro/funnel/internal/worker"
	"go.uber.org/zap"
)

type fakeSubmitter struct {
	mu   sync.Mutex
	reqs []*models.AuditSubmissionRequest
	err  error
}

func (f *fakeSubmitter) SubmitAudit(ctx context.Context, req *models.AuditSubmissionRequest) (*models.AuditSubmitResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return &models.AuditSubmitResponse{AuditID: "a-1", Status: "processing"}, nil
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send feeds msg to the model and returns the updated model and command
func send(t *testing.T, m tea.Model, msg tea.Msg) (WizardModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	wm, ok := next.(WizardModel)
	require.True(t, ok)
	return wm, cmd
}

// findSubmitted runs cmd (and batched commands) until a submittedMsg appears
func findSubmitted(t *testing.T, cmd tea.Cmd) submittedMsg {
	t.Helper()
	require.NotNil(t, cmd)
	switch msg := cmd().(type) {
	case submittedMsg:
		return msg
	case tea.BatchMsg:
		for _, c := range msg {
			if c == nil {
				continue
			}
			if sm, ok := c().(submittedMsg); ok {
				return sm
			}
		}
	}
	t.Fatal("no submission command")
	return submittedMsg{}
}

func typeText(t *testing.T, m WizardModel, text string) WizardModel {
	for _, r := range text {
		m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func fillQuestionnaire(t *testing.T, m WizardModel) WizardModel {
	// industry: first option
	m, _ = send(t, m, key("enter"))
	// company size: second option
	m, _ = send(t, m, key("down"))
	m, _ = send(t, m, key("enter"))
	// pain points, systems and KPIs: first option each
	for i := 0; i < 3; i++ {
		m, _ = send(t, m, key("space"))
		m, _ = send(t, m, key("enter"))
	}
	return m
}

func TestWizardModel_FullFlow(t *testing.T) {
	sub := &fakeSubmitter{}
	wiz := audit.NewWizard(sub, nil, audit.Config{}, zap.NewNop())
	m := NewWizardModel(context.Background(), wiz)

	m = fillQuestionnaire(t, m)
	require.Equal(t, audit.StepContact, wiz.Current().ID)
	assert.Contains(t, m.View(), "Step 6 of 6")

	m = typeText(t, m, "Ada")
	m, _ = send(t, m, key("tab"))
	m = typeText(t, m, "ada@example.com")

	m, cmd := send(t, m, key("ctrl+s"))
	assert.Contains(t, m.View(), "Submitting")

	m, cmd = send(t, m, findSubmitted(t, cmd))
	assert.Equal(t, workflow.StateCompleted, m.view.Phase)
	assert.Equal(t, "a-1", m.AuditID())
	assert.NotNil(t, cmd, "redirect tick is scheduled")
	assert.Contains(t, m.View(), "a-1")

	require.Len(t, sub.reqs, 1)
	req := sub.reqs[0]
	assert.Equal(t, "E-commerce", req.Industry)
	assert.Equal(t, "Small (11-50)", req.CompanySize)
	assert.Equal(t, []string{"Manual processes"}, req.PainPoints)
	assert.Equal(t, "Ada", req.ContactName)
	assert.Equal(t, models.DefaultCompanyName, req.CompanyName)

	_, cmd = send(t, m, redirectMsg{})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestWizardModel_BlocksIncompleteStep(t *testing.T) {
	wiz := audit.NewWizard(&fakeSubmitter{}, nil, audit.Config{}, zap.NewNop())
	m := NewWizardModel(context.Background(), wiz)

	m, _ = send(t, m, key("enter"))
	m, _ = send(t, m, key("enter"))
	// on pain points with nothing toggled
	m, _ = send(t, m, key("enter"))

	assert.Equal(t, audit.StepPainPoints, wiz.Current().ID)
	assert.Contains(t, m.View(), "Please answer this step")

	m, _ = send(t, m, key("b"))
	assert.Equal(t, audit.StepCompanySize, wiz.Current().ID)
	assert.Equal(t, 1, m.view.Step)
}

func TestWizardModel_ErrorAndDismiss(t *testing.T) {
	sub := &fakeSubmitter{}
	wiz := audit.NewWizard(sub, nil, audit.Config{}, zap.NewNop())
	m := NewWizardModel(context.Background(), wiz)

	m = fillQuestionnaire(t, m)
	m, _ = send(t, m, key("tab"))
	m = typeText(t, m, "not@valid")

	m, cmd := send(t, m, key("ctrl+s"))
	m, _ = send(t, m, findSubmitted(t, cmd))

	assert.Equal(t, workflow.StateError, m.view.Phase)
	assert.Contains(t, m.View(), "Valid email is required")
	assert.Empty(t, sub.reqs)

	m, _ = send(t, m, key("enter"))
	assert.Equal(t, workflow.StateStep, m.view.Phase)
	assert.Equal(t, audit.StepContact, wiz.Current().ID)
	assert.Equal(t, "not@valid", wiz.Draft().ContactInfo.Email)
}

func TestWizardModel_QuitIsAbort(t *testing.T) {
	wiz := audit.NewWizard(&fakeSubmitter{}, nil, audit.Config{}, zap.NewNop())
	m := NewWizardModel(context.Background(), wiz)

	m, cmd := send(t, m, key("q"))
	assert.True(t, m.Aborted())
	require.NotNil(t, cmd)
}

func TestResultsModel(t *testing.T) {
	updates := make(chan worker.PollUpdate, 3)
	stopped := false
	m := NewResultsModel("a-1", updates, func() { stopped = true })
	assert.Contains(t, m.View(), "Loading")

	updates <- worker.PollUpdate{Phase: worker.PhaseProcessing, Progress: 30}
	next, cmd := m.Update(waitForUpdate(updates)())
	m = next.(ResultsModel)
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Analyzing")

	result := &models.AuditResult{AuditID: "a-1", CompanyName: "Acme", MaturityScore: 64, Strengths: []string{"CRM"}}
	updates <- worker.PollUpdate{Phase: worker.PhaseCompleted, Progress: 100, Result: result}
	next, _ = m.Update(cmd())
	m = next.(ResultsModel)

	assert.Equal(t, result, m.Result())
	view := m.View()
	assert.Contains(t, view, "Acme")
	assert.Contains(t, view, "64/100")
	assert.True(t, strings.Contains(view, "CRM"))
	assert.False(t, stopped)
}

func TestResultsModel_QuitStopsPoller(t *testing.T) {
	stopped := false
	m := NewResultsModel("a-1", make(chan worker.PollUpdate), func() { stopped = true })

	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.True(t, stopped)
}

func TestResultsModel_Failed(t *testing.T) {
	updates := make(chan worker.PollUpdate, 1)
	updates <- worker.PollUpdate{Phase: worker.PhaseFailed, Message: worker.MsgAuditNotFound}
	m := NewResultsModel("a-1", updates, nil)

	next, _ := m.Update(waitForUpdate(updates)())
	assert.Contains(t, next.View(), worker.MsgAuditNotFound)
	assert.Nil(t, next.(ResultsModel).Result())
}
