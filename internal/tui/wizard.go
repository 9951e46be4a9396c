package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/xteampro/funnel/internal/audit"
	"github.com/xteampro/funnel/internal/domain/workflow"
	"github.com/xteampro/funnel/internal/models"
)

// Contact inputs, in focus order
const (
	inputName = iota
	inputEmail
	inputCompany
	inputPhone
	inputCount
)

type submittedMsg struct {
	view audit.View
	err  error
}

type redirectMsg struct{}

// WizardModel is the interactive audit questionnaire
type WizardModel struct {
	ctx    context.Context
	wiz    *audit.Wizard
	styles Styles

	cursor     int
	inputs     []textinput.Model
	focus      int
	spinner    spinner.Model
	bar        progress.Model
	submitting bool
	hint       string

	view    audit.View
	auditID string
	aborted bool
}

// NewWizardModel wraps wiz in a bubbletea model. ctx bounds the submission request.
func NewWizardModel(ctx context.Context, wiz *audit.Wizard) WizardModel {
	labels := []string{"Name", "Email (required)", "Company", "Phone"}
	inputs := make([]textinput.Model, inputCount)
	for i := range inputs {
		ti := textinput.New()
		ti.Placeholder = labels[i]
		ti.CharLimit = 200
		ti.Width = 40
		inputs[i] = ti
	}
	inputs[inputName].Focus()

	return WizardModel{
		ctx:     ctx,
		wiz:     wiz,
		styles:  DefaultStyles(),
		inputs:  inputs,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		view:    wiz.View(),
	}
}

// AuditID is set once the audit has been accepted
func (m WizardModel) AuditID() string {
	return m.auditID
}

// Aborted reports whether the user quit before submitting
func (m WizardModel) Aborted() bool {
	return m.aborted
}

// Init implements tea.Model
func (m WizardModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m WizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.aborted = m.auditID == ""
			return m, tea.Quit
		}
		if m.submitting {
			return m, nil
		}
		switch m.view.Phase {
		case workflow.StateError:
			return m.updateError(msg)
		case workflow.StateCompleted:
			if msg.String() == "enter" {
				return m, tea.Quit
			}
			return m, nil
		}
		return m.updateStep(msg)

	case submittedMsg:
		m.submitting = false
		m.view = msg.view
		if msg.view.Phase == workflow.StateCompleted {
			m.auditID = msg.view.AuditID
			return m, tea.Tick(msg.view.RedirectAfter, func(time.Time) tea.Msg { return redirectMsg{} })
		}
		return m, nil

	case redirectMsg:
		return m, tea.Quit

	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.bar.Width = min(msg.Width-4, 60)
		return m, nil
	}

	return m, nil
}

func (m WizardModel) updateError(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		view, _ := m.wiz.Dismiss(m.ctx)
		m.view = view
	}
	return m, nil
}

func (m WizardModel) updateStep(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	step := m.wiz.Current()
	if step.Kind == audit.KindContact {
		return m.updateContact(msg)
	}

	m.hint = ""
	switch msg.String() {
	case "q":
		m.aborted = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(step.Options)-1 {
			m.cursor++
		}
	case " ", "x":
		m.pick(step)
	case "enter":
		if step.Kind == audit.KindSelect {
			m.pick(step)
		}
		return m.next()
	case "left", "b", "esc":
		return m.previous()
	}
	return m, nil
}

func (m *WizardModel) pick(step audit.Step) {
	if len(step.Options) == 0 {
		return
	}
	value := step.Options[m.cursor]
	var err error
	if step.Kind == audit.KindSelect {
		err = m.wiz.Choose(step.ID, value)
	} else {
		err = m.wiz.Toggle(step.ID, value)
	}
	if err != nil {
		m.hint = err.Error()
	}
}

func (m WizardModel) updateContact(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.hint = ""
	switch msg.String() {
	case "tab", "down":
		m.setFocus((m.focus + 1) % inputCount)
		return m, nil
	case "shift+tab", "up":
		m.setFocus((m.focus + inputCount - 1) % inputCount)
		return m, nil
	case "esc":
		return m.previous()
	case "enter":
		if m.focus < inputCount-1 {
			m.setFocus(m.focus + 1)
			return m, nil
		}
		return m.next()
	case "ctrl+s":
		return m.next()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if err := m.wiz.SetContact(m.contactInfo()); err != nil {
		m.hint = err.Error()
	}
	return m, cmd
}

func (m *WizardModel) setFocus(i int) {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
}

func (m WizardModel) contactInfo() models.ContactInfo {
	return models.ContactInfo{
		Name:    m.inputs[inputName].Value(),
		Email:   m.inputs[inputEmail].Value(),
		Company: m.inputs[inputCompany].Value(),
		Phone:   m.inputs[inputPhone].Value(),
	}
}

func (m WizardModel) next() (tea.Model, tea.Cmd) {
	if !m.wiz.CanAdvance(m.ctx) {
		m.hint = "Please answer this step to continue."
		return m, nil
	}

	if m.view.Step < m.view.Total-1 {
		view, err := m.wiz.Next(m.ctx)
		if err != nil && !errors.Is(err, audit.ErrStepIncomplete) {
			m.hint = err.Error()
		}
		m.view = view
		m.cursor = 0
		return m, nil
	}

	m.submitting = true
	wiz, ctx := m.wiz, m.ctx
	submit := func() tea.Msg {
		view, err := wiz.Next(ctx)
		return submittedMsg{view: view, err: err}
	}
	return m, tea.Batch(m.spinner.Tick, submit)
}

func (m WizardModel) previous() (tea.Model, tea.Cmd) {
	view, err := m.wiz.Previous(m.ctx)
	if err == nil {
		m.view = view
		m.cursor = 0
	}
	return m, nil
}

// View implements tea.Model
func (m WizardModel) View() string {
	s := m.styles
	var b strings.Builder

	switch m.view.Phase {
	case workflow.StateCompleted:
		b.WriteString(s.Success.Render("Audit submitted!") + "\n\n")
		b.WriteString("Audit ID: " + m.view.AuditID + "\n")
		b.WriteString(s.Subtle.Render("Opening your results...") + "\n")
		return b.String()
	case workflow.StateError:
		b.WriteString(s.Error.Render(m.view.Message) + "\n\n")
		b.WriteString(s.Subtle.Render("enter: back to the form • ctrl+c: quit") + "\n")
		return b.String()
	}

	if m.submitting {
		return m.spinner.View() + " Submitting your audit...\n"
	}

	step := m.wiz.Current()
	draft := m.wiz.Draft()

	fmt.Fprintf(&b, "%s\n", s.Subtle.Render(fmt.Sprintf("Step %d of %d", m.view.Step+1, m.view.Total)))
	b.WriteString(m.bar.ViewAs(m.view.Percent()/100) + "\n\n")
	b.WriteString(s.Title.Render(step.Title) + "\n")
	if step.Description != "" {
		b.WriteString(s.Subtle.Render(step.Description) + "\n")
	}
	b.WriteString("\n")

	if step.Kind == audit.KindContact {
		for i, in := range m.inputs {
			b.WriteString(in.View())
			if i < len(m.inputs)-1 {
				b.WriteString("\n")
			}
		}
		b.WriteString("\n\n" + s.Subtle.Render("tab: next field • enter on phone or ctrl+s: submit • esc: back"))
	} else {
		selected := selectedSet(step, &draft)
		for i, opt := range step.Options {
			cursor := "  "
			if i == m.cursor {
				cursor = "> "
			}
			mark := "( )"
			if step.Kind == audit.KindMultiSelect {
				mark = "[ ]"
			}
			if selected[opt] {
				mark = strings.Replace(mark, " ", "x", 1)
			}
			line := cursor + mark + " " + opt
			if i == m.cursor {
				line = s.Selected.Render(line)
			}
			b.WriteString(line + "\n")
		}
		help := "↑/↓: move • enter: choose and continue • b: back • q: quit"
		if step.Kind == audit.KindMultiSelect {
			help = "↑/↓: move • space: toggle • enter: continue • b: back • q: quit"
		}
		b.WriteString("\n" + s.Subtle.Render(help))
	}

	if m.hint != "" {
		b.WriteString("\n" + s.Error.Render(m.hint))
	}
	return b.String() + "\n"
}

func selectedSet(step audit.Step, d *models.AuditDraft) map[string]bool {
	out := make(map[string]bool)
	switch step.ID {
	case audit.StepIndustry:
		out[d.Industry] = true
	case audit.StepCompanySize:
		out[d.CompanySize] = true
	case audit.StepPainPoints:
		for _, v := range d.PainPoints {
			out[v] = true
		}
	case audit.StepCurrentSystems:
		for _, v := range d.CurrentSystems {
			out[v] = true
		}
	case audit.StepKPIs:
		for _, v := range d.KPIs {
			out[v] = true
		}
	}
	return out
}
