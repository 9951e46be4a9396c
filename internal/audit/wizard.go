// Package audit drives the multi-step audit questionnaire: per-step
// validity, the phase machine and the submission pipeline.
package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/xteampro/funnel/internal/domain/workflow"
	"github.com/xteampro/funnel/internal/models"
	"go.uber.org/zap"
)

// DefaultRedirectDelay is how long the completed view lingers before the results view
const DefaultRedirectDelay = 2 * time.Second

var (
	ErrUnknownStep    = errors.New("unknown step")
	ErrWrongStepKind  = errors.New("step does not accept this kind of answer")
	ErrUnknownOption  = errors.New("not an option of this step")
	ErrNotEditable    = errors.New("wizard is not collecting answers")
	ErrStepIncomplete = errors.New("current step is not answered")
)

// Submitter sends a finished submission request to the backend
type Submitter interface {
	SubmitAudit(ctx context.Context, req *models.AuditSubmissionRequest) (*models.AuditSubmitResponse, error)
}

// Recorder remembers accepted submissions locally
type Recorder interface {
	SaveAudit(ctx context.Context, rec *models.AuditRecord) error
}

// Config holds wizard configuration
type Config struct {
	RedirectDelay time.Duration
}

// View is a snapshot of the wizard. Step is meaningful only in the STEP phase,
// AuditID and RedirectAfter only in COMPLETED, Message only in ERROR.
type View struct {
	Phase         workflow.State
	Step          int
	Total         int
	AuditID       string
	RedirectAfter time.Duration
	Message       string
}

// Percent is the questionnaire progress shown above the current step
func (v View) Percent() float64 {
	if v.Total == 0 {
		return 0
	}
	return float64(v.Step+1) / float64(v.Total) * 100
}

// Wizard owns an audit draft while it is being filled in
type Wizard struct {
	steps     []Step
	submitter Submitter
	recorder  Recorder
	cfg       Config
	logger    *zap.Logger

	mu      sync.Mutex
	machine workflow.StateMachine
	draft   models.AuditDraft
	index   int
	auditID string
	message string
}

// NewWizard creates a wizard positioned on the first step. recorder may be nil.
func NewWizard(submitter Submitter, recorder Recorder, cfg Config, logger *zap.Logger) *Wizard {
	if cfg.RedirectDelay <= 0 {
		cfg.RedirectDelay = DefaultRedirectDelay
	}

	w := &Wizard{
		steps:     DefaultSteps(),
		submitter: submitter,
		recorder:  recorder,
		cfg:       cfg,
		logger:    logger,
	}
	w.machine = w.buildMachine()
	return w
}

func (w *Wizard) buildMachine() workflow.StateMachine {
	valid := func(ctx context.Context) bool { return w.steps[w.index].Valid(&w.draft) }
	last := func() bool { return w.index == len(w.steps)-1 }

	b := workflow.NewBuilder()
	b.Configure(workflow.StateStep).
		PermitIf(workflow.TriggerNext, workflow.StateStep, func(ctx context.Context) bool {
			return valid(ctx) && !last()
		}).
		PermitIf(workflow.TriggerNext, workflow.StateSubmitting, func(ctx context.Context) bool {
			return valid(ctx) && last()
		}).
		PermitIf(workflow.TriggerSubmit, workflow.StateSubmitting, func(ctx context.Context) bool {
			return valid(ctx) && last()
		}).
		Permit(workflow.TriggerPrevious, workflow.StateStep).
		OnEntry(func(ctx context.Context, from workflow.State, trigger workflow.Trigger) {
			switch trigger {
			case workflow.TriggerNext:
				w.index++
			case workflow.TriggerPrevious:
				if w.index > 0 {
					w.index--
				}
			case workflow.TriggerDismiss:
				w.index = len(w.steps) - 1
			}
		})

	b.Configure(workflow.StateSubmitting).
		Permit(workflow.TriggerSucceed, workflow.StateCompleted).
		Permit(workflow.TriggerFail, workflow.StateError)

	b.Configure(workflow.StateError).
		Permit(workflow.TriggerDismiss, workflow.StateStep)

	return b.Build(workflow.StateStep)
}

// Steps returns the questionnaire
func (w *Wizard) Steps() []Step {
	return w.steps
}

// View returns the current snapshot
func (w *Wizard) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.viewLocked()
}

func (w *Wizard) viewLocked() View {
	v := View{
		Phase: w.machine.State(),
		Step:  w.index,
		Total: len(w.steps),
	}
	switch v.Phase {
	case workflow.StateCompleted:
		v.AuditID = w.auditID
		v.RedirectAfter = w.cfg.RedirectDelay
	case workflow.StateError:
		v.Message = w.message
	}
	return v
}

// Current returns the step being shown
func (w *Wizard) Current() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.steps[w.index]
}

// Draft returns a copy of the answers collected so far
func (w *Wizard) Draft() models.AuditDraft {
	w.mu.Lock()
	defer w.mu.Unlock()
	d := w.draft
	d.PainPoints = append([]string(nil), w.draft.PainPoints...)
	d.CurrentSystems = append([]string(nil), w.draft.CurrentSystems...)
	d.KPIs = append([]string(nil), w.draft.KPIs...)
	return d
}

// CanAdvance reports whether "next" is enabled on the current step
func (w *Wizard) CanAdvance(ctx context.Context) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.machine.CanFire(ctx, workflow.TriggerNext)
}

func (w *Wizard) editableStep(id string, kind StepKind) (*Step, error) {
	if w.machine.State() != workflow.StateStep {
		return nil, ErrNotEditable
	}
	for i := range w.steps {
		if w.steps[i].ID == id {
			if w.steps[i].Kind != kind {
				return nil, fmt.Errorf("%w: %s is %s", ErrWrongStepKind, id, w.steps[i].Kind)
			}
			return &w.steps[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownStep, id)
}

// Choose sets the answer of a single-select step
func (w *Wizard) Choose(stepID, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	step, err := w.editableStep(stepID, KindSelect)
	if err != nil {
		return err
	}
	if value != "" && !step.HasOption(value) {
		return fmt.Errorf("%w: %q", ErrUnknownOption, value)
	}

	switch stepID {
	case StepIndustry:
		w.draft.Industry = value
	case StepCompanySize:
		w.draft.CompanySize = value
	}
	return nil
}

// Toggle adds value to a multi-select answer, or removes it when already selected
func (w *Wizard) Toggle(stepID, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	step, err := w.editableStep(stepID, KindMultiSelect)
	if err != nil {
		return err
	}
	if !step.HasOption(value) {
		return fmt.Errorf("%w: %q", ErrUnknownOption, value)
	}

	ref := multiAnswerRef(&w.draft, stepID)
	for i, v := range *ref {
		if v == value {
			*ref = append((*ref)[:i:i], (*ref)[i+1:]...)
			return nil
		}
	}
	*ref = append(*ref, value)
	return nil
}

// Select replaces a multi-select answer
func (w *Wizard) Select(stepID string, values []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	step, err := w.editableStep(stepID, KindMultiSelect)
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !step.HasOption(v) {
			return fmt.Errorf("%w: %q", ErrUnknownOption, v)
		}
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	*multiAnswerRef(&w.draft, stepID) = out
	return nil
}

// SetContact replaces the contact block
func (w *Wizard) SetContact(info models.ContactInfo) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.editableStep(StepContact, KindContact); err != nil {
		return err
	}
	w.draft.ContactInfo = info
	return nil
}

// Next advances one step. On the last step it submits the audit and blocks
// until the backend answers.
func (w *Wizard) Next(ctx context.Context) (View, error) {
	return w.advance(ctx, workflow.TriggerNext)
}

// Submit submits from the last step
func (w *Wizard) Submit(ctx context.Context) (View, error) {
	return w.advance(ctx, workflow.TriggerSubmit)
}

func (w *Wizard) advance(ctx context.Context, trigger workflow.Trigger) (View, error) {
	w.mu.Lock()
	if w.machine.State() != workflow.StateStep {
		v := w.viewLocked()
		w.mu.Unlock()
		return v, ErrNotEditable
	}
	if err := w.machine.Fire(ctx, trigger); err != nil {
		v := w.viewLocked()
		w.mu.Unlock()
		if errors.Is(err, workflow.ErrGuardFailed) {
			return v, fmt.Errorf("%w: %s", ErrStepIncomplete, w.steps[v.Step].ID)
		}
		return v, err
	}
	if w.machine.State() != workflow.StateSubmitting {
		v := w.viewLocked()
		w.mu.Unlock()
		return v, nil
	}
	draft := w.draft
	w.mu.Unlock()

	return w.submit(ctx, &draft)
}

// Previous goes back one step. It is a no-op on the first step.
func (w *Wizard) Previous(ctx context.Context) (View, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.machine.Fire(ctx, workflow.TriggerPrevious); err != nil {
		return w.viewLocked(), ErrNotEditable
	}
	return w.viewLocked(), nil
}

// Dismiss clears a submission error and returns to the last step
func (w *Wizard) Dismiss(ctx context.Context) (View, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.machine.Fire(ctx, workflow.TriggerDismiss); err != nil {
		return w.viewLocked(), err
	}
	w.message = ""
	return w.viewLocked(), nil
}

func (w *Wizard) submit(ctx context.Context, draft *models.AuditDraft) (View, error) {
	req, resp, err := w.send(ctx, draft)

	w.mu.Lock()
	if err != nil {
		w.message = Classify(err)
		if fireErr := w.machine.Fire(ctx, workflow.TriggerFail); fireErr != nil {
			w.logger.Error("Failed to enter error phase", zap.Error(fireErr))
		}
		v := w.viewLocked()
		w.mu.Unlock()

		w.logger.Warn("Audit submission failed",
			zap.String("message", v.Message),
			zap.Error(err))
		return v, err
	}

	w.auditID = resp.AuditID
	w.draft = models.AuditDraft{}
	if fireErr := w.machine.Fire(ctx, workflow.TriggerSucceed); fireErr != nil {
		w.logger.Error("Failed to enter completed phase", zap.Error(fireErr))
	}
	v := w.viewLocked()
	w.mu.Unlock()

	w.logger.Info("Audit submitted",
		zap.String("audit_id", resp.AuditID),
		zap.String("status", resp.Status))

	if w.recorder != nil {
		rec := &models.AuditRecord{
			AuditID:     resp.AuditID,
			CompanyName: req.CompanyName,
			Email:       req.ContactEmail,
			Status:      resp.Status,
			SubmittedAt: time.Now().UTC(),
		}
		if err := w.recorder.SaveAudit(ctx, rec); err != nil {
			w.logger.Warn("Failed to record audit locally",
				zap.String("audit_id", resp.AuditID),
				zap.Error(err))
		}
	}

	return v, nil
}

// send runs validate, transform, re-validate and the HTTP submit in order
func (w *Wizard) send(ctx context.Context, draft *models.AuditDraft) (*models.AuditSubmissionRequest, *models.AuditSubmitResponse, error) {
	if err := ValidateDraft(draft); err != nil {
		return nil, nil, err
	}

	req := Transform(draft)
	if err := ValidateRequest(req); err != nil {
		return nil, nil, err
	}

	w.logger.Debug("Submitting audit",
		zap.String("company_name", req.CompanyName),
		zap.String("industry", req.Industry),
		zap.String("contact_email", strings.ToLower(req.ContactEmail)))

	resp, err := w.submitter.SubmitAudit(ctx, req)
	if err != nil {
		return req, nil, err
	}
	if err := CheckAccepted(resp); err != nil {
		return req, nil, err
	}
	return req, resp, nil
}
