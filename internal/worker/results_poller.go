package worker

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/xteampro/funnel/internal/api"
	"github.com/xteampro/funnel/internal/models"
	"go.uber.org/zap"
)

// User-facing poller failure messages
const (
	MsgAuditNotFound = "Audit not found or failed to process"
	MsgLoadFailed    = "Unable to load audit results. Please try again later."
)

var (
	// ErrAuditNotFound is reported when the status check does not show a live audit
	ErrAuditNotFound = errors.New("audit not found or failed to process")

	// ErrTooManyFailures is reported when consecutive polls keep failing
	ErrTooManyFailures = errors.New("too many consecutive poll failures")
)

// PollPhase is the lifecycle phase of a results poll
type PollPhase string

const (
	PhaseLoading    PollPhase = "LOADING"
	PhaseProcessing PollPhase = "PROCESSING"
	PhaseCompleted  PollPhase = "COMPLETED"
	PhaseFailed     PollPhase = "FAILED"
)

// PollUpdate is one observation delivered to the consumer. Result is set in
// COMPLETED, Err and Message in FAILED.
type PollUpdate struct {
	Phase    PollPhase
	Progress float64
	Result   *models.AuditResult
	Err      error
	Message  string
}

// ResultsFetcher reads audit results and status from the backend
type ResultsFetcher interface {
	AuditResults(ctx context.Context, auditID string) (*models.AuditResult, error)
	AuditStatus(ctx context.Context, auditID string) (*models.AuditStatus, error)
}

// PollerConfig holds results poller configuration
type PollerConfig struct {
	PollInterval     time.Duration // correctness poll, default 5s
	ProgressInterval time.Duration // cosmetic progress tick, default 2s
	MaxIncrement     float64       // largest random progress step, default 15
	ProgressCap      float64       // progress never exceeds this before completion, default 90
	MaxFailures      int           // consecutive failed polls before giving up, default 5
}

// DefaultPollerConfig returns the standard poll timings
func DefaultPollerConfig() PollerConfig {
	return PollerConfig{
		PollInterval:     5 * time.Second,
		ProgressInterval: 2 * time.Second,
		MaxIncrement:     15,
		ProgressCap:      90,
		MaxFailures:      5,
	}
}

// ResultsPoller waits for an audit to finish processing
type ResultsPoller struct {
	fetcher ResultsFetcher
	cfg     PollerConfig
	logger  *zap.Logger
	random  func() float64
}

// NewResultsPoller creates a results poller. Zero config fields take defaults.
func NewResultsPoller(fetcher ResultsFetcher, cfg PollerConfig, logger *zap.Logger) *ResultsPoller {
	def := DefaultPollerConfig()
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = def.ProgressInterval
	}
	if cfg.MaxIncrement <= 0 {
		cfg.MaxIncrement = def.MaxIncrement
	}
	if cfg.ProgressCap <= 0 {
		cfg.ProgressCap = def.ProgressCap
	}
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = def.MaxFailures
	}

	return &ResultsPoller{
		fetcher: fetcher,
		cfg:     cfg,
		logger:  logger,
		random:  rand.Float64,
	}
}

// PollHandle controls one running poll
type PollHandle struct {
	auditID  string
	updates  chan PollUpdate
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// Updates delivers poll observations. It is closed when the poll ends.
func (h *PollHandle) Updates() <-chan PollUpdate {
	return h.updates
}

// Done is closed once the poll goroutine has exited
func (h *PollHandle) Done() <-chan struct{} {
	return h.done
}

// Stop cancels both timers and waits for the poll goroutine to exit. No
// fetch is issued after Stop returns. Safe to call more than once.
func (h *PollHandle) Stop() {
	h.stopOnce.Do(h.cancel)
	<-h.done
}

// Start begins polling for auditID
func (p *ResultsPoller) Start(ctx context.Context, auditID string) *PollHandle {
	ctx, cancel := context.WithCancel(ctx)
	h := &PollHandle{
		auditID: auditID,
		updates: make(chan PollUpdate),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go func() {
		defer close(h.done)
		defer close(h.updates)
		defer cancel()
		p.run(ctx, h)
	}()

	return h
}

func (p *ResultsPoller) emit(ctx context.Context, h *PollHandle, u PollUpdate) bool {
	select {
	case h.updates <- u:
		return true
	case <-ctx.Done():
		return false
	}
}

func (p *ResultsPoller) fail(ctx context.Context, h *PollHandle, progress float64, msg string, err error) {
	p.logger.Warn("Audit results poll failed",
		zap.String("audit_id", h.auditID),
		zap.String("message", msg),
		zap.Error(err))
	p.emit(ctx, h, PollUpdate{Phase: PhaseFailed, Progress: progress, Err: err, Message: msg})
}

func (p *ResultsPoller) complete(ctx context.Context, h *PollHandle, result *models.AuditResult) {
	p.logger.Info("Audit results ready", zap.String("audit_id", h.auditID))
	p.emit(ctx, h, PollUpdate{Phase: PhaseCompleted, Progress: 100, Result: result})
}

func (p *ResultsPoller) run(ctx context.Context, h *PollHandle) {
	if !p.emit(ctx, h, PollUpdate{Phase: PhaseLoading}) {
		return
	}

	result, err := p.fetcher.AuditResults(ctx, h.auditID)
	switch {
	case err == nil:
		p.complete(ctx, h, result)
		return
	case ctx.Err() != nil:
		return
	case !errors.Is(err, api.ErrNotReady):
		p.fail(ctx, h, 0, MsgLoadFailed, fmt.Errorf("failed to fetch audit results: %w", err))
		return
	}

	status, err := p.fetcher.AuditStatus(ctx, h.auditID)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		p.fail(ctx, h, 0, MsgAuditNotFound, fmt.Errorf("%w: %v", ErrAuditNotFound, err))
		return
	}

	switch status.Status {
	case models.AuditStatusProcessing, models.AuditStatusSubmitted:
		p.pollLoop(ctx, h)
	case models.AuditStatusCompleted:
		p.refetch(ctx, h)
	default:
		p.fail(ctx, h, 0, MsgAuditNotFound, fmt.Errorf("%w: status %q", ErrAuditNotFound, status.Status))
	}
}

// refetch handles a status of completed whose results were not served yet
func (p *ResultsPoller) refetch(ctx context.Context, h *PollHandle) {
	result, err := p.fetcher.AuditResults(ctx, h.auditID)
	switch {
	case err == nil:
		p.complete(ctx, h, result)
	case ctx.Err() != nil:
	case errors.Is(err, api.ErrNotReady):
		p.fail(ctx, h, 0, MsgAuditNotFound, fmt.Errorf("%w: results still pending after completion", ErrAuditNotFound))
	default:
		p.fail(ctx, h, 0, MsgLoadFailed, fmt.Errorf("failed to fetch audit results: %w", err))
	}
}

// pollLoop runs the correctness poll and the progress ticker until the
// results arrive or the context ends
func (p *ResultsPoller) pollLoop(ctx context.Context, h *PollHandle) {
	progress := 0.0
	if !p.emit(ctx, h, PollUpdate{Phase: PhaseProcessing, Progress: progress}) {
		return
	}

	p.logger.Debug("Audit still processing, polling",
		zap.String("audit_id", h.auditID),
		zap.Duration("poll_interval", p.cfg.PollInterval))

	pollTicker := time.NewTicker(p.cfg.PollInterval)
	defer pollTicker.Stop()
	progressTicker := time.NewTicker(p.cfg.ProgressInterval)
	defer progressTicker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("Results poll cancelled", zap.String("audit_id", h.auditID))
			return

		case <-progressTicker.C:
			progress += p.random() * p.cfg.MaxIncrement
			if progress > p.cfg.ProgressCap {
				progress = p.cfg.ProgressCap
			}
			if !p.emit(ctx, h, PollUpdate{Phase: PhaseProcessing, Progress: progress}) {
				return
			}

		case <-pollTicker.C:
			result, err := p.fetcher.AuditResults(ctx, h.auditID)
			if err == nil {
				p.complete(ctx, h, result)
				return
			}
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, api.ErrNotReady) {
				failures = 0
				continue
			}

			failures++
			p.logger.Warn("Results poll attempt failed",
				zap.String("audit_id", h.auditID),
				zap.Int("consecutive_failures", failures),
				zap.Error(err))
			if failures >= p.cfg.MaxFailures {
				p.fail(ctx, h, progress, MsgLoadFailed, fmt.Errorf("%w: %v", ErrTooManyFailures, err))
				return
			}
		}
	}
}
