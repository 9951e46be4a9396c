package sandbox

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/xteampro/funnel/internal/models"
	"go.uber.org/zap"
)

// FailMarker in a company name makes the scorer fail the audit, so clients
// can exercise the failed-status path.
const FailMarker = "[fail]"

// Scorer is a background worker that completes due audits with fixture
// results
type Scorer struct {
	state    *State
	interval time.Duration
	logger   *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScorer creates a scorer that checks for due audits every interval
func NewScorer(state *State, interval time.Duration, logger *zap.Logger) *Scorer {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &Scorer{state: state, interval: interval, logger: logger}
}

// Name implements worker.Worker
func (s *Scorer) Name() string {
	return "audit-scorer"
}

// Start implements worker.Worker
func (s *Scorer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return fmt.Errorf("%s already started", s.Name())
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx, s.done)
	return nil
}

// Stop implements worker.Worker and waits for the loop to exit
func (s *Scorer) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Scorer) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.ScoreDue()
		}
	}
}

// ScoreDue completes every audit whose processing delay has passed and
// returns how many were handled
func (s *Scorer) ScoreDue() int {
	now := s.state.now()
	handled := 0
	for id, req := range s.state.Due(now) {
		if strings.Contains(strings.ToLower(req.CompanyName), FailMarker) {
			if s.state.Fail(id) {
				handled++
				s.logger.Info("Audit failed", zap.String("audit_id", id))
			}
			continue
		}
		if s.state.Complete(id, Fixture(id, req, now)) {
			handled++
			s.logger.Info("Audit completed", zap.String("audit_id", id))
		}
	}
	return handled
}

// Fixture builds a plausible, deterministic result from the submission.
// It is sample data for local runs, not an assessment.
func Fixture(id string, req models.AuditSubmissionRequest, now time.Time) *models.AuditResult {
	systems := 0
	for _, sys := range req.CurrentProcesses {
		if sys != "None" {
			systems++
		}
	}

	maturity := clamp(30+8*float64(systems)+4*float64(len(req.AutomationGoals)), 0, 100)
	potential := clamp(50+6*float64(len(req.PainPoints)), 0, 95)
	savings := potential * 1500
	cost := 75000.0
	payback := cost / (savings / 12)

	res := &models.AuditResult{
		AuditID:                id,
		CompanyName:            req.CompanyName,
		MaturityScore:          maturity,
		AutomationPotential:    potential,
		ROIProjection:          (savings*3 - cost) / cost * 100,
		ImplementationTimeline: timelineFor(req.CompanySize),
		ProcessScores:          make(map[string]float64),
		EstimatedSavings:       &savings,
		ImplementationCost:     &cost,
		PaybackPeriod:          &payback,
		PDFReportURL:           "/api/audit/download/" + url.PathEscape(id),
		CreatedAt:              now,
		Status:                 models.AuditStatusCompleted,
	}

	for _, sys := range req.CurrentProcesses {
		if sys != "None" {
			res.Strengths = append(res.Strengths, "Existing "+sys+" in place")
		}
	}
	for i, pain := range req.PainPoints {
		res.Weaknesses = append(res.Weaknesses, pain+" slows the team down")
		res.Opportunities = append(res.Opportunities, "Automate "+strings.ToLower(pain))
		res.ProcessScores[pain] = clamp(maturity-float64(i*5), 0, 100)
		if i < 3 {
			res.PriorityAreas = append(res.PriorityAreas, pain)
		}
	}
	for _, goal := range req.AutomationGoals {
		res.Recommendations = append(res.Recommendations, "Track "+strings.ToLower(goal)+" monthly after rollout")
	}
	return res
}

func timelineFor(size string) string {
	switch {
	case strings.HasPrefix(size, "Startup"):
		return "1-2 months"
	case strings.HasPrefix(size, "Small"):
		return "2-3 months"
	case strings.HasPrefix(size, "Medium"):
		return "3-6 months"
	default:
		return "6-12 months"
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
