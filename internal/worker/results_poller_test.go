package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xteampro/funnel/internal/api"
	"github.com/xteampro/funnel/internal/models"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

// fakeFetcher serves scripted results. resultsFn receives the 1-based call number.
type fakeFetcher struct {
	mu           sync.Mutex
	resultsCalls int
	statusCalls  int
	resultsFn    func(call int) (*models.AuditResult, error)
	status       *models.AuditStatus
	statusErr    error
}

func (f *fakeFetcher) AuditResults(ctx context.Context, auditID string) (*models.AuditResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resultsCalls++
	return f.resultsFn(f.resultsCalls)
}

func (f *fakeFetcher) AuditStatus(ctx context.Context, auditID string) (*models.AuditStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	return f.status, f.statusErr
}

func (f *fakeFetcher) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resultsCalls, f.statusCalls
}

func readyAfter(n int) func(int) (*models.AuditResult, error) {
	return func(call int) (*models.AuditResult, error) {
		if call > n {
			return &models.AuditResult{AuditID: "a1", MaturityScore: 72, Status: "completed"}, nil
		}
		return nil, api.ErrNotReady
	}
}

func fastConfig() PollerConfig {
	return PollerConfig{
		PollInterval:     20 * time.Millisecond,
		ProgressInterval: 5 * time.Millisecond,
	}
}

func collect(t *testing.T, h *PollHandle) []PollUpdate {
	t.Helper()
	var out []PollUpdate
	timeout := time.After(5 * time.Second)
	for {
		select {
		case u, ok := <-h.Updates():
			if !ok {
				return out
			}
			out = append(out, u)
		case <-timeout:
			t.Fatal("poller did not finish")
		}
	}
}

func TestResultsPoller_ImmediateResult(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := &fakeFetcher{resultsFn: readyAfter(0)}
	p := NewResultsPoller(f, fastConfig(), zap.NewNop())

	updates := collect(t, p.Start(context.Background(), "a1"))

	require.Len(t, updates, 2)
	assert.Equal(t, PhaseLoading, updates[0].Phase)
	assert.Equal(t, PhaseCompleted, updates[1].Phase)
	assert.Equal(t, 100.0, updates[1].Progress)
	assert.Equal(t, 72.0, updates[1].Result.MaturityScore)

	_, statusCalls := f.calls()
	assert.Zero(t, statusCalls, "status is only consulted on 202")
}

func TestResultsPoller_ProcessingThenReady(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := &fakeFetcher{
		resultsFn: readyAfter(3),
		status:    &models.AuditStatus{AuditID: "a1", Status: "processing"},
	}
	p := NewResultsPoller(f, fastConfig(), zap.NewNop())

	updates := collect(t, p.Start(context.Background(), "a1"))

	require.GreaterOrEqual(t, len(updates), 3)
	assert.Equal(t, PhaseLoading, updates[0].Phase)
	assert.Equal(t, PhaseProcessing, updates[1].Phase)

	last := updates[len(updates)-1]
	assert.Equal(t, PhaseCompleted, last.Phase)
	assert.Equal(t, 100.0, last.Progress)
	require.NotNil(t, last.Result)

	prev := 0.0
	for _, u := range updates[1 : len(updates)-1] {
		assert.Equal(t, PhaseProcessing, u.Phase)
		assert.LessOrEqual(t, u.Progress, 90.0)
		assert.GreaterOrEqual(t, u.Progress, prev)
		prev = u.Progress
	}

	resultsCalls, statusCalls := f.calls()
	assert.Equal(t, 4, resultsCalls)
	assert.Equal(t, 1, statusCalls)
}

func TestResultsPoller_ProgressCapsAtNinety(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := &fakeFetcher{
		resultsFn: readyAfter(1 << 30),
		status:    &models.AuditStatus{Status: "processing"},
	}
	cfg := fastConfig()
	cfg.PollInterval = time.Hour
	p := NewResultsPoller(f, cfg, zap.NewNop())
	p.random = func() float64 { return 1 }

	h := p.Start(context.Background(), "a1")
	var got []float64
	for u := range h.Updates() {
		if u.Phase == PhaseProcessing {
			got = append(got, u.Progress)
		}
		if len(got) == 9 {
			break
		}
	}
	h.Stop()

	assert.Equal(t, []float64{0, 15, 30, 45, 60, 75, 90, 90, 90}, got)
}

func TestResultsPoller_TerminalStatuses(t *testing.T) {
	tests := []struct {
		name      string
		status    *models.AuditStatus
		statusErr error
		resultsFn func(int) (*models.AuditResult, error)
		phase     PollPhase
		message   string
		err       error
	}{
		{
			name:      "failed audit",
			status:    &models.AuditStatus{Status: "failed"},
			resultsFn: readyAfter(1 << 30),
			phase:     PhaseFailed,
			message:   MsgAuditNotFound,
			err:       ErrAuditNotFound,
		},
		{
			name:      "status lookup 404",
			statusErr: &api.HTTPError{StatusCode: 404, StatusText: "Not Found"},
			resultsFn: readyAfter(1 << 30),
			phase:     PhaseFailed,
			message:   MsgAuditNotFound,
			err:       ErrAuditNotFound,
		},
		{
			name:      "completed then refetch",
			status:    &models.AuditStatus{Status: "completed"},
			resultsFn: readyAfter(1),
			phase:     PhaseCompleted,
		},
		{
			name:      "completed but still pending",
			status:    &models.AuditStatus{Status: "completed"},
			resultsFn: readyAfter(1 << 30),
			phase:     PhaseFailed,
			message:   MsgAuditNotFound,
			err:       ErrAuditNotFound,
		},
		{
			name: "results 404",
			resultsFn: func(int) (*models.AuditResult, error) {
				return nil, &api.HTTPError{StatusCode: 404, StatusText: "Not Found"}
			},
			phase:   PhaseFailed,
			message: MsgLoadFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer goleak.VerifyNone(t)

			f := &fakeFetcher{resultsFn: tt.resultsFn, status: tt.status, statusErr: tt.statusErr}
			p := NewResultsPoller(f, fastConfig(), zap.NewNop())

			updates := collect(t, p.Start(context.Background(), "a1"))
			require.NotEmpty(t, updates)
			last := updates[len(updates)-1]

			assert.Equal(t, tt.phase, last.Phase)
			assert.Equal(t, tt.message, last.Message)
			if tt.err != nil {
				assert.ErrorIs(t, last.Err, tt.err)
			}
			if tt.phase == PhaseFailed {
				assert.Error(t, last.Err)
			}
		})
	}
}

func TestResultsPoller_GivesUpAfterRepeatedFailures(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := &fakeFetcher{
		resultsFn: func(call int) (*models.AuditResult, error) {
			if call == 1 {
				return nil, api.ErrNotReady
			}
			return nil, &api.NetworkError{Err: errors.New("connection reset")}
		},
		status: &models.AuditStatus{Status: "processing"},
	}
	cfg := fastConfig()
	cfg.MaxFailures = 3
	p := NewResultsPoller(f, cfg, zap.NewNop())

	updates := collect(t, p.Start(context.Background(), "a1"))
	last := updates[len(updates)-1]

	assert.Equal(t, PhaseFailed, last.Phase)
	assert.ErrorIs(t, last.Err, ErrTooManyFailures)
	resultsCalls, _ := f.calls()
	assert.Equal(t, 4, resultsCalls)
}

func TestResultsPoller_StopHaltsFetching(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := &fakeFetcher{
		resultsFn: readyAfter(1 << 30),
		status:    &models.AuditStatus{Status: "processing"},
	}
	cfg := fastConfig()
	cfg.PollInterval = 2 * time.Millisecond
	p := NewResultsPoller(f, cfg, zap.NewNop())

	h := p.Start(context.Background(), "a1")
	go func() {
		for range h.Updates() {
		}
	}()
	time.Sleep(30 * time.Millisecond)

	h.Stop()
	before, _ := f.calls()
	time.Sleep(30 * time.Millisecond)
	after, _ := f.calls()

	assert.Equal(t, before, after, "no fetch after Stop returns")
	assert.Greater(t, before, 1)

	select {
	case <-h.Done():
	default:
		t.Fatal("Done should be closed after Stop")
	}
	h.Stop()
}

func TestResultsPoller_ParentContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := &fakeFetcher{
		resultsFn: readyAfter(1 << 30),
		status:    &models.AuditStatus{Status: "submitted"},
	}
	p := NewResultsPoller(f, fastConfig(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	h := p.Start(ctx, "a1")
	<-h.Updates()
	cancel()

	collect(t, h)
	<-h.Done()
}
