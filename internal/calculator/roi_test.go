package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xteampro/funnel/internal/api"
	"github.com/xteampro/funnel/internal/models"
	"go.uber.org/zap"
)

type fakeRemote struct {
	calls int
	resp  *models.ROICalculationResponse
	err   error
}

func (f *fakeRemote) CalculateROI(ctx context.Context, req *models.ROICalculationRequest) (*models.ROICalculationResponse, error) {
	f.calls++
	return f.resp, f.err
}

func TestEstimate_Defaults(t *testing.T) {
	got := Estimate(DefaultInput())

	assert.True(t, got.Fallback)
	assert.InDelta(t, 227500, got.CurrentWaste, 0.01)
	assert.InDelta(t, 135000, got.TimeSavings, 0.01)
	assert.InDelta(t, 2000, got.ErrorSavings, 0.01)
	assert.InDelta(t, 137000, got.AnnualSavings, 0.01)
	assert.InDelta(t, 5166.67, got.MonthlyROI, 0.01)
	assert.InDelta(t, 6.5693, got.PaybackPeriod, 0.0001)
	assert.InDelta(t, 448, got.ThreeYearROI, 0.01)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(DefaultInput(), DefaultProfile()))

	in := DefaultInput()
	in.CurrentCosts = 0
	in.ErrorRate = 101
	p := DefaultProfile()
	p.ImplementationTimeline = 37

	err := Validate(in, p)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t,
		"Current costs must be greater than 0, Error rate must be between 0 and 100%, Implementation timeline must be between 1 and 36 months",
		err.Error())
}

func TestValidate_Boundaries(t *testing.T) {
	in := DefaultInput()
	in.TimeSpentOnTasks = 0
	in.ErrorRate = 100
	p := DefaultProfile()
	p.ImplementationTimeline = 36
	p.ExpectedEfficiencyGain = 0
	assert.NoError(t, Validate(in, p))

	p.ImplementationTimeline = 0
	assert.Error(t, Validate(in, p))
}

func TestTransform(t *testing.T) {
	req := Transform(DefaultInput(), DefaultProfile())

	assert.Equal(t, 200000.0, req.AnnualRevenue)
	assert.Equal(t, 15.0, req.MaintenanceBudgetPercentage)
	assert.Len(t, req.CurrentProcesses, 4)
	assert.Len(t, req.ProcessesToAutomate, 4)
	assert.Equal(t, "medium", req.CompanySize)
	assert.Equal(t, "technology", req.Industry)
	assert.Equal(t, 7, req.AutomationReadiness)
	assert.Equal(t, 12, req.ImplementationTimeline)
	assert.Equal(t, "50k-100k", req.BudgetRange)
}

func TestCalculate_RemoteMapping(t *testing.T) {
	remote := &fakeRemote{resp: &models.ROICalculationResponse{
		InitialInvestment:   80000,
		AnnualSavings:       120000,
		ROIPercentage:       350,
		PaybackPeriodMonths: 8,
		NPV3Years:           190000,
		IRRPercentage:       95,
		SavingsBreakdown: map[string]float64{
			"process_efficiency_savings": 90000,
			"error_reduction_savings":    30000,
		},
		AIRecommendations: []string{"Start with invoicing"},
	}}
	calc := New(remote, zap.NewNop())

	got, err := calc.Calculate(context.Background(), DefaultInput(), DefaultProfile())

	require.NoError(t, err)
	assert.False(t, got.Fallback)
	assert.Equal(t, 80000.0, got.CurrentWaste)
	assert.Equal(t, 10000.0, got.MonthlyROI)
	assert.Equal(t, 8.0, got.PaybackPeriod)
	assert.Equal(t, 350.0, got.ThreeYearROI)
	assert.Equal(t, 90000.0, got.TimeSavings)
	assert.Equal(t, 30000.0, got.ErrorSavings)
	require.NotNil(t, got.NPV)
	assert.Equal(t, 190000.0, *got.NPV)
	assert.Equal(t, []string{"Start with invoicing"}, got.Recommendations)
}

func TestCalculate_FallbackOnNetworkError(t *testing.T) {
	netErr := &api.NetworkError{Err: errors.New("connection refused")}
	calc := New(&fakeRemote{err: netErr}, zap.NewNop())

	got, err := calc.Calculate(context.Background(), DefaultInput(), DefaultProfile())

	require.NotNil(t, got, "a projection is always available")
	assert.ErrorIs(t, err, netErr)
	assert.True(t, got.Fallback)
	assert.Equal(t, Estimate(DefaultInput()), got)
}

func TestCalculate_InvalidInputSkipsRemote(t *testing.T) {
	remote := &fakeRemote{}
	calc := New(remote, zap.NewNop())
	in := DefaultInput()
	in.EmployeeCount = 0

	got, err := calc.Calculate(context.Background(), in, DefaultProfile())

	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, remote.calls)
}

func TestCalculate_ThroughClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		var req models.ROICalculationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 200000.0, req.AnnualRevenue)
		http.Error(rw, `{"detail":"calculator offline"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	calc := New(api.NewClient(api.Config{BaseURL: srv.URL}, zap.NewNop()), zap.NewNop())

	got, err := calc.Calculate(context.Background(), DefaultInput(), DefaultProfile())

	assert.True(t, api.IsStatus(err, http.StatusServiceUnavailable))
	require.NotNil(t, got)
	assert.True(t, got.Fallback)
}
