package admin

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xteampro/funnel/internal/api"
	"github.com/xteampro/funnel/internal/models"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type memStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemStore() *memStore { return &memStore{data: map[string]string{}} }

func (m *memStore) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type fakeBackend struct {
	tokens       []string
	mu           sync.Mutex
	calls        int32
	dashboardErr error
	contactsErr  error
	lastFilter   api.AuditFilter
	lastPatch    map[string]interface{}
	deleted      string
}

func (f *fakeBackend) seen(token string) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.tokens = append(f.tokens, token)
	f.mu.Unlock()
}

func (f *fakeBackend) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	if password != "secret" {
		return nil, &api.HTTPError{StatusCode: 401, StatusText: "Unauthorized"}
	}
	return &models.LoginResponse{AccessToken: "tok-" + username, TokenType: "bearer"}, nil
}

func (f *fakeBackend) Dashboard(ctx context.Context, token string) (*models.DashboardStats, error) {
	f.seen(token)
	if f.dashboardErr != nil {
		return nil, f.dashboardErr
	}
	return &models.DashboardStats{TotalAudits: 12, ConversionRate: 23.5}, nil
}

func (f *fakeBackend) ListAudits(ctx context.Context, token string, filter api.AuditFilter) ([]models.AuditSubmission, error) {
	f.seen(token)
	f.mu.Lock()
	f.lastFilter = filter
	f.mu.Unlock()
	return []models.AuditSubmission{{AuditID: "a1", Status: "completed"}}, nil
}

func (f *fakeBackend) ListContacts(ctx context.Context, token string) ([]models.ContactInquiry, error) {
	f.seen(token)
	if f.contactsErr != nil {
		return nil, f.contactsErr
	}
	return []models.ContactInquiry{{InquiryID: "c1"}}, nil
}

func (f *fakeBackend) GetConfiguration(ctx context.Context, token string) (*models.AuditConfiguration, error) {
	f.seen(token)
	return &models.AuditConfiguration{AIModel: "gpt-4", AnalysisDepth: "standard"}, nil
}

func (f *fakeBackend) UpdateConfiguration(ctx context.Context, token string, patch map[string]interface{}) error {
	f.seen(token)
	f.lastPatch = patch
	return nil
}

func (f *fakeBackend) DeleteSubmission(ctx context.Context, token, auditID string) error {
	f.seen(token)
	f.deleted = auditID
	return nil
}

func (f *fakeBackend) Export(ctx context.Context, token, format string) ([]byte, error) {
	f.seen(token)
	return []byte("audit_id,score\na1,72\n"), nil
}

func newTestService(b Backend) (*Service, *memStore) {
	store := newMemStore()
	return NewService(b, NewSession(store), zap.NewNop()), store
}

func TestService_RequiresToken(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{}
	svc, _ := newTestService(b)

	_, err := svc.Dashboard(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = svc.LoadAll(ctx, api.AuditFilter{})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.ErrorIs(t, svc.DeleteSubmission(ctx, "a1"), ErrNotAuthenticated)
	_, err = svc.Export(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	assert.Zero(t, atomic.LoadInt32(&b.calls))
}

func TestService_LoginPersistsToken(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{}
	svc, store := newTestService(b)

	require.Error(t, svc.Login(ctx, "admin", "wrong"))
	assert.False(t, svc.Session().Authenticated())

	require.NoError(t, svc.Login(ctx, "admin", "secret"))
	v, ok, _ := store.Get(ctx, TokenKey)
	assert.True(t, ok)
	assert.Equal(t, "tok-admin", v)

	// A fresh session picks the token up from the store
	reloaded := NewSession(store)
	token, err := reloaded.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-admin", token)

	require.NoError(t, svc.Logout(ctx))
	_, ok, _ = store.Get(ctx, TokenKey)
	assert.False(t, ok)
	assert.False(t, svc.Session().Authenticated())
}

func TestService_LoadAll(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{}
	svc, _ := newTestService(b)
	svc.Session().Use("tok")

	snap, err := svc.LoadAll(ctx, api.AuditFilter{Status: "completed", Search: "acme"})
	require.NoError(t, err)

	assert.Equal(t, 12, snap.Stats.TotalAudits)
	assert.Len(t, snap.Submissions, 1)
	assert.Len(t, snap.Contacts, 1)
	assert.Equal(t, "gpt-4", snap.Configuration.AIModel)
	assert.Equal(t, api.AuditFilter{Status: "completed", Search: "acme"}, b.lastFilter)
	assert.Equal(t, int32(4), atomic.LoadInt32(&b.calls))
	for _, tok := range b.tokens {
		assert.Equal(t, "tok", tok)
	}
}

func TestService_LoadAllFailsAsAWhole(t *testing.T) {
	b := &fakeBackend{contactsErr: &api.HTTPError{StatusCode: 500}}
	svc, _ := newTestService(b)
	svc.Session().Use("tok")

	snap, err := svc.LoadAll(context.Background(), api.AuditFilter{})

	assert.Nil(t, snap)
	assert.True(t, api.IsStatus(err, 500))
	assert.Contains(t, err.Error(), "load contacts")
}

func TestService_UnauthorizedClearsSession(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{dashboardErr: &api.HTTPError{StatusCode: 401, StatusText: "Unauthorized"}}
	svc, store := newTestService(b)
	require.NoError(t, svc.Session().Save(ctx, "stale"))

	_, err := svc.Dashboard(ctx)

	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.False(t, svc.Session().Authenticated())
	_, ok, _ := store.Get(ctx, TokenKey)
	assert.False(t, ok)
}

func TestService_Mutations(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{}
	svc, _ := newTestService(b)
	svc.Session().Use("tok")

	require.NoError(t, svc.UpdateConfiguration(ctx, nil))
	assert.Zero(t, atomic.LoadInt32(&b.calls), "empty patch is not sent")

	require.NoError(t, svc.UpdateConfiguration(ctx, map[string]interface{}{"analysis_depth": "comprehensive"}))
	assert.Equal(t, "comprehensive", b.lastPatch["analysis_depth"])

	require.NoError(t, svc.DeleteSubmission(ctx, "a1"))
	assert.Equal(t, "a1", b.deleted)

	data, err := svc.Export(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(data), "a1,72")
}

func TestFilterSubmissions(t *testing.T) {
	subs := []models.AuditSubmission{
		{AuditID: "1", CompanyName: "Acme Corp", Email: "ops@acme.io", Industry: "Retail", Status: "completed"},
		{AuditID: "2", CompanyName: "Globex", Email: "it@globex.com", Industry: "Manufacturing", Status: "processing"},
		{AuditID: "3", CompanyName: "Initech", Email: "bill@initech.com", Industry: "SaaS", Status: "completed"},
	}

	ids := func(in []models.AuditSubmission) []string {
		var out []string
		for _, s := range in {
			out = append(out, s.AuditID)
		}
		return out
	}

	assert.Equal(t, []string{"1", "2", "3"}, ids(FilterSubmissions(subs, api.AuditFilter{Status: "all"})))
	assert.Equal(t, []string{"1", "3"}, ids(FilterSubmissions(subs, api.AuditFilter{Status: "completed"})))
	assert.Equal(t, []string{"2"}, ids(FilterSubmissions(subs, api.AuditFilter{Search: "MANUFACT"})))
	assert.Equal(t, []string{"3"}, ids(FilterSubmissions(subs, api.AuditFilter{Status: "completed", Search: "initech.com"})))
	assert.Empty(t, FilterSubmissions(subs, api.AuditFilter{Search: "nothing"}))
}

func TestCSVToXLSX(t *testing.T) {
	var buf bytes.Buffer
	err := CSVToXLSX([]byte("audit_id,company_name,maturity_score\na1,Acme,72.5\na2,\"Globex, Inc\",n/a\n"), &buf)
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ExportSheet}, f.GetSheetList())

	v, err := f.GetCellValue(ExportSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "audit_id", v)

	v, err = f.GetCellValue(ExportSheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "Globex, Inc", v)

	typ, err := f.GetCellType(ExportSheet, "C2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, typ)

	v, err = f.GetCellValue(ExportSheet, "C3")
	require.NoError(t, err)
	assert.Equal(t, "n/a", v)
}

func TestCSVToXLSX_BadInput(t *testing.T) {
	err := CSVToXLSX([]byte("a,b\n\"unterminated"), &bytes.Buffer{})
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotAuthenticated))
}
