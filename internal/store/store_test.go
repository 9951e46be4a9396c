package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xteampro/funnel/internal/models"
	"github.com/xteampro/funnel/pkg/database"
	"go.uber.org/zap"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), database.MemoryPath, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_KeyValue(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, ok, err := s.Get(ctx, KeyAdminToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, KeyAdminToken, "tok-1"))
	require.NoError(t, s.Set(ctx, KeyAdminToken, "tok-2"))

	v, ok, err := s.Get(ctx, KeyAdminToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok-2", v)

	require.NoError(t, s.Delete(ctx, KeyAdminToken))
	require.NoError(t, s.Delete(ctx, KeyAdminToken))
	_, ok, err = s.Get(ctx, KeyAdminToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_AuditHistory(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveAudit(ctx, &models.AuditRecord{
		AuditID: "old", CompanyName: "Acme", Email: "a@acme.io", Status: "processing", SubmittedAt: base,
	}))
	require.NoError(t, s.SaveAudit(ctx, &models.AuditRecord{
		AuditID: "new", CompanyName: "Not specified", Email: "b@b.io", Status: "submitted", SubmittedAt: base.Add(time.Hour),
	}))

	list, err := s.ListAudits(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].AuditID)
	assert.Equal(t, "old", list[1].AuditID)
	assert.True(t, base.Equal(list[1].SubmittedAt))

	require.NoError(t, s.UpdateAuditStatus(ctx, "old", "completed"))
	rec, err := s.GetAudit(ctx, "old")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "completed", rec.Status)

	rec, err = s.GetAudit(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, rec)

	list, err = s.ListAudits(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "xteam", "state.db")

	s, err := Open(ctx, path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, KeyLanguage, "uk"))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path, zap.NewNop())
	require.NoError(t, err)
	defer s.Close()

	v, ok, err := s.Get(ctx, KeyLanguage)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "uk", v)
}
