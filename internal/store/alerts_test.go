package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gighunt-engine/internal/domain"
	"gighunt-engine/internal/store"
)

func openDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "data", "gighunt.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func scored(fp string, rec, diff int) domain.ScoredPosting {
	return domain.ScoredPosting{
		Posting:     domain.Posting{Source: domain.SourceUpwork, Title: "t-" + fp, Link: "https://example.com/" + fp, BudgetText: "$100"},
		Fingerprint: fp,
		Classification: domain.ClassificationResult{
			IsEasy:   true,
			Template: &domain.Template{Key: "csv_script", Name: "CSV script"},
			Origin:   domain.OriginRules,
		},
		Score: domain.ScoreResult{Recommendation: rec, Difficulty: diff},
	}
}

func TestInsertAlertIgnore_DedupesOnFingerprint(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	now := time.Now()

	ok, err := store.InsertAlertIgnore(ctx, db.Pool, store.AlertFromScored(scored("a", 4, 1), true, now))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.InsertAlertIgnore(ctx, db.Pool, store.AlertFromScored(scored("a", 5, 1), false, now))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.InsertAlertIgnore(ctx, db.Pool, store.Alert{})
	assert.Error(t, err)

	got, err := store.ListAlerts(ctx, db.Pool, store.ListAlertsOpts{Window: "all"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 4, got[0].Recommendation)
	assert.True(t, got[0].Notified)
	assert.Equal(t, "csv_script", got[0].TemplateKey)
	assert.Equal(t, "rules", got[0].Origin)
	assert.WithinDuration(t, now, got[0].CreatedAt, 2*time.Second)
}

func TestListAlerts_SortAndWindow(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	now := time.Now()

	for _, a := range []store.Alert{
		store.AlertFromScored(scored("old", 5, 1), true, now.Add(-10*24*time.Hour)),
		store.AlertFromScored(scored("mid", 3, 2), true, now.Add(-2*time.Hour)),
		store.AlertFromScored(scored("new", 4, 1), true, now),
	} {
		_, err := store.InsertAlertIgnore(ctx, db.Pool, a)
		require.NoError(t, err)
	}

	fps := func(as []store.Alert) []string {
		var out []string
		for _, a := range as {
			out = append(out, a.Fingerprint)
		}
		return out
	}

	got, err := store.ListAlerts(ctx, db.Pool, store.ListAlertsOpts{})
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "mid"}, fps(got), "default window is 7d, newest first")

	got, err = store.ListAlerts(ctx, db.Pool, store.ListAlertsOpts{Window: "all", Sort: "recommendation"})
	require.NoError(t, err)
	assert.Equal(t, []string{"old", "new", "mid"}, fps(got))

	got, err = store.ListAlerts(ctx, db.Pool, store.ListAlertsOpts{Window: "all", Limit: 1, Sort: "bogus; DROP TABLE alerts"})
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, fps(got))
}

func TestCleanupOldAlerts(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	now := time.Now()

	_, _ = store.InsertAlertIgnore(ctx, db.Pool, store.AlertFromScored(scored("ancient", 3, 3), true, now.Add(-100*24*time.Hour)))
	_, _ = store.InsertAlertIgnore(ctx, db.Pool, store.AlertFromScored(scored("recent", 3, 3), true, now.Add(-24*time.Hour)))

	n, err := store.CleanupOldAlerts(ctx, db.Pool, 0, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := store.ListAlerts(ctx, db.Pool, store.ListAlertsOpts{Window: "all"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "recent", got[0].Fingerprint)
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openDB(t)
	require.NoError(t, store.Migrate(db.Pool))
	require.NoError(t, store.Migrate(db.Pool))
}
