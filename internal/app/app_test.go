package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mufti/internal/core/domain"
	"github.com/custodia-labs/mufti/internal/core/ports/driving"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))
}

func TestOpen_MemoryBackend(t *testing.T) {
	a, err := Open(Options{ConfigDir: t.TempDir(), Storage: domain.StorageMemory})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	ctx := context.Background()
	require.NoError(t, a.Categories.Save(ctx, &domain.Category{ID: 1, Title: "الزكاة", IsActive: true}))
	_, err = a.Fatwas.Create(ctx, &domain.Fatwa{
		ID:              10,
		TitlePrimary:    "زكاة الذهب",
		QuestionPrimary: "هل في الذهب زكاة؟",
		AnswerPrimary:   "نعم",
		Category:        "الزكاة",
	}, driving.WriteOptions{})
	require.NoError(t, err)

	result, err := a.Search.Search(ctx, "الذهب", domain.SearchOptions{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, domain.TierText, result.Tier)
	require.Len(t, result.Items, 1)
	assert.Equal(t, int64(10), result.Items[0].Fatwa.ID)

	assert.Nil(t, a.Scheduler(), "no oracle means no backfill")
}

func TestOpen_SQLiteBackend(t *testing.T) {
	dataDir := t.TempDir()
	a, err := Open(Options{ConfigDir: t.TempDir(), DataDir: dataDir})
	require.NoError(t, err)

	assert.Equal(t, domain.StorageSQLite, a.Current().Storage.Backend)
	assert.FileExists(t, filepath.Join(dataDir, "mufti.db"))
	assert.NoError(t, a.Close())
}

func TestOpen_InvalidBackend(t *testing.T) {
	_, err := Open(Options{ConfigDir: t.TempDir(), Storage: "postgres"})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestOpen_ReadsSettings(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[storage]
backend = "memory"

[oracle]
base_url = "http://127.0.0.1:1"
backfill_interval = "30m"

[search]
oracle_limit = 250
`)

	a, err := Open(Options{ConfigDir: dir})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.Equal(t, domain.StorageMemory, a.Current().Storage.Backend)
	assert.Equal(t, 250, a.Search.Tuning().OracleLimit)
	scheduler := a.Scheduler()
	require.NotNil(t, scheduler)
	assert.Equal(t, 30*time.Minute, scheduler.Task().Interval)
}

func TestReload_AppliesSearchTuning(t *testing.T) {
	dir := t.TempDir()
	a, err := Open(Options{ConfigDir: dir, Storage: domain.StorageMemory})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	writeConfig(t, dir, `
[search]
oracle_limit = 50
store_timeout_ms = 750
`)
	require.NoError(t, a.Config.Load())
	require.NoError(t, a.Reload())

	tuning := a.Search.Tuning()
	assert.Equal(t, 50, tuning.OracleLimit)
	assert.Equal(t, 750*time.Millisecond, tuning.StoreTimeout)
	assert.Equal(t, domain.StorageMemory, a.Current().Storage.Backend, "storage override survives reload")
}

func TestWatchConfig_StopsOnCancel(t *testing.T) {
	a, err := Open(Options{ConfigDir: t.TempDir(), Storage: domain.StorageMemory})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.WatchConfig(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
