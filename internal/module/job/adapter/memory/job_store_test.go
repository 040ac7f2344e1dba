package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinford/pii-redactor/internal/module/job/domain"
	storagedomain "github.com/jinford/pii-redactor/internal/module/storage/domain"
)

func newRecord(jobID string, status domain.Status, method domain.Method) domain.Record {
	return domain.Record{
		JobID:        jobID,
		Status:       status,
		Method:       method,
		Input:        storagedomain.ObjectRef{Bucket: "in", Key: "data.csv"},
		Output:       storagedomain.ObjectRef{Bucket: "out", Key: "processed-data.csv"},
		TargetColumn: "Comments",
		CreatedAt:    time.Now(),
		ExpiresAt:    time.Now().Add(domain.DefaultRetention),
	}
}

func TestJobStore_CreateAndGet(t *testing.T) {
	store := NewJobStore()
	ctx := context.Background()

	record := newRecord("pii-job-1", domain.StatusInProgress, domain.MethodAsyncModel)
	require.NoError(t, store.Create(ctx, record))

	got, err := store.Get(ctx, "pii-job-1")
	require.NoError(t, err)
	assert.Equal(t, record, got)
}

func TestJobStore_Create_Duplicate(t *testing.T) {
	store := NewJobStore()
	ctx := context.Background()

	record := newRecord("pii-job-1", domain.StatusInProgress, domain.MethodAsyncModel)
	require.NoError(t, store.Create(ctx, record))

	err := store.Create(ctx, record)
	assert.ErrorIs(t, err, domain.ErrDuplicateJob)
}

func TestJobStore_Get_NotFound(t *testing.T) {
	store := NewJobStore()

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestJobStore_UpdateStatus(t *testing.T) {
	store := NewJobStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newRecord("pii-job-1", domain.StatusInProgress, domain.MethodAsyncModel)))

	completedAt := time.Now()
	err := store.UpdateStatus(ctx, "pii-job-1", domain.StatusUpdate{
		Status:      domain.StatusCompleted,
		CompletedAt: completedAt,
	})
	require.NoError(t, err)

	got, err := store.Get(ctx, "pii-job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.Equal(t, completedAt, got.CompletedAt)
}

func TestJobStore_UpdateStatus_Terminal(t *testing.T) {
	store := NewJobStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newRecord("pii-job-1", domain.StatusInProgress, domain.MethodAsyncModel)))
	require.NoError(t, store.UpdateStatus(ctx, "pii-job-1", domain.StatusUpdate{Status: domain.StatusFailed, FailureReason: "quota exceeded"}))

	// 終端状態からの再遷移は拒否する
	err := store.UpdateStatus(ctx, "pii-job-1", domain.StatusUpdate{Status: domain.StatusCompleted})
	assert.ErrorIs(t, err, domain.ErrAlreadyTerminal)

	got, err := store.Get(ctx, "pii-job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, got.Status)
	assert.Equal(t, "quota exceeded", got.FailureReason)
}

func TestJobStore_UpdateStatus_NotFound(t *testing.T) {
	store := NewJobStore()

	err := store.UpdateStatus(context.Background(), "missing", domain.StatusUpdate{Status: domain.StatusCompleted})
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestJobStore_ListInProgress(t *testing.T) {
	store := NewJobStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newRecord("async-running", domain.StatusInProgress, domain.MethodAsyncModel)))
	require.NoError(t, store.Create(ctx, newRecord("async-done", domain.StatusCompleted, domain.MethodAsyncModel)))
	// 直接処理のレコードは作成時点で終端だが、方式でも除外されること
	require.NoError(t, store.Create(ctx, newRecord("direct", domain.StatusCompleted, domain.MethodDirectProcessing)))

	records, err := store.ListInProgress(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "async-running", records[0].JobID)
}

func TestJobStore_PurgeExpired(t *testing.T) {
	store := NewJobStore()
	ctx := context.Background()

	expired := newRecord("old", domain.StatusCompleted, domain.MethodAsyncModel)
	expired.ExpiresAt = time.Now().Add(-time.Hour)
	fresh := newRecord("fresh", domain.StatusCompleted, domain.MethodAsyncModel)

	require.NoError(t, store.Create(ctx, expired))
	require.NoError(t, store.Create(ctx, fresh))

	purged, err := store.PurgeExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	_, err = store.Get(ctx, "old")
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
	_, err = store.Get(ctx, "fresh")
	assert.NoError(t, err)
}
