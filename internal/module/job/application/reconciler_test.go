package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinford/pii-redactor/internal/module/job/adapter/memory"
	"github.com/jinford/pii-redactor/internal/module/job/domain"
	storagedomain "github.com/jinford/pii-redactor/internal/module/storage/domain"
)

func seedRecord(t *testing.T, store domain.Store, jobID, backendJobID string, status domain.Status, method domain.Method) {
	t.Helper()
	err := store.Create(context.Background(), domain.Record{
		JobID:        jobID,
		BackendJobID: backendJobID,
		Status:       status,
		Method:       method,
		Input:        storagedomain.ObjectRef{Bucket: "in", Key: "data.csv"},
		Output:       storagedomain.ObjectRef{Bucket: "out", Key: "processed-data.csv"},
		TargetColumn: "Comments",
		CreatedAt:    time.Now(),
	})
	require.NoError(t, err)
}

func TestReconciler_Run_Completed(t *testing.T) {
	store := memory.NewJobStore()
	backend := &fakeBackend{statuses: map[string]domain.StatusReport{
		"batch-1": {Status: domain.StatusCompleted},
	}}
	seedRecord(t, store, "job-1", "batch-1", domain.StatusInProgress, domain.MethodAsyncModel)

	completedAt := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	r := NewReconciler(store, backend, WithReconcilerClock(func() time.Time { return completedAt }))

	counts, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Counts{JobsChecked: 1, JobsUpdated: 1}, counts)

	// 完了の確定前に出力を実体化する
	assert.Equal(t, []string{"job-1"}, backend.materialized)

	record, err := store.Get(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, record.Status)
	assert.Equal(t, completedAt, record.CompletedAt)
}

func TestReconciler_Run_Failed(t *testing.T) {
	store := memory.NewJobStore()
	backend := &fakeBackend{statuses: map[string]domain.StatusReport{
		"batch-1": {Status: domain.StatusFailed, FailureMessage: "quota exceeded"},
	}}
	seedRecord(t, store, "job-1", "batch-1", domain.StatusInProgress, domain.MethodAsyncModel)

	counts, err := NewReconciler(store, backend).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Counts{JobsChecked: 1, JobsUpdated: 1}, counts)

	record, err := store.Get(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, record.Status)
	assert.Equal(t, "quota exceeded", record.FailureReason)
	assert.Empty(t, backend.materialized)
}

func TestReconciler_Run_FailedWithoutMessage(t *testing.T) {
	store := memory.NewJobStore()
	backend := &fakeBackend{statuses: map[string]domain.StatusReport{
		"batch-1": {Status: domain.StatusFailed},
	}}
	seedRecord(t, store, "job-1", "batch-1", domain.StatusInProgress, domain.MethodAsyncModel)

	counts, err := NewReconciler(store, backend).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, counts.JobsUpdated)

	// 理由なしの失敗でもfailureReasonを空にしない
	record, err := store.Get(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, record.Status)
	assert.Equal(t, "Unknown failure", record.FailureReason)
}

// staleStore はListInProgressが方式を問わず返してしまうストアを模倣します
type staleStore struct {
	*memory.JobStore
	stale []domain.Record
}

func (s *staleStore) ListInProgress(_ context.Context) ([]domain.Record, error) {
	return s.stale, nil
}

func TestReconciler_Run_SkipsDirectProcessingRecords(t *testing.T) {
	base := memory.NewJobStore()
	direct := domain.Record{
		JobID:     "direct-1",
		Status:    domain.StatusInProgress,
		Method:    domain.MethodDirectProcessing,
		Input:     storagedomain.ObjectRef{Bucket: "in", Key: "data.csv"},
		CreatedAt: time.Now(),
	}
	require.NoError(t, base.Create(context.Background(), direct))

	store := &staleStore{JobStore: base, stale: []domain.Record{direct}}
	backend := &fakeBackend{statuses: map[string]domain.StatusReport{}}

	counts, err := NewReconciler(store, backend).Run(context.Background())
	require.NoError(t, err)

	// ストアが誤ってInProgressの直接処理レコードを返しても照合対象にしない
	assert.Equal(t, Counts{JobsChecked: 0, JobsUpdated: 0}, counts)
	assert.Equal(t, 0, backend.statusCalls)

	record, err := base.Get(context.Background(), "direct-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, record.Status)
}

func TestReconciler_Run_StillInProgress(t *testing.T) {
	store := memory.NewJobStore()
	backend := &fakeBackend{statuses: map[string]domain.StatusReport{
		"batch-1": {Status: domain.StatusInProgress},
	}}
	seedRecord(t, store, "job-1", "batch-1", domain.StatusInProgress, domain.MethodAsyncModel)

	counts, err := NewReconciler(store, backend).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Counts{JobsChecked: 1, JobsUpdated: 0}, counts)

	record, err := store.Get(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, record.Status)
}

func TestReconciler_Run_SecondPassIsNoop(t *testing.T) {
	store := memory.NewJobStore()
	backend := &fakeBackend{statuses: map[string]domain.StatusReport{
		"batch-1": {Status: domain.StatusCompleted},
	}}
	seedRecord(t, store, "job-1", "batch-1", domain.StatusInProgress, domain.MethodAsyncModel)

	r := NewReconciler(store, backend)

	first, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.JobsUpdated)

	// 終端に達したジョブは2回目のパスでは対象外
	second, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Counts{JobsChecked: 0, JobsUpdated: 0}, second)
}

func TestReconciler_Run_MaterializeFailure(t *testing.T) {
	store := memory.NewJobStore()
	backend := &fakeBackend{
		statuses: map[string]domain.StatusReport{
			"batch-1": {Status: domain.StatusCompleted},
		},
		materialize: func(domain.Record) error { return errors.New("output file missing") },
	}
	seedRecord(t, store, "job-1", "batch-1", domain.StatusInProgress, domain.MethodAsyncModel)

	counts, err := NewReconciler(store, backend).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, counts.JobsUpdated)

	// 出力を確定できなかったジョブは失敗として記録する
	record, err := store.Get(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, record.Status)
	assert.Contains(t, record.FailureReason, "output file missing")
}

func TestReconciler_Run_PerJobErrorIsolation(t *testing.T) {
	store := memory.NewJobStore()
	backend := &fakeBackend{statusErr: errors.New("backend unavailable")}
	seedRecord(t, store, "job-1", "batch-1", domain.StatusInProgress, domain.MethodAsyncModel)
	seedRecord(t, store, "job-2", "batch-2", domain.StatusInProgress, domain.MethodAsyncModel)

	// ジョブ単位の失敗はパス全体を止めない
	counts, err := NewReconciler(store, backend).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Counts{JobsChecked: 2, JobsUpdated: 0}, counts)
}
