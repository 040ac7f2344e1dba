package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jinford/pii-redactor/internal/module/job/domain"
)

// JobStore はインメモリのジョブレコードストアです。
// テストおよびローカル実行向けで、プロセスを越えて永続化はしない。
type JobStore struct {
	mu      sync.RWMutex
	records map[string]domain.Record
}

// NewJobStore は空のインメモリストアを作成します
func NewJobStore() *JobStore {
	return &JobStore{
		records: make(map[string]domain.Record),
	}
}

// Create はレコードを登録します
func (s *JobStore) Create(_ context.Context, record domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[record.JobID]; ok {
		return domain.ErrDuplicateJob
	}
	s.records[record.JobID] = record
	return nil
}

// UpdateStatus はInProgressのレコードにのみ状態遷移を適用します
func (s *JobStore) UpdateStatus(_ context.Context, jobID string, update domain.StatusUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[jobID]
	if !ok {
		return domain.ErrJobNotFound
	}
	if record.Status.Terminal() {
		return domain.ErrAlreadyTerminal
	}

	record.Status = update.Status
	record.CompletedAt = update.CompletedAt
	record.FailureReason = update.FailureReason
	s.records[jobID] = record
	return nil
}

// Get はジョブIDでレコードを取得します
func (s *JobStore) Get(_ context.Context, jobID string) (domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[jobID]
	if !ok {
		return domain.Record{}, domain.ErrJobNotFound
	}
	return record, nil
}

// List は全レコードを作成時刻の昇順で返します
func (s *JobStore) List(_ context.Context) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.Record, 0, len(s.records))
	for _, record := range s.records {
		records = append(records, record)
	}
	sortByCreatedAt(records)
	return records, nil
}

// ListInProgress は非同期方式でInProgressのレコードのみを返します
func (s *JobStore) ListInProgress(_ context.Context) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.Record, 0)
	for _, record := range s.records {
		if record.Status == domain.StatusInProgress && record.Method == domain.MethodAsyncModel {
			records = append(records, record)
		}
	}
	sortByCreatedAt(records)
	return records, nil
}

// PurgeExpired は保持期限を過ぎたレコードを削除し、削除件数を返します
func (s *JobStore) PurgeExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	purged := 0
	for id, record := range s.records {
		if !record.ExpiresAt.IsZero() && record.ExpiresAt.Before(now) {
			delete(s.records, id)
			purged++
		}
	}
	return purged, nil
}

func sortByCreatedAt(records []domain.Record) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
}

// インターフェース実装の確認
var _ domain.Store = (*JobStore)(nil)
