package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrJobNotFound は対象のジョブレコードが存在しない場合のエラー
	ErrJobNotFound = errors.New("job record not found")

	// ErrDuplicateJob は同じジョブIDのレコードが既に存在する場合のエラー
	ErrDuplicateJob = errors.New("job record already exists")

	// ErrAlreadyTerminal は終端状態のレコードへの状態更新を拒否するエラー
	ErrAlreadyTerminal = errors.New("job record already in terminal status")
)

// StatusUpdate は状態遷移の内容です
type StatusUpdate struct {
	Status        Status
	CompletedAt   time.Time
	FailureReason string
}

// Store はジョブレコードの永続化インターフェースです。
// UpdateStatus は InProgress のレコードに対してのみ適用され、
// 終端状態のレコードには ErrAlreadyTerminal を返す（単調性の保証）。
type Store interface {
	Create(ctx context.Context, record Record) error
	UpdateStatus(ctx context.Context, jobID string, update StatusUpdate) error
	Get(ctx context.Context, jobID string) (Record, error)
	List(ctx context.Context) ([]Record, error)
	ListInProgress(ctx context.Context) ([]Record, error)
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}
