package domain

import (
	"context"

	storagedomain "github.com/jinford/pii-redactor/internal/module/storage/domain"
)

// JobConfig は非同期バッチジョブの投入内容です
type JobConfig struct {
	JobID        string
	Input        storagedomain.ObjectRef
	Output       storagedomain.ObjectRef
	TargetColumn string
}

// StatusReport はバックエンドから取得したジョブの現況です
type StatusReport struct {
	Status         Status
	FailureMessage string
}

// BatchBackend は非同期バッチ処理のモデルバックエンドです。
// CreateJob はバックエンド側のジョブIDを返す。
// MaterializeOutput は完了済みジョブの出力をオブジェクトストアへ書き出す。
type BatchBackend interface {
	CreateJob(ctx context.Context, cfg JobConfig) (string, error)
	GetJobStatus(ctx context.Context, backendJobID string) (StatusReport, error)
	MaterializeOutput(ctx context.Context, record Record) error
}
