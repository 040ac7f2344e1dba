package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	storagedomain "github.com/jinford/pii-redactor/internal/module/storage/domain"
)

// Status はジョブのライフサイクル状態です
type Status string

const (
	StatusInProgress Status = "InProgress"
	StatusCompleted  Status = "Completed"
	StatusFailed     Status = "Failed"
	StatusStopped    Status = "Stopped"
)

// Terminal はこれ以上状態遷移しない状態かどうかを返します
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusStopped:
		return true
	default:
		return false
	}
}

// Valid は既知の状態かどうかを返します
func (s Status) Valid() bool {
	switch s {
	case StatusInProgress, StatusCompleted, StatusFailed, StatusStopped:
		return true
	default:
		return false
	}
}

// Method はジョブの処理方式です
type Method string

const (
	// MethodAsyncModel はモデルバックエンドへの非同期バッチ投入
	MethodAsyncModel Method = "async_model"

	// MethodDirectProcessing は正規表現によるその場処理（フォールバック）
	MethodDirectProcessing Method = "direct_processing"
)

// DefaultRetention はジョブレコードの保持期間
const DefaultRetention = 30 * 24 * time.Hour

// Record はひとつの処理ジョブの永続レコードです
type Record struct {
	JobID         string
	BackendJobID  string
	Status        Status
	Method        Method
	Input         storagedomain.ObjectRef
	Output        storagedomain.ObjectRef
	TargetColumn  string
	CreatedAt     time.Time
	CompletedAt   time.Time
	FailureReason string
	ExpiresAt     time.Time
}

// NewJobID は衝突しにくいジョブIDを生成します
func NewJobID(now time.Time) string {
	return fmt.Sprintf("pii-job-%d-%s", now.Unix(), uuid.NewString()[:8])
}
