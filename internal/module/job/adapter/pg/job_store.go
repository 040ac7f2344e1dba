package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jinford/pii-redactor/internal/module/job/domain"
	storagedomain "github.com/jinford/pii-redactor/internal/module/storage/domain"
	"github.com/jinford/pii-redactor/pkg/db"
)

// uniqueViolationCode はPostgreSQLの一意制約違反のエラーコード
const uniqueViolationCode = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS job_records (
    job_id         TEXT PRIMARY KEY,
    backend_job_id TEXT NOT NULL DEFAULT '',
    status         TEXT NOT NULL,
    method         TEXT NOT NULL,
    input_bucket   TEXT NOT NULL,
    input_key      TEXT NOT NULL,
    output_bucket  TEXT NOT NULL DEFAULT '',
    output_key     TEXT NOT NULL DEFAULT '',
    target_column  TEXT NOT NULL,
    created_at     TIMESTAMPTZ NOT NULL,
    completed_at   TIMESTAMPTZ,
    failure_reason TEXT NOT NULL DEFAULT '',
    expires_at     TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_job_records_status ON job_records (status);
`

// JobStore はPostgreSQLを使ったジョブレコードストアです
type JobStore struct {
	db *db.DB
}

// NewJobStore はJobStoreを作成します
func NewJobStore(database *db.DB) *JobStore {
	return &JobStore{db: database}
}

// EnsureSchema はテーブルとインデックスを作成します（存在すれば何もしない）
func (s *JobStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure job_records schema: %w", err)
	}
	return nil
}

// Create はレコードを登録します
func (s *JobStore) Create(ctx context.Context, record domain.Record) error {
	query := `
		INSERT INTO job_records (
			job_id, backend_job_id, status, method,
			input_bucket, input_key, output_bucket, output_key,
			target_column, created_at, completed_at, failure_reason, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := s.db.Pool.Exec(ctx, query,
		record.JobID,
		record.BackendJobID,
		string(record.Status),
		string(record.Method),
		record.Input.Bucket,
		record.Input.Key,
		record.Output.Bucket,
		record.Output.Key,
		record.TargetColumn,
		record.CreatedAt,
		nullableTime(record.CompletedAt),
		record.FailureReason,
		nullableTime(record.ExpiresAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateJob
		}
		return fmt.Errorf("failed to insert job record: %w", err)
	}
	return nil
}

// UpdateStatus はInProgressのレコードにのみ状態遷移を適用します。
// WHERE句で現在状態を固定することで、並行する遷移があっても単調性を保つ。
func (s *JobStore) UpdateStatus(ctx context.Context, jobID string, update domain.StatusUpdate) error {
	query := `
		UPDATE job_records
		SET status = $2, completed_at = $3, failure_reason = $4
		WHERE job_id = $1 AND status = $5
	`

	tag, err := s.db.Pool.Exec(ctx, query,
		jobID,
		string(update.Status),
		nullableTime(update.CompletedAt),
		update.FailureReason,
		string(domain.StatusInProgress),
	)
	if err != nil {
		return fmt.Errorf("failed to update job record status: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// 更新できなかった理由を区別する
	var exists bool
	if err := s.db.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM job_records WHERE job_id = $1)`, jobID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check job record existence: %w", err)
	}
	if !exists {
		return domain.ErrJobNotFound
	}
	return domain.ErrAlreadyTerminal
}

// Get はジョブIDでレコードを取得します
func (s *JobStore) Get(ctx context.Context, jobID string) (domain.Record, error) {
	query := selectColumns + ` WHERE job_id = $1`

	record, err := scanRecord(s.db.Pool.QueryRow(ctx, query, jobID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Record{}, domain.ErrJobNotFound
		}
		return domain.Record{}, fmt.Errorf("failed to get job record: %w", err)
	}
	return record, nil
}

// List は全レコードを作成時刻の昇順で返します
func (s *JobStore) List(ctx context.Context) ([]domain.Record, error) {
	query := selectColumns + ` ORDER BY created_at ASC`

	rows, err := s.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list job records: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// ListInProgress は非同期方式でInProgressのレコードのみを返します
func (s *JobStore) ListInProgress(ctx context.Context) ([]domain.Record, error) {
	query := selectColumns + ` WHERE status = $1 AND method = $2 ORDER BY created_at ASC`

	rows, err := s.db.Pool.Query(ctx, query, string(domain.StatusInProgress), string(domain.MethodAsyncModel))
	if err != nil {
		return nil, fmt.Errorf("failed to list in-progress job records: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// PurgeExpired は保持期限を過ぎたレコードを削除し、削除件数を返します
func (s *JobStore) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	tag, err := s.db.Pool.Exec(ctx, `DELETE FROM job_records WHERE expires_at IS NOT NULL AND expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired job records: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

const selectColumns = `
	SELECT job_id, backend_job_id, status, method,
	       input_bucket, input_key, output_bucket, output_key,
	       target_column, created_at, completed_at, failure_reason, expires_at
	FROM job_records
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (domain.Record, error) {
	var (
		record       domain.Record
		status       string
		method       string
		inputBucket  string
		inputKey     string
		outputBucket string
		outputKey    string
		completedAt  *time.Time
		expiresAt    *time.Time
	)

	err := row.Scan(
		&record.JobID,
		&record.BackendJobID,
		&status,
		&method,
		&inputBucket,
		&inputKey,
		&outputBucket,
		&outputKey,
		&record.TargetColumn,
		&record.CreatedAt,
		&completedAt,
		&record.FailureReason,
		&expiresAt,
	)
	if err != nil {
		return domain.Record{}, err
	}

	record.Status = domain.Status(status)
	record.Method = domain.Method(method)
	record.Input = storagedomain.ObjectRef{Bucket: inputBucket, Key: inputKey}
	record.Output = storagedomain.ObjectRef{Bucket: outputBucket, Key: outputKey}
	if completedAt != nil {
		record.CompletedAt = *completedAt
	}
	if expiresAt != nil {
		record.ExpiresAt = *expiresAt
	}
	return record, nil
}

func collectRecords(rows pgx.Rows) ([]domain.Record, error) {
	var records []domain.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate job records: %w", err)
	}
	return records, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// インターフェース実装の確認
var _ domain.Store = (*JobStore)(nil)
