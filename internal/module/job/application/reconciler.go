package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/jinford/pii-redactor/internal/module/job/domain"
)

// unknownFailureReason はバックエンドが失敗理由を返さなかった場合の記録値
const unknownFailureReason = "Unknown failure"

// Counts は1回の照合パスの集計です
type Counts struct {
	JobsChecked int
	JobsUpdated int
}

// Reconciler は進行中ジョブの状態をバックエンドと突き合わせ、
// 終端に達したジョブのレコードを確定させるサービスです
type Reconciler struct {
	store   domain.Store
	backend domain.BatchBackend
	now     func() time.Time
	logger  *slog.Logger
}

type ReconcilerOption func(*Reconciler)

// WithReconcilerLogger はロガーを差し替えます
func WithReconcilerLogger(logger *slog.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

// WithReconcilerClock は現在時刻の取得関数を差し替えます
func WithReconcilerClock(now func() time.Time) ReconcilerOption {
	return func(r *Reconciler) {
		r.now = now
	}
}

// NewReconciler はReconcilerを作成します
func NewReconciler(store domain.Store, backend domain.BatchBackend, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		store:   store,
		backend: backend,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run は1回の照合パスを実行します。
// ジョブ単位の失敗はログに残してスキップし、パス全体は継続する。
func (r *Reconciler) Run(ctx context.Context) (Counts, error) {
	records, err := r.store.ListInProgress(ctx)
	if err != nil {
		return Counts{}, err
	}

	var counts Counts
	for _, record := range records {
		// ストア側のフィルタに加えて方式を再確認する
		if record.Method != domain.MethodAsyncModel {
			continue
		}
		counts.JobsChecked++

		if err := ctx.Err(); err != nil {
			return counts, err
		}

		updated, err := r.reconcileOne(ctx, record)
		if err != nil {
			r.logger.Error("failed to reconcile job",
				slog.String("job_id", record.JobID),
				slog.String("error", err.Error()),
			)
			continue
		}
		if updated {
			counts.JobsUpdated++
		}
	}

	r.logger.Info("reconcile pass finished",
		slog.Int("jobs_checked", counts.JobsChecked),
		slog.Int("jobs_updated", counts.JobsUpdated),
	)
	return counts, nil
}

// reconcileOne は1件のジョブを照合し、終端に達していればレコードを更新します
func (r *Reconciler) reconcileOne(ctx context.Context, record domain.Record) (bool, error) {
	report, err := r.backend.GetJobStatus(ctx, record.BackendJobID)
	if err != nil {
		return false, err
	}
	if !report.Status.Terminal() {
		return false, nil
	}

	update := domain.StatusUpdate{
		Status:      report.Status,
		CompletedAt: r.now(),
	}

	switch report.Status {
	case domain.StatusCompleted:
		// 出力の確定に失敗したジョブは完了扱いにしない
		if err := r.backend.MaterializeOutput(ctx, record); err != nil {
			r.logger.Error("failed to materialize job output",
				slog.String("job_id", record.JobID),
				slog.String("error", err.Error()),
			)
			update.Status = domain.StatusFailed
			update.FailureReason = err.Error()
		}
	case domain.StatusFailed:
		// 失敗レコードのfailureReasonを空のままにしない
		update.FailureReason = report.FailureMessage
		if update.FailureReason == "" {
			update.FailureReason = unknownFailureReason
		}
	}

	if err := r.store.UpdateStatus(ctx, record.JobID, update); err != nil {
		return false, err
	}

	r.logger.Info("job reached terminal status",
		slog.String("job_id", record.JobID),
		slog.String("status", string(update.Status)),
	)
	return true, nil
}
