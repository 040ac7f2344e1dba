package application

import (
	"context"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/jinford/pii-redactor/internal/module/job/domain"
	redaction "github.com/jinford/pii-redactor/internal/module/redaction/domain"
	storagedomain "github.com/jinford/pii-redactor/internal/module/storage/domain"
	"github.com/jinford/pii-redactor/internal/shared/csvutil"
)

// Outcome は投入処理がどちらの経路で完了したかを表します
type Outcome string

const (
	// OutcomeSubmitted は非同期バッチジョブとして投入された
	OutcomeSubmitted Outcome = "submitted"

	// OutcomeFallback は正規表現によるその場処理で完了した
	OutcomeFallback Outcome = "fallback"
)

// SubmitResult は投入処理の結果です
type SubmitResult struct {
	JobID        string
	Outcome      Outcome
	BackendJobID string
	Output       storagedomain.ObjectRef
}

// SubmitRequest は処理対象の入力オブジェクトです
type SubmitRequest struct {
	Bucket string
	Key    string
}

// Submitter は入力CSVを非同期バッチに投入し、
// 失敗時は正規表現フォールバックでその場処理するサービスです
type Submitter struct {
	store        domain.Store
	backend      domain.BatchBackend
	objects      storagedomain.Store
	fallback     redaction.Strategy
	outputBucket string
	outputPrefix string
	targetColumn string
	retention    time.Duration
	now          func() time.Time
	logger       *slog.Logger
}

type SubmitterOption func(*Submitter)

// WithSubmitterLogger はロガーを差し替えます
func WithSubmitterLogger(logger *slog.Logger) SubmitterOption {
	return func(s *Submitter) {
		s.logger = logger
	}
}

// WithSubmitterClock は現在時刻の取得関数を差し替えます
func WithSubmitterClock(now func() time.Time) SubmitterOption {
	return func(s *Submitter) {
		s.now = now
	}
}

// NewSubmitter はSubmitterを作成します
func NewSubmitter(
	store domain.Store,
	backend domain.BatchBackend,
	objects storagedomain.Store,
	fallback redaction.Strategy,
	outputBucket string,
	outputPrefix string,
	targetColumn string,
	retention time.Duration,
	opts ...SubmitterOption,
) *Submitter {
	s := &Submitter{
		store:        store,
		backend:      backend,
		objects:      objects,
		fallback:     fallback,
		outputBucket: outputBucket,
		outputPrefix: outputPrefix,
		targetColumn: targetColumn,
		retention:    retention,
		now:          time.Now,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit は入力オブジェクトの処理を開始します。
// バッチ投入に失敗した場合は正規表現フォールバックに切り替え、
// 両方失敗した場合のみレコードを残さずエラーを返す。
func (s *Submitter) Submit(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	if err := validateRequest(req); err != nil {
		return SubmitResult{}, err
	}

	now := s.now()
	jobID := domain.NewJobID(now)
	input := storagedomain.ObjectRef{Bucket: req.Bucket, Key: req.Key}
	output := s.outputRef(req.Key)

	backendJobID, submitErr := s.backend.CreateJob(ctx, domain.JobConfig{
		JobID:        jobID,
		Input:        input,
		Output:       output,
		TargetColumn: s.targetColumn,
	})
	if submitErr == nil {
		record := domain.Record{
			JobID:        jobID,
			BackendJobID: backendJobID,
			Status:       domain.StatusInProgress,
			Method:       domain.MethodAsyncModel,
			Input:        input,
			Output:       output,
			TargetColumn: s.targetColumn,
			CreatedAt:    now,
			ExpiresAt:    now.Add(s.retention),
		}
		if err := s.store.Create(ctx, record); err != nil {
			return SubmitResult{}, err
		}

		s.logger.Info("batch job submitted",
			slog.String("job_id", jobID),
			slog.String("backend_job_id", backendJobID),
			slog.String("input", input.URI()),
		)
		return SubmitResult{
			JobID:        jobID,
			Outcome:      OutcomeSubmitted,
			BackendJobID: backendJobID,
			Output:       output,
		}, nil
	}

	s.logger.Warn("batch submission failed, falling back to direct processing",
		slog.String("job_id", jobID),
		slog.String("error", submitErr.Error()),
	)

	if fallbackErr := s.processDirect(ctx, input, output); fallbackErr != nil {
		return SubmitResult{}, &domain.ProcessingFailedError{
			SubmitErr:   submitErr,
			FallbackErr: fallbackErr,
		}
	}

	// フォールバック完了のレコードは作成時点で終端
	completedAt := s.now()
	record := domain.Record{
		JobID:        jobID,
		Status:       domain.StatusCompleted,
		Method:       domain.MethodDirectProcessing,
		Input:        input,
		Output:       output,
		TargetColumn: s.targetColumn,
		CreatedAt:    now,
		CompletedAt:  completedAt,
		ExpiresAt:    now.Add(s.retention),
	}
	if err := s.store.Create(ctx, record); err != nil {
		return SubmitResult{}, err
	}

	s.logger.Info("direct processing completed",
		slog.String("job_id", jobID),
		slog.String("output", output.URI()),
	)
	return SubmitResult{
		JobID:   jobID,
		Outcome: OutcomeFallback,
		Output:  output,
	}, nil
}

// processDirect は入力CSVの対象列を正規表現戦略で書き換えて出力します
func (s *Submitter) processDirect(ctx context.Context, input, output storagedomain.ObjectRef) error {
	data, err := s.objects.Get(ctx, input)
	if err != nil {
		return err
	}

	redacted, processed, err := csvutil.RewriteColumn(data, s.targetColumn, func(cell string) string {
		return s.fallback.Redact(ctx, cell)
	})
	if err != nil {
		return err
	}

	if err := s.objects.Put(ctx, output, redacted); err != nil {
		return err
	}

	s.logger.Info("direct processing wrote output",
		slog.Int("cells_processed", processed),
		slog.String("output", output.URI()),
	)
	return nil
}

func (s *Submitter) outputRef(inputKey string) storagedomain.ObjectRef {
	return storagedomain.ObjectRef{
		Bucket: s.outputBucket,
		Key:    path.Join(path.Dir(inputKey), s.outputPrefix+path.Base(inputKey)),
	}
}

func validateRequest(req SubmitRequest) error {
	if req.Bucket == "" {
		return &domain.ValidationError{Field: "bucket", Message: "must not be empty"}
	}
	if req.Key == "" {
		return &domain.ValidationError{Field: "key", Message: "must not be empty"}
	}
	if !strings.HasSuffix(strings.ToLower(req.Key), ".csv") {
		return &domain.ValidationError{Field: "key", Message: "only .csv files are supported"}
	}
	return nil
}
