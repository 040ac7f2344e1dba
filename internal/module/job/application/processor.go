package application

import (
	"context"
	"log/slog"
	"path"
	"strings"

	"github.com/jinford/pii-redactor/internal/module/job/domain"
	redaction "github.com/jinford/pii-redactor/internal/module/redaction/domain"
	storagedomain "github.com/jinford/pii-redactor/internal/module/storage/domain"
	"github.com/jinford/pii-redactor/internal/shared/csvutil"
)

// Processor は入力CSVの対象列をその場で書き換えるリアルタイム処理サービスです
type Processor struct {
	objects      storagedomain.Store
	strategy     redaction.Strategy
	piiTypesRef  storagedomain.ObjectRef
	outputBucket string
	outputPrefix string
	targetColumn string
	logger       *slog.Logger
}

type ProcessorOption func(*Processor)

// WithProcessorLogger はロガーを差し替えます
func WithProcessorLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		p.logger = logger
	}
}

// NewProcessor はProcessorを作成します
func NewProcessor(
	objects storagedomain.Store,
	strategy redaction.Strategy,
	piiTypesRef storagedomain.ObjectRef,
	outputBucket string,
	outputPrefix string,
	targetColumn string,
	opts ...ProcessorOption,
) *Processor {
	p := &Processor{
		objects:      objects,
		strategy:     strategy,
		piiTypesRef:  piiTypesRef,
		outputBucket: outputBucket,
		outputPrefix: outputPrefix,
		targetColumn: targetColumn,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessResult はリアルタイム処理の結果です
type ProcessResult struct {
	Output        storagedomain.ObjectRef
	RowsProcessed int
}

// Process は入力CSVの対象列をセルごとに置換し、出力オブジェクトに書き込みます
func (p *Processor) Process(ctx context.Context, bucket, key string) (ProcessResult, error) {
	if !strings.HasSuffix(strings.ToLower(key), ".csv") {
		return ProcessResult{}, &domain.ValidationError{Field: "key", Message: "only .csv files are supported"}
	}

	p.loadPIITypes(ctx)

	input := storagedomain.ObjectRef{Bucket: bucket, Key: key}
	data, err := p.objects.Get(ctx, input)
	if err != nil {
		return ProcessResult{}, err
	}

	redacted, processed, err := csvutil.RewriteColumn(data, p.targetColumn, func(cell string) string {
		return p.strategy.Redact(ctx, cell)
	})
	if err != nil {
		return ProcessResult{}, err
	}

	output := storagedomain.ObjectRef{
		Bucket: p.outputBucket,
		Key:    path.Join(path.Dir(key), p.outputPrefix+path.Base(key)),
	}
	if err := p.objects.Put(ctx, output, redacted); err != nil {
		return ProcessResult{}, err
	}

	p.logger.Info("realtime processing completed",
		slog.String("input", input.URI()),
		slog.String("output", output.URI()),
		slog.Int("rows_processed", processed),
	)
	return ProcessResult{Output: output, RowsProcessed: processed}, nil
}

// loadPIITypes は設定オブジェクトのPIIタイプ一覧を読み込みます。
// 置換対象のカテゴリ確認用で、取得できなくても処理は続行する。
func (p *Processor) loadPIITypes(ctx context.Context) {
	if p.piiTypesRef.IsZero() {
		return
	}

	data, err := p.objects.Get(ctx, p.piiTypesRef)
	if err != nil {
		p.logger.Warn("failed to load pii types config", slog.String("error", err.Error()))
		return
	}

	types := redaction.ParsePIITypes(data)
	p.logger.Info("loaded pii types config",
		slog.String("ref", p.piiTypesRef.URI()),
		slog.Int("count", len(types)),
	)
}
