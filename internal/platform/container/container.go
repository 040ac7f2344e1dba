package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jinford/pii-redactor/internal/interface/httpapi"
	"github.com/jinford/pii-redactor/internal/module/job/adapter/memory"
	"github.com/jinford/pii-redactor/internal/module/job/adapter/openaibatch"
	"github.com/jinford/pii-redactor/internal/module/job/adapter/pg"
	jobapp "github.com/jinford/pii-redactor/internal/module/job/application"
	jobdomain "github.com/jinford/pii-redactor/internal/module/job/domain"
	"github.com/jinford/pii-redactor/internal/module/redaction/adapter/model"
	openaiconv "github.com/jinford/pii-redactor/internal/module/redaction/adapter/openai"
	"github.com/jinford/pii-redactor/internal/module/redaction/adapter/pattern"
	redaction "github.com/jinford/pii-redactor/internal/module/redaction/domain"
	"github.com/jinford/pii-redactor/internal/module/storage/adapter/local"
	"github.com/jinford/pii-redactor/internal/module/storage/adapter/s3"
	storagedomain "github.com/jinford/pii-redactor/internal/module/storage/domain"
	"github.com/jinford/pii-redactor/internal/platform/config"
	"github.com/jinford/pii-redactor/pkg/db"
)

// ServiceContainer はアプリケーション全体の依存関係を保持する。
type ServiceContainer struct {
	Submitter  *jobapp.Submitter
	Reconciler *jobapp.Reconciler
	Processor  *jobapp.Processor
	JobStore   jobdomain.Store
	HTTPServer *httpapi.Server

	logger   *slog.Logger
	database *db.DB
}

type containerOptions struct {
	logger   *slog.Logger
	jobStore jobdomain.Store
	objects  storagedomain.Store
	backend  jobdomain.BatchBackend
	strategy redaction.Strategy
}

// ContainerOption は ServiceContainer 構築時のオプション
type ContainerOption func(*containerOptions)

// WithContainerLogger はロガーを差し替える
func WithContainerLogger(logger *slog.Logger) ContainerOption {
	return func(opts *containerOptions) {
		opts.logger = logger
	}
}

// WithContainerJobStore はジョブレコードストアを差し替える
func WithContainerJobStore(store jobdomain.Store) ContainerOption {
	return func(opts *containerOptions) {
		opts.jobStore = store
	}
}

// WithContainerObjectStore はオブジェクトストアを差し替える
func WithContainerObjectStore(store storagedomain.Store) ContainerOption {
	return func(opts *containerOptions) {
		opts.objects = store
	}
}

// WithContainerBackend はバッチバックエンドを差し替える
func WithContainerBackend(backend jobdomain.BatchBackend) ContainerOption {
	return func(opts *containerOptions) {
		opts.backend = backend
	}
}

// WithContainerStrategy はリアルタイム処理の置換戦略を差し替える
func WithContainerStrategy(strategy redaction.Strategy) ContainerOption {
	return func(opts *containerOptions) {
		opts.strategy = strategy
	}
}

// NewContainer は設定からコンテナを生成する。
func NewContainer(ctx context.Context, cfg *config.Config, opts ...ContainerOption) (*ServiceContainer, error) {
	options := containerOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	container := &ServiceContainer{logger: options.logger}

	// JobStore (PostgreSQL / メモリ)
	jobStore := options.jobStore
	if jobStore == nil {
		switch cfg.Jobs.StoreBackend {
		case config.JobStoreMemory:
			jobStore = memory.NewJobStore()
		default:
			database, err := db.New(ctx, db.ConnectionParams{
				Host:     cfg.Database.Host,
				Port:     cfg.Database.Port,
				User:     cfg.Database.User,
				Password: cfg.Database.Password,
				DBName:   cfg.Database.DBName,
				SSLMode:  cfg.Database.SSLMode,
			})
			if err != nil {
				return nil, fmt.Errorf("データベース初期化に失敗しました: %w", err)
			}
			container.database = database

			pgStore := pg.NewJobStore(database)
			if err := pgStore.EnsureSchema(ctx); err != nil {
				container.Close()
				return nil, fmt.Errorf("スキーマ初期化に失敗しました: %w", err)
			}
			jobStore = pgStore
		}
	}
	container.JobStore = jobStore

	// ObjectStore (S3 / ローカルディレクトリ)
	objects := options.objects
	if objects == nil {
		switch cfg.Storage.Backend {
		case config.StorageLocal:
			store, err := local.NewStore(cfg.Storage.LocalDir)
			if err != nil {
				container.Close()
				return nil, fmt.Errorf("ローカルストレージ初期化に失敗しました: %w", err)
			}
			objects = store
		default:
			store, err := s3.NewStore(ctx)
			if err != nil {
				container.Close()
				return nil, fmt.Errorf("S3クライアント初期化に失敗しました: %w", err)
			}
			objects = store
		}
	}

	// BatchBackend (OpenAI Batch API)
	backend := options.backend
	if backend == nil {
		backend = openaibatch.NewBackend(cfg.OpenAI.APIKey, cfg.OpenAI.Model, openaiconv.MaskingPrompt(), objects)
	}

	// リアルタイム用のモデル戦略
	strategy := options.strategy
	if strategy == nil {
		converser, err := openaiconv.NewConverser(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
		if err != nil {
			container.Close()
			return nil, fmt.Errorf("OpenAIクライアント初期化に失敗しました: %w", err)
		}
		converser.SetTimeout(cfg.OpenAI.Timeout)
		strategy = model.NewStrategy(converser, cfg.OpenAI.MaxInputTokens, model.WithLogger(options.logger))
	}

	container.Submitter = jobapp.NewSubmitter(
		jobStore,
		backend,
		objects,
		pattern.NewStrategy(),
		cfg.Storage.OutputBucket,
		cfg.Storage.OutputPrefix,
		cfg.Jobs.TargetColumn,
		cfg.Jobs.Retention,
		jobapp.WithSubmitterLogger(options.logger),
	)

	container.Reconciler = jobapp.NewReconciler(
		jobStore,
		backend,
		jobapp.WithReconcilerLogger(options.logger),
	)

	container.Processor = jobapp.NewProcessor(
		objects,
		strategy,
		storagedomain.ObjectRef{Bucket: cfg.Storage.InputBucket, Key: cfg.Storage.PIITypesKey},
		cfg.Storage.OutputBucket,
		cfg.Storage.OutputPrefix,
		cfg.Jobs.TargetColumn,
		jobapp.WithProcessorLogger(options.logger),
	)

	container.HTTPServer = httpapi.NewServer(
		container.Submitter,
		container.Reconciler,
		jobStore,
		httpapi.WithLogger(options.logger),
	)

	return container, nil
}

// Close はコンテナが保持するリソースを解放する。
func (c *ServiceContainer) Close() {
	if c.database != nil {
		c.database.Close()
	}
}
