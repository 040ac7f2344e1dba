package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ストレージバックエンドの選択肢
const (
	StorageS3    = "s3"
	StorageLocal = "local"
)

// ジョブレコードストアの選択肢
const (
	JobStorePostgres = "postgres"
	JobStoreMemory   = "memory"
)

// Config はアプリケーション全体の設定を保持します
type Config struct {
	// Database設定（ジョブレコードストア用）
	Database DatabaseConfig

	// OpenAI設定（モデルベース検出・バッチ推論用）
	OpenAI OpenAIConfig

	// オブジェクトストレージ設定
	Storage StorageConfig

	// ジョブライフサイクル設定
	Jobs JobsConfig

	// HTTPトリガーサーバ設定
	HTTP HTTPConfig

	// ログレベル（debug/info/warn/error）
	LogLevel string
}

// DatabaseConfig はデータベース接続設定
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// OpenAIConfig はOpenAI API設定
type OpenAIConfig struct {
	APIKey string
	Model  string
	// Timeout は同期呼び出し（converse相当）のタイムアウト
	Timeout time.Duration
	// MaxInputTokens はモデルに渡す1セルあたりのトークン上限
	MaxInputTokens int
}

// StorageConfig はオブジェクトストレージ設定
type StorageConfig struct {
	// Backend は "s3" または "local"
	Backend string
	// LocalDir は local バックエンドのルートディレクトリ
	LocalDir string

	InputBucket  string
	OutputBucket string
	// OutputPrefix は出力キーの接頭辞（例: processed-）
	OutputPrefix string
	// PIITypesKey は入力バケット内のPII種別設定オブジェクトのキー
	PIITypesKey string
}

// JobsConfig はジョブレコードのライフサイクル設定
type JobsConfig struct {
	// StoreBackend は "postgres" または "memory"
	StoreBackend string
	// Retention はレコードの保持期間（expiry算出に使用）
	Retention time.Duration
	// TargetColumn は秘匿化対象のCSV列名
	TargetColumn string
	// ReconcileInterval はサーバモードでの照合間隔
	ReconcileInterval time.Duration
}

// HTTPConfig はHTTPサーバ設定
type HTTPConfig struct {
	Port int
}

// Load は環境変数または.envファイルから設定を読み込みます
func Load(envFilePath string) (*Config, error) {
	// .envファイルが存在する場合は読み込む
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			// ファイルが存在しない場合はエラーとしない（環境変数のみで動作可能）
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load .env file: %w", err)
			}
		}
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "redactor"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "redactor"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			Model:          getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			Timeout:        getEnvAsDuration("OPENAI_TIMEOUT_SECONDS", 60*time.Second),
			MaxInputTokens: getEnvAsInt("OPENAI_MAX_INPUT_TOKENS", 4000),
		},
		Storage: StorageConfig{
			Backend:      getEnv("STORAGE_BACKEND", StorageS3),
			LocalDir:     getEnv("LOCAL_STORAGE_DIR", "/var/lib/pii-redactor/objects"),
			InputBucket:  getEnv("INPUT_BUCKET", ""),
			OutputBucket: getEnv("OUTPUT_BUCKET", ""),
			OutputPrefix: getEnv("OUTPUT_PREFIX", "processed-"),
			PIITypesKey:  getEnv("PII_TYPES_KEY", "config/pii_types.txt"),
		},
		Jobs: JobsConfig{
			StoreBackend:      getEnv("JOB_STORE", JobStorePostgres),
			Retention:         time.Duration(getEnvAsInt("JOB_RETENTION_DAYS", 30)) * 24 * time.Hour,
			TargetColumn:      getEnv("TARGET_COLUMN", "Comments"),
			ReconcileInterval: getEnvAsDuration("RECONCILE_INTERVAL_SECONDS", 5*time.Minute),
		},
		HTTP: HTTPConfig{
			Port: getEnvAsInt("HTTP_PORT", 8080),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// 出力バケット未指定時は入力バケットに書き戻す（Realtime構成と同等）
	if cfg.Storage.OutputBucket == "" {
		cfg.Storage.OutputBucket = cfg.Storage.InputBucket
	}

	return cfg, nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt は環境変数を整数として取得します
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration は秒数指定の環境変数をDurationとして取得します
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	seconds, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return time.Duration(seconds) * time.Second
}
