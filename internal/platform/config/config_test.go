package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, 60*time.Second, cfg.OpenAI.Timeout)
	assert.Equal(t, "processed-", cfg.Storage.OutputPrefix)
	assert.Equal(t, "config/pii_types.txt", cfg.Storage.PIITypesKey)
	assert.Equal(t, "Comments", cfg.Jobs.TargetColumn)
	assert.Equal(t, 30*24*time.Hour, cfg.Jobs.Retention)
	assert.Equal(t, 8080, cfg.HTTP.Port)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("INPUT_BUCKET", "incoming")
	t.Setenv("OUTPUT_BUCKET", "")
	t.Setenv("TARGET_COLUMN", "Notes")
	t.Setenv("JOB_RETENTION_DAYS", "7")
	t.Setenv("RECONCILE_INTERVAL_SECONDS", "60")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "incoming", cfg.Storage.InputBucket)
	// 出力バケット未指定時は入力バケットに書き戻す
	assert.Equal(t, "incoming", cfg.Storage.OutputBucket)
	assert.Equal(t, "Notes", cfg.Jobs.TargetColumn)
	assert.Equal(t, 7*24*time.Hour, cfg.Jobs.Retention)
	assert.Equal(t, time.Minute, cfg.Jobs.ReconcileInterval)
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-number")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5432, cfg.Database.Port)
}
