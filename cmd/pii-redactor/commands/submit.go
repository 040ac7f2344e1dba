package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/jinford/pii-redactor/internal/module/job/application"
)

// SubmitAction は入力CSVをバッチ処理に投入するコマンドのアクション
func SubmitAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	bucket := cmd.String("bucket")
	key := cmd.String("key")

	// 共通コンテキストの初期化
	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	result, err := appCtx.Container.Submitter.Submit(ctx, application.SubmitRequest{
		Bucket: bucket,
		Key:    key,
	})
	if err != nil {
		return fmt.Errorf("ジョブの投入に失敗: %w", err)
	}

	switch result.Outcome {
	case application.OutcomeSubmitted:
		fmt.Printf("ジョブを投入しました: %s (backend job: %s)\n", result.JobID, result.BackendJobID)
	case application.OutcomeFallback:
		fmt.Printf("フォールバック処理で完了しました: %s -> %s\n", result.JobID, result.Output.URI())
	}

	return nil
}
