package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// ProcessAction は入力CSVをその場で秘匿化するコマンドのアクション
func ProcessAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	bucket := cmd.String("bucket")
	key := cmd.String("key")

	// 共通コンテキストの初期化
	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	result, err := appCtx.Container.Processor.Process(ctx, bucket, key)
	if err != nil {
		return fmt.Errorf("リアルタイム処理に失敗: %w", err)
	}

	fmt.Printf("処理が完了しました: %s (%d行)\n", result.Output.URI(), result.RowsProcessed)
	return nil
}
