package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"
)

// ReconcileAction は進行中ジョブの状態を照合するコマンドのアクション
func ReconcileAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	watch := cmd.Bool("watch")
	interval := cmd.Duration("interval")

	// 共通コンテキストの初期化
	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	if interval <= 0 {
		interval = appCtx.Config.Jobs.ReconcileInterval
	}

	counts, err := appCtx.Container.Reconciler.Run(ctx)
	if err != nil {
		return fmt.Errorf("照合パスに失敗: %w", err)
	}
	fmt.Printf("照合完了: checked=%d updated=%d\n", counts.JobsChecked, counts.JobsUpdated)

	if !watch {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			counts, err := appCtx.Container.Reconciler.Run(ctx)
			if err != nil {
				// 1回のパスの失敗では監視ループを止めない
				slog.Error("照合パスに失敗しました", slog.String("error", err.Error()))
				continue
			}
			fmt.Printf("照合完了: checked=%d updated=%d\n", counts.JobsChecked, counts.JobsUpdated)
		}
	}
}
