package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"
)

// shutdownTimeout はHTTPサーバのグレースフルシャットダウン待ち時間
const shutdownTimeout = 10 * time.Second

// ServerStartAction はHTTPトリガーサーバを起動するコマンドのアクション
func ServerStartAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	port := cmd.Int("port")

	// 共通コンテキストの初期化
	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	if port <= 0 {
		port = appCtx.Config.HTTP.Port
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: appCtx.Container.HTTPServer.Router(),
	}

	// バックグラウンドの照合ループ
	go runReconcileLoop(ctx, appCtx)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTPサーバを起動します", slog.Int("port", port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTPサーバの起動に失敗: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTPサーバの停止に失敗: %w", err)
	}

	slog.Info("HTTPサーバを停止しました")
	return nil
}

// runReconcileLoop は設定された間隔で照合パスを実行し続ける
func runReconcileLoop(ctx context.Context, appCtx *AppContext) {
	interval := appCtx.Config.Jobs.ReconcileInterval
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := appCtx.Container.Reconciler.Run(ctx); err != nil {
				slog.Error("照合パスに失敗しました", slog.String("error", err.Error()))
			}
		}
	}
}
