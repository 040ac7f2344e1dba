package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/jinford/pii-redactor/cmd/pii-redactor/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 構造化ログの設定
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	app := &cli.Command{
		Name:  "pii-redactor",
		Usage: "CSVファイルのPII秘匿化ジョブ管理システム",
		Commands: []*cli.Command{
			{
				Name:  "submit",
				Usage: "入力CSVをバッチ秘匿化ジョブに投入",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "env",
						Usage: "環境変数ファイルパス",
						Value: ".env",
					},
					&cli.StringFlag{
						Name:     "bucket",
						Usage:    "入力バケット名",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "key",
						Usage:    "入力オブジェクトキー（.csv）",
						Required: true,
					},
				},
				Action: commands.SubmitAction,
			},
			{
				Name:  "process",
				Usage: "入力CSVをその場で秘匿化（リアルタイム処理）",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "env",
						Usage: "環境変数ファイルパス",
						Value: ".env",
					},
					&cli.StringFlag{
						Name:     "bucket",
						Usage:    "入力バケット名",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "key",
						Usage:    "入力オブジェクトキー（.csv）",
						Required: true,
					},
				},
				Action: commands.ProcessAction,
			},
			{
				Name:  "reconcile",
				Usage: "進行中ジョブの状態をバックエンドと照合",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "env",
						Usage: "環境変数ファイルパス",
						Value: ".env",
					},
					&cli.BoolFlag{
						Name:  "watch",
						Usage: "定期実行モード",
					},
					&cli.DurationFlag{
						Name:  "interval",
						Usage: "定期実行の間隔（省略時は環境変数の設定値）",
					},
				},
				Action: commands.ReconcileAction,
			},
			{
				Name:  "jobs",
				Usage: "ジョブレコード管理コマンド",
				Commands: []*cli.Command{
					{
						Name:  "list",
						Usage: "ジョブレコード一覧を表示",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
							&cli.StringFlag{
								Name:  "status",
								Usage: "ステータスでフィルタ (InProgress/Completed/Failed/Stopped)",
							},
						},
						Action: commands.JobsListAction,
					},
					{
						Name:  "show",
						Usage: "ジョブレコード詳細を表示",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
							&cli.StringFlag{
								Name:     "job-id",
								Usage:    "Job ID",
								Required: true,
							},
						},
						Action: commands.JobsShowAction,
					},
					{
						Name:  "purge",
						Usage: "保持期限を過ぎたレコードを削除",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
						},
						Action: commands.JobsPurgeAction,
					},
				},
			},
			{
				Name:  "server",
				Usage: "サーバ関連コマンド",
				Commands: []*cli.Command{
					{
						Name:  "start",
						Usage: "HTTPトリガーサーバを起動",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
							&cli.IntFlag{
								Name:  "port",
								Usage: "HTTPポート（省略時は環境変数またはデフォルトの8080）",
							},
						},
						Action: commands.ServerStartAction,
					},
				},
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
