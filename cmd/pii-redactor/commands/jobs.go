package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/jinford/pii-redactor/internal/module/job/domain"
)

// JobsListAction はジョブレコードの一覧を表示するコマンドのアクション
func JobsListAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	statusFilter := cmd.String("status")

	// 共通コンテキストの初期化
	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	records, err := appCtx.Container.JobStore.List(ctx)
	if err != nil {
		return fmt.Errorf("ジョブレコードの取得に失敗: %w", err)
	}

	if statusFilter != "" {
		filtered := records[:0]
		for _, record := range records {
			if string(record.Status) == statusFilter {
				filtered = append(filtered, record)
			}
		}
		records = filtered
	}

	if len(records) == 0 {
		fmt.Println("ジョブレコードはありません")
		return nil
	}

	renderJobsTable(records)
	return nil
}

// JobsShowAction は特定のジョブレコードを詳細表示するコマンドのアクション
func JobsShowAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	jobID := cmd.String("job-id")

	if jobID == "" {
		return fmt.Errorf("--job-id は必須です")
	}

	// 共通コンテキストの初期化
	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	record, err := appCtx.Container.JobStore.Get(ctx, jobID)
	if err != nil {
		return fmt.Errorf("ジョブレコードの取得に失敗: %w", err)
	}

	renderJobDetail(record)
	return nil
}

// JobsPurgeAction は保持期限を過ぎたジョブレコードを削除するコマンドのアクション
func JobsPurgeAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")

	// 共通コンテキストの初期化
	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	purged, err := appCtx.Container.JobStore.PurgeExpired(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("期限切れレコードの削除に失敗: %w", err)
	}

	fmt.Printf("期限切れレコードを削除しました: %d件\n", purged)
	return nil
}

// renderJobsTable はジョブレコードの一覧をテーブル表示します
func renderJobsTable(records []domain.Record) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Job ID", "Status", "Method", "Input", "Created At", "Completed At")

	for _, record := range records {
		completedAt := ""
		if !record.CompletedAt.IsZero() {
			completedAt = record.CompletedAt.Format("2006-01-02 15:04")
		}
		table.Append(
			record.JobID,
			string(record.Status),
			string(record.Method),
			truncateString(record.Input.URI(), 50),
			record.CreatedAt.Format("2006-01-02 15:04"),
			completedAt,
		)
	}

	table.Render()
}

// renderJobDetail はジョブレコードの詳細を表示します
func renderJobDetail(record domain.Record) {
	fmt.Printf("Job ID:         %s\n", record.JobID)
	if record.BackendJobID != "" {
		fmt.Printf("Backend Job:    %s\n", record.BackendJobID)
	}
	fmt.Printf("Status:         %s\n", record.Status)
	fmt.Printf("Method:         %s\n", record.Method)
	fmt.Printf("Input:          %s\n", record.Input.URI())
	if !record.Output.IsZero() {
		fmt.Printf("Output:         %s\n", record.Output.URI())
	}
	fmt.Printf("Target Column:  %s\n", record.TargetColumn)
	fmt.Printf("Created At:     %s\n", record.CreatedAt.Format(time.RFC3339))
	if !record.CompletedAt.IsZero() {
		fmt.Printf("Completed At:   %s\n", record.CompletedAt.Format(time.RFC3339))
	}
	if record.FailureReason != "" {
		fmt.Printf("Failure Reason: %s\n", record.FailureReason)
	}
	if !record.ExpiresAt.IsZero() {
		fmt.Printf("Expires At:     %s\n", record.ExpiresAt.Format(time.RFC3339))
	}
}

// truncateString は文字列を指定された長さに切り詰めます
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
