package openaibatch

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/jinford/pii-redactor/internal/module/job/domain"
	storagedomain "github.com/jinford/pii-redactor/internal/module/storage/domain"
	"github.com/jinford/pii-redactor/internal/shared/csvutil"
)

// DefaultModel はバッチ投入時のデフォルトモデル
const DefaultModel = "gpt-4o-mini"

// Backend は OpenAI Batch API を使った非同期バッチバックエンドです。
// 対象列の各セルをひとつのチャット補完リクエストとしてJSONLに詰めて投入する。
type Backend struct {
	client openai.Client
	store  storagedomain.Store
	model  string
	prompt string
}

// NewBackend はBackendを作成します。
// prompt はセル値の前に連結するマスキング指示文。
func NewBackend(apiKey, model, prompt string, store storagedomain.Store) *Backend {
	if model == "" {
		model = DefaultModel
	}
	return &Backend{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		store:  store,
		model:  model,
		prompt: prompt,
	}
}

// batchRequest は入力JSONLの1行です
type batchRequest struct {
	CustomID string           `json:"custom_id"`
	Method   string           `json:"method"`
	URL      string           `json:"url"`
	Body     batchRequestBody `json:"body"`
}

type batchRequestBody struct {
	Model       string         `json:"model"`
	Messages    []batchMessage `json:"messages"`
	Temperature float64        `json:"temperature"`
}

type batchMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// batchResult は出力JSONLの1行です
type batchResult struct {
	CustomID string `json:"custom_id"`
	Response struct {
		Body struct {
			Choices []struct {
				Message struct {
					Content string `json:"content"`
				} `json:"message"`
			} `json:"choices"`
		} `json:"body"`
	} `json:"response"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CreateJob は入力CSVの対象列からJSONLを組み立ててバッチジョブを投入します
func (b *Backend) CreateJob(ctx context.Context, cfg domain.JobConfig) (string, error) {
	data, err := b.store.Get(ctx, cfg.Input)
	if err != nil {
		return "", &domain.BackendError{Op: "read input", Err: err}
	}

	jsonl, count, err := b.buildInputJSONL(data, cfg.TargetColumn)
	if err != nil {
		return "", &domain.BackendError{Op: "build batch input", Err: err}
	}
	if count == 0 {
		return "", &domain.BackendError{Op: "build batch input", Err: fmt.Errorf("no non-empty cells in column %q", cfg.TargetColumn)}
	}

	file, err := b.client.Files.New(ctx, openai.FileNewParams{
		File:    openai.File(bytes.NewReader(jsonl), cfg.JobID+".jsonl", "application/jsonl"),
		Purpose: openai.FilePurposeBatch,
	})
	if err != nil {
		return "", &domain.BackendError{Op: "upload batch input", Err: err}
	}

	batch, err := b.client.Batches.New(ctx, openai.BatchNewParams{
		InputFileID:      file.ID,
		Endpoint:         openai.BatchNewParamsEndpointV1ChatCompletions,
		CompletionWindow: openai.BatchNewParamsCompletionWindow24h,
	})
	if err != nil {
		return "", &domain.BackendError{Op: "create batch", Err: err}
	}

	return batch.ID, nil
}

// GetJobStatus はバッチの現況を取得してジョブ状態に対応付けます
func (b *Backend) GetJobStatus(ctx context.Context, backendJobID string) (domain.StatusReport, error) {
	batch, err := b.client.Batches.Get(ctx, backendJobID)
	if err != nil {
		return domain.StatusReport{}, &domain.BackendError{Op: "get batch", Err: err}
	}

	report := domain.StatusReport{Status: statusFor(batch.Status)}
	if report.Status == domain.StatusFailed {
		report.FailureMessage = failureMessage(batch)
	}
	return report, nil
}

// MaterializeOutput は完了したバッチの出力を取り出し、
// 入力CSVの対象列に適用した結果をオブジェクトストアへ書き込みます
func (b *Backend) MaterializeOutput(ctx context.Context, record domain.Record) error {
	batch, err := b.client.Batches.Get(ctx, record.BackendJobID)
	if err != nil {
		return &domain.BackendError{Op: "get batch", Err: err}
	}
	if batch.OutputFileID == "" {
		return &domain.BackendError{Op: "materialize output", Err: fmt.Errorf("batch %s has no output file", record.BackendJobID)}
	}

	resp, err := b.client.Files.Content(ctx, batch.OutputFileID)
	if err != nil {
		return &domain.BackendError{Op: "download batch output", Err: err}
	}
	defer resp.Body.Close()

	replacements, err := parseOutputJSONL(resp.Body)
	if err != nil {
		return &domain.BackendError{Op: "parse batch output", Err: err}
	}

	input, err := b.store.Get(ctx, record.Input)
	if err != nil {
		return &domain.BackendError{Op: "read input", Err: err}
	}

	output, err := csvutil.ApplyColumn(input, record.TargetColumn, replacements)
	if err != nil {
		return &domain.BackendError{Op: "apply batch output", Err: err}
	}

	if err := b.store.Put(ctx, record.Output, output); err != nil {
		return &domain.BackendError{Op: "write output", Err: err}
	}
	return nil
}

// buildInputJSONL は対象列の空でないセルごとに1リクエストを生成します。
// custom_id はデータ行番号(0始まり)を埋め込んだ "row-%d" 形式。
func (b *Backend) buildInputJSONL(data []byte, column string) ([]byte, int, error) {
	values, err := csvutil.ExtractColumn(data, column)
	if err != nil {
		return nil, 0, err
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	count := 0
	for i, value := range values {
		if value == "" {
			continue
		}
		req := batchRequest{
			CustomID: fmt.Sprintf("row-%d", i),
			Method:   "POST",
			URL:      "/v1/chat/completions",
			Body: batchRequestBody{
				Model:       b.model,
				Messages:    []batchMessage{{Role: "user", Content: b.prompt + value}},
				Temperature: 0,
			},
		}
		if err := encoder.Encode(req); err != nil {
			return nil, 0, fmt.Errorf("failed to encode batch request: %w", err)
		}
		count++
	}
	return buf.Bytes(), count, nil
}

// parseOutputJSONL は出力JSONLからデータ行番号→マスク済みテキストのマップを作ります
func parseOutputJSONL(r io.Reader) (map[int]string, error) {
	replacements := make(map[int]string)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var result batchResult
		if err := json.Unmarshal(line, &result); err != nil {
			return nil, fmt.Errorf("failed to decode batch result line: %w", err)
		}

		var row int
		if _, err := fmt.Sscanf(result.CustomID, "row-%d", &row); err != nil {
			return nil, fmt.Errorf("unexpected custom_id %q in batch output", result.CustomID)
		}

		// 行単位のエラーはその行を未処理のまま残す
		if result.Error != nil {
			continue
		}
		if len(result.Response.Body.Choices) == 0 {
			continue
		}
		replacements[row] = result.Response.Body.Choices[0].Message.Content
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read batch output: %w", err)
	}
	return replacements, nil
}

// statusFor はバッチ状態をジョブ状態に対応付けます
func statusFor(status openai.BatchStatus) domain.Status {
	switch status {
	case openai.BatchStatusCompleted:
		return domain.StatusCompleted
	case openai.BatchStatusFailed, openai.BatchStatusExpired:
		return domain.StatusFailed
	case openai.BatchStatusCancelling, openai.BatchStatusCancelled:
		return domain.StatusStopped
	default:
		// validating / in_progress / finalizing は処理継続中
		return domain.StatusInProgress
	}
}

func failureMessage(batch *openai.Batch) string {
	if batch == nil {
		return ""
	}
	messages := make([]string, 0, len(batch.Errors.Data))
	for _, e := range batch.Errors.Data {
		if e.Message != "" {
			messages = append(messages, e.Message)
		}
	}
	if len(messages) == 0 {
		return fmt.Sprintf("batch finished with status %s", batch.Status)
	}
	return strings.Join(messages, "; ")
}

// インターフェース実装の確認
var _ domain.BatchBackend = (*Backend)(nil)
