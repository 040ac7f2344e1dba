package openaibatch

import (
	"strings"
	"testing"

	"github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinford/pii-redactor/internal/module/job/domain"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		batch openai.BatchStatus
		want  domain.Status
	}{
		{openai.BatchStatusValidating, domain.StatusInProgress},
		{openai.BatchStatusInProgress, domain.StatusInProgress},
		{openai.BatchStatusFinalizing, domain.StatusInProgress},
		{openai.BatchStatusCompleted, domain.StatusCompleted},
		{openai.BatchStatusFailed, domain.StatusFailed},
		{openai.BatchStatusExpired, domain.StatusFailed},
		{openai.BatchStatusCancelling, domain.StatusStopped},
		{openai.BatchStatusCancelled, domain.StatusStopped},
	}

	for _, tt := range tests {
		t.Run(string(tt.batch), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.batch))
		})
	}
}

func TestBuildInputJSONL(t *testing.T) {
	b := &Backend{model: "gpt-4o-mini", prompt: "Mask PII:\n"}
	csv := []byte("id,Comments\n1,call 555-123-4567\n2,\n3,email a@b.com\n")

	jsonl, count, err := b.buildInputJSONL(csv, "Comments")
	require.NoError(t, err)

	// 空セルの行はリクエストを生成しない
	assert.Equal(t, 2, count)

	lines := strings.Split(strings.TrimRight(string(jsonl), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"custom_id":"row-0"`)
	assert.Contains(t, lines[0], `"url":"/v1/chat/completions"`)
	assert.Contains(t, lines[0], "call 555-123-4567")
	assert.Contains(t, lines[1], `"custom_id":"row-2"`)
}

func TestBuildInputJSONL_MissingColumn(t *testing.T) {
	b := &Backend{model: "gpt-4o-mini"}

	_, _, err := b.buildInputJSONL([]byte("id,other\n1,x\n"), "Comments")
	require.Error(t, err)
}

func TestParseOutputJSONL(t *testing.T) {
	output := strings.Join([]string{
		`{"custom_id":"row-0","response":{"body":{"choices":[{"message":{"content":"call <PII_PHONE>"}}]}}}`,
		`{"custom_id":"row-2","response":{"body":{"choices":[{"message":{"content":"email <PII_EMAIL>"}}]}}}`,
		`{"custom_id":"row-5","error":{"message":"model refused"}}`,
		``,
	}, "\n")

	replacements, err := parseOutputJSONL(strings.NewReader(output))
	require.NoError(t, err)

	assert.Equal(t, map[int]string{
		0: "call <PII_PHONE>",
		2: "email <PII_EMAIL>",
	}, replacements)
}

func TestParseOutputJSONL_BadCustomID(t *testing.T) {
	_, err := parseOutputJSONL(strings.NewReader(`{"custom_id":"bogus"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
}
