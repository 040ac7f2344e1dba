package csvutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "id,Comments,amount\n1,call me at 555-123-4567,10\n2,,20\n3,\"quoted, with comma\",30\n"

func TestExtractColumn(t *testing.T) {
	values, err := ExtractColumn([]byte(sample), "Comments")
	require.NoError(t, err)
	assert.Equal(t, []string{"call me at 555-123-4567", "", "quoted, with comma"}, values)
}

func TestExtractColumn_MissingColumn(t *testing.T) {
	_, err := ExtractColumn([]byte(sample), "Notes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Notes")
}

func TestApplyColumn(t *testing.T) {
	out, err := ApplyColumn([]byte(sample), "Comments", map[int]string{
		0: "<PII_PHONE>",
		2: "redacted",
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "1,<PII_PHONE>,10", lines[1])
	// マップにない行は元の値を保持する
	assert.Equal(t, "2,,20", lines[2])
	assert.Equal(t, "3,redacted,30", lines[3])
}

func TestRewriteColumn(t *testing.T) {
	out, processed, err := RewriteColumn([]byte(sample), "Comments", strings.ToUpper)
	require.NoError(t, err)

	// 空セルは処理対象に含めない
	assert.Equal(t, 2, processed)
	assert.Contains(t, string(out), "CALL ME AT 555-123-4567")
	assert.Contains(t, string(out), "\"QUOTED, WITH COMMA\"")
}

func TestRewriteColumn_PreservesOtherColumns(t *testing.T) {
	out, _, err := RewriteColumn([]byte(sample), "Comments", func(string) string { return "x" })
	require.NoError(t, err)

	values, err := ExtractColumn(out, "amount")
	require.NoError(t, err)
	assert.Equal(t, []string{"10", "20", "30"}, values)
}

func TestParse_Empty(t *testing.T) {
	_, err := ExtractColumn([]byte(""), "Comments")
	require.Error(t, err)
}
