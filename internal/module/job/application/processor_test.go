package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinford/pii-redactor/internal/module/job/domain"
	"github.com/jinford/pii-redactor/internal/module/redaction/adapter/pattern"
	storagedomain "github.com/jinford/pii-redactor/internal/module/storage/domain"
)

func TestProcessor_Process(t *testing.T) {
	objects := newFakeObjects()
	objects.data["s3://in/uploads/data.csv"] = []byte(inputCSV)
	objects.data["s3://in/config/pii_types.txt"] = []byte("* Email addresses\n* Phone numbers\n")

	p := NewProcessor(
		objects, pattern.NewStrategy(),
		storagedomain.ObjectRef{Bucket: "in", Key: "config/pii_types.txt"},
		"out", "processed-", "Comments",
	)

	result, err := p.Process(context.Background(), "in", "uploads/data.csv")
	require.NoError(t, err)

	assert.Equal(t, "s3://out/uploads/processed-data.csv", result.Output.URI())
	assert.Equal(t, 2, result.RowsProcessed)

	output := string(objects.data["s3://out/uploads/processed-data.csv"])
	assert.Contains(t, output, "<PII_EMAIL>")
	assert.Contains(t, output, "<PII_PHONE>")
	assert.NotContains(t, output, "555-123-4567")
}

func TestProcessor_Process_WrongExtension(t *testing.T) {
	p := NewProcessor(newFakeObjects(), pattern.NewStrategy(), storagedomain.ObjectRef{}, "out", "processed-", "Comments")

	_, err := p.Process(context.Background(), "in", "data.txt")

	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestProcessor_Process_MissingPIITypesIsNotFatal(t *testing.T) {
	objects := newFakeObjects()
	objects.data["s3://in/data.csv"] = []byte(inputCSV)

	p := NewProcessor(
		objects, pattern.NewStrategy(),
		storagedomain.ObjectRef{Bucket: "in", Key: "config/pii_types.txt"},
		"out", "processed-", "Comments",
	)

	// 設定オブジェクトが無くても処理は続行する
	result, err := p.Process(context.Background(), "in", "data.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, result.RowsProcessed)
}

func TestProcessor_Process_MissingInput(t *testing.T) {
	p := NewProcessor(newFakeObjects(), pattern.NewStrategy(), storagedomain.ObjectRef{}, "out", "processed-", "Comments")

	_, err := p.Process(context.Background(), "in", "data.csv")

	var storageErr *storagedomain.StorageError
	assert.ErrorAs(t, err, &storageErr)
}
