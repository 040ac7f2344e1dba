package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jinford/pii-redactor/internal/module/storage/domain"
)

// contentType は書き込むオブジェクトのContent-Type
const contentType = "text/csv"

// Store はAmazon S3を使ったオブジェクトストア実装です
type Store struct {
	client *s3.Client
}

// NewStore はデフォルトのAWS認証チェーンからStoreを作成します
func NewStore(ctx context.Context) (*Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &Store{client: s3.NewFromConfig(cfg)}, nil
}

// NewStoreWithClient は既存のS3クライアントからStoreを作成します
func NewStoreWithClient(client *s3.Client) *Store {
	return &Store{client: client}
}

// Get はオブジェクトの内容を読み出します
func (s *Store) Get(ctx context.Context, ref domain.ObjectRef) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(ref.Bucket),
		Key:    aws.String(ref.Key),
	})
	if err != nil {
		return nil, &domain.StorageError{Op: "get", Ref: ref, Err: err}
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, &domain.StorageError{Op: "get", Ref: ref, Err: err}
	}
	return data, nil
}

// Put はオブジェクトを書き込みます
func (s *Store) Put(ctx context.Context, ref domain.ObjectRef, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(ref.Bucket),
		Key:         aws.String(ref.Key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return &domain.StorageError{Op: "put", Ref: ref, Err: err}
	}
	return nil
}

// インターフェース実装の確認
var _ domain.Store = (*Store)(nil)
