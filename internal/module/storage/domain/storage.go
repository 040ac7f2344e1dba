package domain

import (
	"context"
	"fmt"
)

// ObjectRef はオブジェクトストレージ上の1オブジェクトへの参照です
type ObjectRef struct {
	Bucket string
	Key    string
}

// URI はs3形式のURI表現を返します
func (r ObjectRef) URI() string {
	return fmt.Sprintf("s3://%s/%s", r.Bucket, r.Key)
}

// IsZero はバケット・キーが未設定かどうかを返します
func (r ObjectRef) IsZero() bool {
	return r.Bucket == "" && r.Key == ""
}

// Store はオブジェクトストレージへの読み書きを抽象化します
type Store interface {
	// Get はオブジェクトの内容を読み出す
	Get(ctx context.Context, ref ObjectRef) ([]byte, error)
	// Put はオブジェクトを書き込む（上書き）
	Put(ctx context.Context, ref ObjectRef, data []byte) error
}

// StorageError はストレージI/Oの失敗を表します
type StorageError struct {
	Op  string // "get" or "put"
	Ref ObjectRef
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed for %s: %v", e.Op, e.Ref.URI(), e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
