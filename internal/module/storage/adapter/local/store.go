package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jinford/pii-redactor/internal/module/storage/domain"
)

// Store はローカルディレクトリをバケットに見立てたオブジェクトストアです。
// 開発・テスト用途を想定し、<root>/<bucket>/<key> にオブジェクトを配置する。
type Store struct {
	root string
}

// NewStore はルートディレクトリを指定してStoreを作成します
func NewStore(root string) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("local storage root is empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create local storage root: %w", err)
	}
	return &Store{root: root}, nil
}

// Get はオブジェクトの内容を読み出します
func (s *Store) Get(ctx context.Context, ref domain.ObjectRef) ([]byte, error) {
	data, err := os.ReadFile(s.path(ref))
	if err != nil {
		return nil, &domain.StorageError{Op: "get", Ref: ref, Err: err}
	}
	return data, nil
}

// Put はオブジェクトを書き込みます
func (s *Store) Put(ctx context.Context, ref domain.ObjectRef, data []byte) error {
	path := s.path(ref)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &domain.StorageError{Op: "put", Ref: ref, Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &domain.StorageError{Op: "put", Ref: ref, Err: err}
	}
	return nil
}

func (s *Store) path(ref domain.ObjectRef) string {
	return filepath.Join(s.root, ref.Bucket, filepath.FromSlash(ref.Key))
}

// インターフェース実装の確認
var _ domain.Store = (*Store)(nil)
