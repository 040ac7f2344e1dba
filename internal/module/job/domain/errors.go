package domain

import "fmt"

// ValidationError は入力検証の失敗を表します
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// BackendError はモデルバックエンドの呼び出し失敗を表します
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s failed: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// ProcessingFailedError はバッチ投入とフォールバックの両方が失敗したことを表します
type ProcessingFailedError struct {
	SubmitErr   error
	FallbackErr error
}

func (e *ProcessingFailedError) Error() string {
	return fmt.Sprintf("both batch submission and direct processing failed: submit: %v, fallback: %v", e.SubmitErr, e.FallbackErr)
}

func (e *ProcessingFailedError) Unwrap() []error {
	return []error{e.SubmitErr, e.FallbackErr}
}
