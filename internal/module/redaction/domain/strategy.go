package domain

import "context"

// Strategy はテキスト中のPIIをタグに置き換える戦略です。
// Redact は全域関数であること: いかなる内部失敗でも panic やエラーにせず、
// 元のテキストをそのまま返す（コンテンツについてはフェイルオープン）。
type Strategy interface {
	Redact(ctx context.Context, text string) string
}

// Converser は同期型のモデルバックエンド（converse相当）です。
// 失敗はエラーとして返し、握りつぶすかどうかは呼び出し側が決める。
type Converser interface {
	Converse(ctx context.Context, text string) (string, error)
}
