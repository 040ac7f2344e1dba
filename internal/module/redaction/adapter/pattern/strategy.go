package pattern

import (
	"context"
	"regexp"

	"github.com/jinford/pii-redactor/internal/module/redaction/domain"
)

// rule はひとつの検出パターンと置換タグの組です
type rule struct {
	re  *regexp.Regexp
	tag domain.Tag
}

// 適用順は固定: メール → クレジットカード → 政府ID → 電話番号。
// メールのローカル部に含まれる数字列を後続のパターンが拾わないよう、
// またカード番号の一部を電話番号として誤検出しないよう、この順序を保つ。
var rules = []rule{
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), domain.TagEmail},
	{regexp.MustCompile(`\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`), domain.TagCreditCard},
	{regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), domain.TagGovID},
	{regexp.MustCompile(`\(?\b\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`), domain.TagPhone},
}

// Strategy は正規表現ベースのPII置換戦略です。
// モデル呼び出しを伴わないため常に成功し、同じ入力に対して冪等に動作する。
type Strategy struct{}

// NewStrategy は正規表現戦略を作成します
func NewStrategy() *Strategy {
	return &Strategy{}
}

// Redact は既知のパターンに一致する部分文字列をタグに置き換えます
func (s *Strategy) Redact(_ context.Context, text string) string {
	for _, r := range rules {
		text = r.re.ReplaceAllString(text, string(r.tag))
	}
	return text
}

// インターフェース実装の確認
var _ domain.Strategy = (*Strategy)(nil)
