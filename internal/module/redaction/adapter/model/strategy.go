package model

import (
	"context"
	"log/slog"

	"github.com/pkoukk/tiktoken-go"

	"github.com/jinford/pii-redactor/internal/module/redaction/domain"
)

// encodingName はトークン数見積もりに使うエンコーディング
const encodingName = "cl100k_base"

// Strategy は言語モデルでPIIを置き換える戦略です。
// モデル呼び出しに失敗した場合やトークン上限を超える場合は
// 元のテキストをそのまま返す（フェイルオープン）。
type Strategy struct {
	converser      domain.Converser
	maxInputTokens int
	encoder        *tiktoken.Tiktoken
	logger         *slog.Logger
}

type Option func(*Strategy)

// WithLogger はロガーを差し替えます
func WithLogger(logger *slog.Logger) Option {
	return func(s *Strategy) {
		s.logger = logger
	}
}

// NewStrategy はモデル戦略を作成します。
// maxInputTokens が0以下の場合、トークン上限チェックは行わない。
func NewStrategy(converser domain.Converser, maxInputTokens int, opts ...Option) *Strategy {
	s := &Strategy{
		converser:      converser,
		maxInputTokens: maxInputTokens,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if maxInputTokens > 0 {
		enc, err := tiktoken.GetEncoding(encodingName)
		if err != nil {
			// エンコーディングが取得できない場合は上限チェックなしで続行する
			s.logger.Warn("failed to load token encoding, token limit check disabled", slog.String("error", err.Error()))
		} else {
			s.encoder = enc
		}
	}

	return s
}

// Redact はモデルにテキストを渡してタグ付けした結果を返します
func (s *Strategy) Redact(ctx context.Context, text string) string {
	if text == "" {
		return text
	}

	if s.encoder != nil {
		tokens := len(s.encoder.Encode(text, nil, nil))
		if tokens > s.maxInputTokens {
			s.logger.Warn("text exceeds token limit, skipping model redaction",
				slog.Int("tokens", tokens),
				slog.Int("limit", s.maxInputTokens),
			)
			return text
		}
	}

	redacted, err := s.converser.Converse(ctx, text)
	if err != nil {
		s.logger.Warn("model redaction failed, returning original text", slog.String("error", err.Error()))
		return text
	}
	return redacted
}

// インターフェース実装の確認
var _ domain.Strategy = (*Strategy)(nil)
