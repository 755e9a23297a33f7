// Package generator は自由記述のプロンプトから縦横の軸ラベルと4象限×4件の象限ラベルを
// 生成AIに作らせ、MapConfigとして返すクライアントを提供する。
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/hitoshi/skillmap/internal/metrics"
	"github.com/hitoshi/skillmap/internal/model"
	"github.com/hitoshi/skillmap/internal/security"
)

// DefaultTimeout は生成呼び出し1回あたりのデフォルトのタイムアウト。
const DefaultTimeout = 30 * time.Second

// Backend は生成AIの呼び出し口。genaiのクライアントをラップした実装とテスト用フェイクがある。
type Backend interface {
	GenerateContent(ctx context.Context, prompt string) (*genai.GenerateContentResponse, error)
}

// Client は軸・象限設定の生成クライアント。
// 呼び出しごとにタイムアウトを設けバックエンドへ1回だけ問い合わせる。リトライしない。
type Client struct {
	backend   Backend
	sanitizer security.TextSanitizer
	metrics   metrics.MetricsCollector
	logger    *slog.Logger
	timeout   time.Duration
}

// NewClient はClientの新しいインスタンスを生成する。
// timeoutが0以下の場合はDefaultTimeout、collectorがnilの場合は記録しない。
func NewClient(
	backend Backend,
	sanitizer security.TextSanitizer,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
	timeout time.Duration,
) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Client{
		backend:   backend,
		sanitizer: sanitizer,
		metrics:   collector,
		logger:    logger,
		timeout:   timeout,
	}
}

// Generate はプロンプトから軸・象限設定を生成する。
// 空白のみのプロンプトはバックエンドを呼ばずにErrEmptyPromptを返す。
func (c *Client) Generate(ctx context.Context, prompt string) (*model.MapConfig, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.backend.GenerateContent(ctx, BuildPrompt(prompt))
	c.metrics.RecordGenerationLatency(time.Since(start))
	if err != nil {
		c.logger.Error("生成AIの呼び出しに失敗しました",
			slog.String("error", err.Error()),
		)
		c.metrics.RecordGenerationFailure("backend")
		return nil, &GenerationError{Cause: err}
	}

	text, err := responseText(resp)
	if err != nil {
		c.logger.Error("生成AIのレスポンスが不正です",
			slog.String("error", err.Error()),
		)
		if errors.Is(err, ErrNoCandidates) {
			c.metrics.RecordGenerationFailure("no_candidates")
		} else {
			c.metrics.RecordGenerationFailure("empty_response")
		}
		return nil, &GenerationError{Reason: err}
	}

	cfg, err := ParseConfig(text)
	if err != nil {
		c.logger.Error("生成AIのレスポンスのパースに失敗しました",
			slog.String("error", err.Error()),
			slog.String("raw", text),
		)
		c.metrics.RecordParseFailure()
		return nil, err
	}

	if c.sanitizer != nil {
		cfg = security.SanitizeConfig(c.sanitizer, cfg)
	}
	cfg.Normalize()

	c.metrics.RecordGenerationSuccess()
	c.logger.Info("軸・象限設定を生成しました",
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return &cfg, nil
}

// responseText は先頭候補のテキストパートを連結して返す。
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", ErrNoCandidates
	}
	content := resp.Candidates[0].Content
	if content == nil {
		return "", ErrEmptyResponse
	}
	var b strings.Builder
	for _, part := range content.Parts {
		if part != nil && !part.Thought {
			b.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// ParseConfig はコードフェンスを除去した生成テキストをMapConfigとして解釈する。
// 象限の件数が4件でない場合もParseErrorとする。
func ParseConfig(raw string) (model.MapConfig, error) {
	var cfg model.MapConfig
	if err := json.Unmarshal([]byte(StripCodeFence(raw)), &cfg); err != nil {
		return model.MapConfig{}, &ParseError{Raw: raw, Err: err}
	}

	quadrants := []struct {
		name   string
		labels []string
	}{
		{"topRight", cfg.Quadrants.TopRight},
		{"topLeft", cfg.Quadrants.TopLeft},
		{"bottomLeft", cfg.Quadrants.BottomLeft},
		{"bottomRight", cfg.Quadrants.BottomRight},
	}
	for _, q := range quadrants {
		if len(q.labels) != model.QuadrantSize {
			return model.MapConfig{}, &ParseError{
				Raw: raw,
				Err: fmt.Errorf("quadrant %s has %d labels, want %d", q.name, len(q.labels), model.QuadrantSize),
			}
		}
	}
	return cfg, nil
}

// StripCodeFence は```json や ``` で囲まれたテキストから囲みを取り除く。
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
