// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizer はスキルマップのタイトル、軸・象限キャプション、ラベルテキストなど
// ユーザーや生成AIが与えるプレーンテキストからHTMLを取り除く。
// bluemondayのStrictPolicyで全タグを除去したうえでエンティティを戻し、
// 保存・API応答はプレーンテキストとして扱う（描画側でエスケープする）。
package security

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/hitoshi/skillmap/internal/model"
)

// MaxTextLength はキャプション1件あたりの最大文字数（rune数）。
const MaxTextLength = 200

// TextSanitizer はプレーンテキストのサニタイズ機能のインターフェース。
type TextSanitizer interface {
	// Sanitize はHTMLタグを除去し、前後の空白を取り除き、MaxTextLength文字に切り詰める。
	// 出力を再度Sanitizeしても変化しない（冪等）。
	Sanitize(raw string) string
}

type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerの新しいインスタンスを生成する。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{policy: bluemonday.StrictPolicy()}
}

// maxSanitizePasses はSanitizeが不動点に達するまでの最大パス数。
const maxSanitizePasses = 32

// Sanitize はHTMLタグを除去したプレーンテキストを返す。
// エンティティを戻した結果に新たなタグが現れることがあるため、出力が変化しなくなるまで繰り返す。
func (s *textSanitizer) Sanitize(raw string) string {
	out := raw
	for i := 0; i < maxSanitizePasses; i++ {
		next := s.pass(out)
		if next == out {
			break
		}
		out = next
	}
	return out
}

func (s *textSanitizer) pass(in string) string {
	if in == "" {
		return ""
	}
	out := html.UnescapeString(s.policy.Sanitize(in))
	out = strings.TrimSpace(out)
	if utf8.RuneCountInString(out) > MaxTextLength {
		out = string([]rune(out)[:MaxTextLength])
	}
	return out
}

// SanitizeConfig はMapConfigの全キャプションをサニタイズする。
func SanitizeConfig(s TextSanitizer, cfg model.MapConfig) model.MapConfig {
	out := cfg.Clone()
	out.VerticalAxis.Positive = s.Sanitize(out.VerticalAxis.Positive)
	out.VerticalAxis.Negative = s.Sanitize(out.VerticalAxis.Negative)
	out.HorizontalAxis.Positive = s.Sanitize(out.HorizontalAxis.Positive)
	out.HorizontalAxis.Negative = s.Sanitize(out.HorizontalAxis.Negative)
	for _, q := range [][]string{
		out.Quadrants.TopRight,
		out.Quadrants.TopLeft,
		out.Quadrants.BottomLeft,
		out.Quadrants.BottomRight,
	} {
		for i := range q {
			q[i] = s.Sanitize(q[i])
		}
	}
	return out
}

// SanitizeLabels はスキルラベルのテキストをサニタイズしたコピーを返す。
func SanitizeLabels(s TextSanitizer, labels []model.SkillLabel) []model.SkillLabel {
	if labels == nil {
		return nil
	}
	out := make([]model.SkillLabel, len(labels))
	for i, l := range labels {
		l.Text = s.Sanitize(l.Text)
		out[i] = l
	}
	return out
}
