// Package editor はスキルマップ1枚分の編集状態を保持する。
//
// Session は軸・象限設定とスキルラベル集合をまとめたアプリケーション状態で、
// 1つのコントローラ（HTTPリクエスト1件など）が所有し、描画・ドラッグ処理に明示的に渡す。
// 書き手は常に1つで、ロックは持たない。
package editor

import (
	"errors"

	"github.com/hitoshi/skillmap/internal/canvas"
	"github.com/hitoshi/skillmap/internal/label"
	"github.com/hitoshi/skillmap/internal/model"
)

// ErrUnusableCanvas はキャンバス矩形がゼロサイズなどで座標を計算できない場合に返される。
// ラベルは更新されない。
var ErrUnusableCanvas = errors.New("canvas bounding box is unusable")

// Session は編集中のスキルマップの状態。
type Session struct {
	title    string
	isPublic bool
	config   model.MapConfig
	labels   *label.Store
}

// New は空の設定で編集セッションを開始する。newIDがnilの場合はUUIDv7を使う。
func New(newID label.IDGenerator) *Session {
	return &Session{
		config: model.NewMapConfig(),
		labels: label.NewStore(newID),
	}
}

// FromSkillMap は保存済みのスキルマップから編集セッションを復元する。
func FromSkillMap(m *model.SkillMap, newID label.IDGenerator) *Session {
	s := New(newID)
	s.title = m.Title
	s.isPublic = m.IsPublic
	s.config = m.Config.Clone()
	s.config.Normalize()
	s.labels.Replace(m.SkillLabels)
	return s
}

// Title はタイトルを返す。
func (s *Session) Title() string { return s.title }

// SetTitle はタイトルを変更する。
func (s *Session) SetTitle(title string) { s.title = title }

// Config は現在の設定のコピーを返す。
func (s *Session) Config() model.MapConfig { return s.config.Clone() }

// SetAxisCaption は軸キャプションを1つ書き換える。
func (s *Session) SetAxisCaption(axis canvas.Axis, dir canvas.Direction, value string) error {
	return canvas.SetAxisCaption(&s.config, axis, dir, value)
}

// SetQuadrantLabels は1象限分のラベルを置き換える。
func (s *Session) SetQuadrantLabels(q canvas.Quadrant, labels []string) error {
	return canvas.SetQuadrantLabels(&s.config, q, labels)
}

// ApplyConfig は自動生成や一括編集の結果で設定全体を置き換える。
func (s *Session) ApplyConfig(cfg model.MapConfig) {
	s.config = cfg.Clone()
	s.config.Normalize()
}

// AddLabel はラベルを追加する。
func (s *Session) AddLabel(d label.Draft) model.SkillLabel {
	return s.labels.Add(d)
}

// UpdateLabel はラベルを部分更新する。
func (s *Session) UpdateLabel(id string, p label.Patch) (model.SkillLabel, error) {
	return s.labels.Update(id, p)
}

// DeleteLabel はラベルを削除する。
func (s *Session) DeleteLabel(id string) error {
	return s.labels.Delete(id)
}

// MoveLabel はドラッグ終了点をキャンバス上の正規化座標に変換してラベル位置を更新する。
// 矩形が使えない場合は更新せずErrUnusableCanvasを返す。
func (s *Session) MoveLabel(id string, p canvas.Point, box canvas.Rect) (model.SkillLabel, error) {
	if _, ok := s.labels.Get(id); !ok {
		return model.SkillLabel{}, label.ErrNotFound
	}
	x, y, ok := canvas.Normalize(p, box)
	if !ok {
		return model.SkillLabel{}, ErrUnusableCanvas
	}
	return s.labels.Update(id, label.Patch{X: &x, Y: &y})
}

// Labels は追加順のラベル列を返す。
func (s *Session) Labels() []model.SkillLabel {
	return s.labels.List()
}

// Label は指定IDのラベルを返す。
func (s *Session) Label(id string) (model.SkillLabel, bool) {
	return s.labels.Get(id)
}

// SaveUpdate は現在の状態全体を永続化するための更新内容を返す。
func (s *Session) SaveUpdate() model.SkillMapUpdate {
	title := s.title
	cfg := s.Config()
	isPublic := s.isPublic
	return model.SkillMapUpdate{
		Title:       &title,
		Config:      &cfg,
		SkillLabels: s.labels.List(),
		IsPublic:    &isPublic,
	}
}

// PlacedLabel は描画位置を付与したスキルラベル。
type PlacedLabel struct {
	model.SkillLabel
	Position canvas.Position `json:"position"`
}

// Layout はキャンバス描画に必要な位置情報一式。
type Layout struct {
	Axes      []canvas.AxisAnchor    `json:"axes"`
	Quadrants []canvas.PlacedCaption `json:"quadrants"`
	Labels    []PlacedLabel          `json:"labels"`
}

// Layout は現在の状態からキャンバスの描画位置を計算する。
func (s *Session) Layout() Layout {
	labels := s.labels.List()
	placed := make([]PlacedLabel, len(labels))
	for i, l := range labels {
		placed[i] = PlacedLabel{
			SkillLabel: l,
			Position:   canvas.RenderPercent(l.X, l.Y),
		}
	}
	return Layout{
		Axes:      canvas.AxisCaptionAnchors(s.config),
		Quadrants: canvas.PlaceQuadrantCaptions(s.config),
		Labels:    placed,
	}
}
