// Package label はスキルマップ1枚分の編集セッションで使うスキルラベルの集合を提供する。
//
// Store は単一の書き手（1つの編集セッション）から同期的に操作される前提で、
// ロックを持たない。並び順は追加順で、描画上の意味はない。
package label

import (
	"errors"

	"github.com/google/uuid"
	"github.com/hitoshi/skillmap/internal/canvas"
	"github.com/hitoshi/skillmap/internal/model"
)

// ErrNotFound は指定IDのラベルが存在しない場合に返される。
var ErrNotFound = errors.New("skill label not found")

// DefaultX, DefaultY は新規ラベルの初期位置（キャンバス中央）。
const (
	DefaultX = 0.5
	DefaultY = 0.5
)

// IDGenerator はラベルIDを発行する関数。
type IDGenerator func() string

// NewUUIDGenerator はUUIDv7でIDを発行するIDGeneratorを返す。
// google/uuidのUUIDv7は同一ミリ秒内でもプロセス内のシーケンスで単調増加するため、
// 連続追加でも衝突しない。乱数源の読み取りに失敗した場合はUUIDv4を返す。
// 重複はStore側でも再採番する。
func NewUUIDGenerator() IDGenerator {
	return func() string {
		id, err := uuid.NewV7()
		if err != nil {
			return uuid.NewString()
		}
		return id.String()
	}
}

// Draft はID採番前のラベル。
type Draft struct {
	Text  string
	Color string
	X     float64
	Y     float64
}

// NewDraft は中央に配置した新規ラベルを返す。
func NewDraft(text, color string) Draft {
	return Draft{Text: text, Color: color, X: DefaultX, Y: DefaultY}
}

// Patch はラベルの部分更新内容。nilのフィールドは変更しない。
type Patch struct {
	Text  *string
	Color *string
	X     *float64
	Y     *float64
}

// Store は追加順を保持するスキルラベルの集合。
type Store struct {
	labels []model.SkillLabel
	newID  IDGenerator
}

// NewStore は空のStoreを生成する。newIDがnilの場合はUUIDv7を使う。
func NewStore(newID IDGenerator) *Store {
	if newID == nil {
		newID = NewUUIDGenerator()
	}
	return &Store{newID: newID}
}

// Replace は保存済みのラベル列でStoreの中身を置き換える。
// 座標は[0,1]に収め直し、IDが空または重複しているラベルには新しいIDを振る。
func (s *Store) Replace(labels []model.SkillLabel) {
	s.labels = make([]model.SkillLabel, 0, len(labels))
	for _, l := range labels {
		if l.ID == "" || s.indexOf(l.ID) >= 0 {
			l.ID = s.freshID()
		}
		l.X = canvas.Clamp01(l.X)
		l.Y = canvas.Clamp01(l.Y)
		s.labels = append(s.labels, l)
	}
}

// Add は新しいIDを採番してラベルを末尾に追加し、追加したラベルを返す。
func (s *Store) Add(d Draft) model.SkillLabel {
	l := model.SkillLabel{
		ID:    s.freshID(),
		Text:  d.Text,
		Color: d.Color,
		X:     canvas.Clamp01(d.X),
		Y:     canvas.Clamp01(d.Y),
	}
	s.labels = append(s.labels, l)
	return l
}

// Update はpatchの非nilフィールドだけを該当ラベルにマージする。
// 該当IDがなければErrNotFoundを返し、何も変更しない。
func (s *Store) Update(id string, p Patch) (model.SkillLabel, error) {
	i := s.indexOf(id)
	if i < 0 {
		return model.SkillLabel{}, ErrNotFound
	}
	l := &s.labels[i]
	if p.Text != nil {
		l.Text = *p.Text
	}
	if p.Color != nil {
		l.Color = *p.Color
	}
	if p.X != nil {
		l.X = canvas.Clamp01(*p.X)
	}
	if p.Y != nil {
		l.Y = canvas.Clamp01(*p.Y)
	}
	return *l, nil
}

// Delete は該当ラベルを削除する。存在しない場合はErrNotFoundを返す（無視してよい）。
func (s *Store) Delete(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	s.labels = append(s.labels[:i], s.labels[i+1:]...)
	return nil
}

// Get は該当ラベルを返す。
func (s *Store) Get(id string) (model.SkillLabel, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return model.SkillLabel{}, false
	}
	return s.labels[i], true
}

// List は追加順のラベル列のコピーを返す。空の場合も非nilのスライスを返す。
func (s *Store) List() []model.SkillLabel {
	out := make([]model.SkillLabel, len(s.labels))
	copy(out, s.labels)
	return out
}

// Len はラベル数を返す。
func (s *Store) Len() int {
	return len(s.labels)
}

func (s *Store) indexOf(id string) int {
	for i := range s.labels {
		if s.labels[i].ID == id {
			return i
		}
	}
	return -1
}

// freshID は既存ラベルと重複しないIDを返す。
func (s *Store) freshID() string {
	for {
		id := s.newID()
		if id != "" && s.indexOf(id) < 0 {
			return id
		}
	}
}
