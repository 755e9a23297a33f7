// Package model はドメインモデルを定義する。
package model

import "time"

// QuadrantSize は1象限に配置するラベル数。
// 各インデックスのサブセル位置は canvas.SubCellPosition で固定されており、保存しない。
const QuadrantSize = 4

// PresetColors はスキルラベルに用意されたプリセットカラー。
var PresetColors = []string{
	"#3B82F6",
	"#EF4444",
	"#10B981",
	"#F59E0B",
	"#8B5CF6",
	"#EC4899",
	"#06B6D4",
	"#84CC16",
	"#F97316",
	"#6366F1",
	"#14B8A6",
	"#F43F5E",
}

// AxisPair は1本の軸の両端に表示するキャプション。
type AxisPair struct {
	Positive string `json:"positive"`
	Negative string `json:"negative"`
}

// Quadrants は4象限それぞれのサブセルラベル。
type Quadrants struct {
	TopRight    []string `json:"topRight"`
	TopLeft     []string `json:"topLeft"`
	BottomLeft  []string `json:"bottomLeft"`
	BottomRight []string `json:"bottomRight"`
}

// MapConfig はスキルマップ1枚分の軸・象限設定。
type MapConfig struct {
	VerticalAxis   AxisPair  `json:"verticalAxis"`
	HorizontalAxis AxisPair  `json:"horizontalAxis"`
	Quadrants      Quadrants `json:"quadrants"`
}

// NewMapConfig は全フィールドが空文字の設定を返す。
func NewMapConfig() MapConfig {
	return MapConfig{
		Quadrants: Quadrants{
			TopRight:    emptyQuadrant(),
			TopLeft:     emptyQuadrant(),
			BottomLeft:  emptyQuadrant(),
			BottomRight: emptyQuadrant(),
		},
	}
}

// Normalize は各象限の要素数をQuadrantSizeに揃える。
// 不足分は空文字で埋め、超過分は切り捨てる。nilスライスも空文字4件になる。
func (c *MapConfig) Normalize() {
	c.Quadrants.TopRight = fitQuadrant(c.Quadrants.TopRight)
	c.Quadrants.TopLeft = fitQuadrant(c.Quadrants.TopLeft)
	c.Quadrants.BottomLeft = fitQuadrant(c.Quadrants.BottomLeft)
	c.Quadrants.BottomRight = fitQuadrant(c.Quadrants.BottomRight)
}

// Clone は象限スライスを複製したコピーを返す。
func (c MapConfig) Clone() MapConfig {
	out := c
	out.Quadrants.TopRight = append([]string(nil), c.Quadrants.TopRight...)
	out.Quadrants.TopLeft = append([]string(nil), c.Quadrants.TopLeft...)
	out.Quadrants.BottomLeft = append([]string(nil), c.Quadrants.BottomLeft...)
	out.Quadrants.BottomRight = append([]string(nil), c.Quadrants.BottomRight...)
	return out
}

func emptyQuadrant() []string {
	return make([]string, QuadrantSize)
}

func fitQuadrant(labels []string) []string {
	out := emptyQuadrant()
	copy(out, labels)
	return out
}

// SkillLabel はキャンバス上でドラッグ可能なスキルラベル。
// X, Y は [0,1] に正規化された座標。
type SkillLabel struct {
	ID    string  `json:"id"`
	Text  string  `json:"text"`
	Color string  `json:"color"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// SkillMap は永続化されたスキルマップ行を表す。
type SkillMap struct {
	ID          string
	UserID      string
	Title       string
	Config      MapConfig
	SkillLabels []SkillLabel
	IsPublic    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SkillMapUpdate はスキルマップの部分更新内容。nilのフィールドは変更しない。
type SkillMapUpdate struct {
	Title       *string
	Config      *MapConfig
	SkillLabels []SkillLabel // nilは変更なし、空スライスは全削除
	IsPublic    *bool
}

// IsEmpty は更新対象のフィールドが1つもない場合にtrueを返す。
func (u SkillMapUpdate) IsEmpty() bool {
	return u.Title == nil && u.Config == nil && u.SkillLabels == nil && u.IsPublic == nil
}
