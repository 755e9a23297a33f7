// Package canvas はスキルマップの座標モデルとキャンバス操作を提供する。
//
// キャンバスは [0,1]×[0,1] に正規化された平面で、中央の十字線で4象限に分かれる。
// 各象限はさらに 2×2 のサブセルに分かれ、象限ラベルの各インデックスが
// 1つのサブセルに固定で割り当てられる。
package canvas

import (
	"fmt"

	"github.com/hitoshi/skillmap/internal/model"
)

// Quadrant はキャンバスの象限を表す。
type Quadrant string

const (
	QuadrantTopRight    Quadrant = "topRight"
	QuadrantTopLeft     Quadrant = "topLeft"
	QuadrantBottomLeft  Quadrant = "bottomLeft"
	QuadrantBottomRight Quadrant = "bottomRight"
)

// Quadrants は描画順に並べた全象限。
var Quadrants = []Quadrant{
	QuadrantTopRight,
	QuadrantTopLeft,
	QuadrantBottomLeft,
	QuadrantBottomRight,
}

// ParseQuadrant は文字列を Quadrant に変換する。
func ParseQuadrant(s string) (Quadrant, error) {
	switch q := Quadrant(s); q {
	case QuadrantTopRight, QuadrantTopLeft, QuadrantBottomLeft, QuadrantBottomRight:
		return q, nil
	default:
		return "", fmt.Errorf("unknown quadrant: %q", s)
	}
}

// Position はキャンバス左上を原点としたパーセント座標。
type Position struct {
	LeftPercent float64 `json:"left"`
	TopPercent  float64 `json:"top"`
}

// Center はキャンバス中央。
var Center = Position{LeftPercent: 50, TopPercent: 50}

// topRightCells は右上象限のインデックス別サブセル中心。
// 0: 外側の角、1: 外側の行・内側の列、2: 内側の角、3: 内側の行・外側の列。
// 他の象限はこの表を左右・上下に反転したもの。
var topRightCells = [model.QuadrantSize]Position{
	{LeftPercent: 87.5, TopPercent: 12.5},
	{LeftPercent: 62.5, TopPercent: 12.5},
	{LeftPercent: 62.5, TopPercent: 37.5},
	{LeftPercent: 87.5, TopPercent: 37.5},
}

// SubCellPosition は象限ラベル index を表示するサブセル中心を返す。
// 範囲外の index や未知の象限にはキャンバス中央を返す。
func SubCellPosition(q Quadrant, index int) Position {
	if index < 0 || index >= model.QuadrantSize {
		return Center
	}
	p := topRightCells[index]

	switch q {
	case QuadrantTopRight:
	case QuadrantTopLeft:
		p.LeftPercent = 100 - p.LeftPercent
	case QuadrantBottomLeft:
		p.LeftPercent = 100 - p.LeftPercent
		p.TopPercent = 100 - p.TopPercent
	case QuadrantBottomRight:
		p.TopPercent = 100 - p.TopPercent
	default:
		return Center
	}
	return p
}

// QuadrantLabels は設定から指定象限のラベル列を取り出す。
func QuadrantLabels(cfg model.MapConfig, q Quadrant) []string {
	switch q {
	case QuadrantTopRight:
		return cfg.Quadrants.TopRight
	case QuadrantTopLeft:
		return cfg.Quadrants.TopLeft
	case QuadrantBottomLeft:
		return cfg.Quadrants.BottomLeft
	case QuadrantBottomRight:
		return cfg.Quadrants.BottomRight
	default:
		return nil
	}
}

// SetQuadrantLabels は指定象限のラベル列を置き換える。
// ラベルはちょうど model.QuadrantSize 件でなければならない。
func SetQuadrantLabels(cfg *model.MapConfig, q Quadrant, labels []string) error {
	if len(labels) != model.QuadrantSize {
		return fmt.Errorf("quadrant %s needs %d labels, got %d", q, model.QuadrantSize, len(labels))
	}
	dst := append([]string(nil), labels...)

	switch q {
	case QuadrantTopRight:
		cfg.Quadrants.TopRight = dst
	case QuadrantTopLeft:
		cfg.Quadrants.TopLeft = dst
	case QuadrantBottomLeft:
		cfg.Quadrants.BottomLeft = dst
	case QuadrantBottomRight:
		cfg.Quadrants.BottomRight = dst
	default:
		return fmt.Errorf("unknown quadrant: %q", q)
	}
	return nil
}

// PlacedCaption は描画位置が確定した象限ラベル。
type PlacedCaption struct {
	Quadrant Quadrant `json:"quadrant"`
	Index    int      `json:"index"`
	Text     string   `json:"text"`
	Position Position `json:"position"`
}

// PlaceQuadrantCaptions は全象限のラベルをサブセル位置に配置する。
// 空文字のラベルも位置を持つが、描画側で省略してよい。
func PlaceQuadrantCaptions(cfg model.MapConfig) []PlacedCaption {
	out := make([]PlacedCaption, 0, len(Quadrants)*model.QuadrantSize)
	for _, q := range Quadrants {
		for i, text := range QuadrantLabels(cfg, q) {
			if i >= model.QuadrantSize {
				break
			}
			out = append(out, PlacedCaption{
				Quadrant: q,
				Index:    i,
				Text:     text,
				Position: SubCellPosition(q, i),
			})
		}
	}
	return out
}
