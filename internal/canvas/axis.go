package canvas

import (
	"fmt"

	"github.com/hitoshi/skillmap/internal/model"
)

// Axis は縦軸・横軸のどちらかを表す。
type Axis int

const (
	AxisVertical Axis = iota + 1
	AxisHorizontal
)

// String はURLやJSONで使う軸名を返す。
func (a Axis) String() string {
	switch a {
	case AxisVertical:
		return "vertical"
	case AxisHorizontal:
		return "horizontal"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// ParseAxis は "vertical" / "horizontal" を Axis に変換する。
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "vertical":
		return AxisVertical, nil
	case "horizontal":
		return AxisHorizontal, nil
	default:
		return 0, fmt.Errorf("unknown axis: %q", s)
	}
}

// Direction は軸の正・負の端を表す。
type Direction int

const (
	DirectionPositive Direction = iota + 1
	DirectionNegative
)

// String は方向名を返す。
func (d Direction) String() string {
	switch d {
	case DirectionPositive:
		return "positive"
	case DirectionNegative:
		return "negative"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection は "positive" / "negative" を Direction に変換する。
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "positive":
		return DirectionPositive, nil
	case "negative":
		return DirectionNegative, nil
	default:
		return 0, fmt.Errorf("unknown direction: %q", s)
	}
}

// SetAxisCaption は指定した軸・方向のキャプションを書き換える。
func SetAxisCaption(cfg *model.MapConfig, axis Axis, dir Direction, value string) error {
	var pair *model.AxisPair
	switch axis {
	case AxisVertical:
		pair = &cfg.VerticalAxis
	case AxisHorizontal:
		pair = &cfg.HorizontalAxis
	default:
		return fmt.Errorf("unknown axis: %v", axis)
	}

	switch dir {
	case DirectionPositive:
		pair.Positive = value
	case DirectionNegative:
		pair.Negative = value
	default:
		return fmt.Errorf("unknown direction: %v", dir)
	}
	return nil
}

// AxisCaption は指定した軸・方向のキャプションを返す。
func AxisCaption(cfg model.MapConfig, axis Axis, dir Direction) string {
	var pair model.AxisPair
	switch axis {
	case AxisVertical:
		pair = cfg.VerticalAxis
	case AxisHorizontal:
		pair = cfg.HorizontalAxis
	default:
		return ""
	}
	if dir == DirectionNegative {
		return pair.Negative
	}
	if dir == DirectionPositive {
		return pair.Positive
	}
	return ""
}

// AxisAnchor は軸キャプションの描画位置。
// RotationDegrees は時計回りの回転角（横軸のキャプションは縦書きにする）。
type AxisAnchor struct {
	Axis            string   `json:"axis"`
	Direction       string   `json:"direction"`
	Text            string   `json:"text"`
	Position        Position `json:"position"`
	RotationDegrees float64  `json:"rotation"`
}

// axisEdgeInset はキャンバス端からキャプションまでの距離（%）。
const axisEdgeInset = 2.0

// AxisCaptionAnchors は4つの軸キャプションの描画位置を返す。
// 縦軸の正は上端中央、負は下端中央、横軸の負は左端中央、正は右端中央。
func AxisCaptionAnchors(cfg model.MapConfig) []AxisAnchor {
	return []AxisAnchor{
		{
			Axis: AxisVertical.String(), Direction: DirectionPositive.String(),
			Text:     cfg.VerticalAxis.Positive,
			Position: Position{LeftPercent: 50, TopPercent: axisEdgeInset},
		},
		{
			Axis: AxisVertical.String(), Direction: DirectionNegative.String(),
			Text:     cfg.VerticalAxis.Negative,
			Position: Position{LeftPercent: 50, TopPercent: 100 - axisEdgeInset},
		},
		{
			Axis: AxisHorizontal.String(), Direction: DirectionNegative.String(),
			Text:            cfg.HorizontalAxis.Negative,
			Position:        Position{LeftPercent: axisEdgeInset, TopPercent: 50},
			RotationDegrees: -90,
		},
		{
			Axis: AxisHorizontal.String(), Direction: DirectionPositive.String(),
			Text:            cfg.HorizontalAxis.Positive,
			Position:        Position{LeftPercent: 100 - axisEdgeInset, TopPercent: 50},
			RotationDegrees: 90,
		},
	}
}
