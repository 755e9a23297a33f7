package canvas

import "math"

// Point はスクリーン座標（px）。
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect はキャンバス要素のバウンディングボックス（px）。
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid は幅・高さが正の有限値で、原点も有限であればtrueを返す。
func (r Rect) Valid() bool {
	return finite(r.Left) && finite(r.Top) &&
		finite(r.Width) && finite(r.Height) &&
		r.Width > 0 && r.Height > 0
}

// Clamp01 は v を [0,1] に収める。NaNは中央(0.5)として扱う。
func Clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0.5
	}
	return math.Max(0, math.Min(1, v))
}

// Normalize はドラッグ終了点をキャンバス内の正規化座標に変換し、[0,1]に収める。
// 矩形がゼロサイズ・非有限、または点が非有限の場合はok=falseを返し、
// 呼び出し側は更新をスキップする。
func Normalize(p Point, box Rect) (x, y float64, ok bool) {
	if !box.Valid() || !finite(p.X) || !finite(p.Y) {
		return 0, 0, false
	}
	x = (p.X - box.Left) / box.Width
	y = (p.Y - box.Top) / box.Height
	return Clamp01(x), Clamp01(y), true
}

// RenderPercent は正規化座標を描画用のパーセントオフセットに変換する。
func RenderPercent(x, y float64) Position {
	return Position{LeftPercent: x * 100, TopPercent: y * 100}
}

// FromPercent はパーセント位置をキャンバス矩形上のスクリーン座標に戻す。
// RenderPercent の逆変換。
func FromPercent(pos Position, box Rect) Point {
	return Point{
		X: box.Left + pos.LeftPercent/100*box.Width,
		Y: box.Top + pos.TopPercent/100*box.Height,
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
