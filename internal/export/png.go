// Package export はスキルマップをPNG画像として描画する。
package export

import (
	"fmt"
	"image/color"
	"io"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/hitoshi/skillmap/internal/canvas"
	"github.com/hitoshi/skillmap/internal/editor"
)

const (
	// DefaultWidth は出力画像のデフォルト幅（px）。
	DefaultWidth = 1200
	// DefaultHeight は出力画像のデフォルト高さ（px）。
	DefaultHeight = 1200

	minSize = 200
	maxSize = 4096
)

var (
	backgroundColor = color.White
	axisColor       = color.RGBA{R: 0x37, G: 0x41, B: 0x51, A: 0xff}
	gridColor       = color.RGBA{R: 0xd1, G: 0xd5, B: 0xdb, A: 0xff}
	captionColor    = color.RGBA{R: 0x6b, G: 0x72, B: 0x80, A: 0xff}
	axisTextColor   = color.RGBA{R: 0x11, G: 0x18, B: 0x27, A: 0xff}
)

// Renderer はLayoutをPNGに描画する。
type Renderer struct {
	width  int
	height int
	font   *truetype.Font
}

// NewRenderer は新しいRendererを生成する。
// fontTTFが空の場合はGo Regularを使う（日本語グリフは含まれないため、必要に応じてフォントを渡す）。
// サイズは[200, 4096]に丸める。
func NewRenderer(width, height int, fontTTF []byte) (*Renderer, error) {
	if len(fontTTF) == 0 {
		fontTTF = goregular.TTF
	}
	f, err := truetype.Parse(fontTTF)
	if err != nil {
		return nil, fmt.Errorf("フォントの解析に失敗しました: %w", err)
	}
	return &Renderer{
		width:  clampSize(width, DefaultWidth),
		height: clampSize(height, DefaultHeight),
		font:   f,
	}, nil
}

func clampSize(v, def int) int {
	if v <= 0 {
		return def
	}
	return max(minSize, min(v, maxSize))
}

// Size は出力画像のサイズを返す。
func (r *Renderer) Size() (width, height int) {
	return r.width, r.height
}

// Render はタイトルと描画位置一式を受け取り、PNGをwに書き出す。
func (r *Renderer) Render(w io.Writer, title string, layout editor.Layout) error {
	dc := gg.NewContext(r.width, r.height)
	dc.SetColor(backgroundColor)
	dc.Clear()

	r.drawGrid(dc)
	r.drawQuadrantCaptions(dc, layout.Quadrants)
	r.drawAxisCaptions(dc, layout.Axes)
	r.drawLabels(dc, layout.Labels)

	if title != "" {
		dc.SetFontFace(r.face(r.fontSize(0.028)))
		dc.SetColor(axisTextColor)
		dc.DrawStringAnchored(title, 12, 12, 0, 1)
	}

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("PNGのエンコードに失敗しました: %w", err)
	}
	return nil
}

func (r *Renderer) face(size float64) font.Face {
	return truetype.NewFace(r.font, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// fontSize は画像の短辺に対する比率からフォントサイズを求める。
func (r *Renderer) fontSize(ratio float64) float64 {
	return float64(min(r.width, r.height)) * ratio
}

// at はパーセント位置を画像上のピクセル座標に変換する。
func (r *Renderer) at(pos canvas.Position) (x, y float64) {
	p := canvas.FromPercent(pos, canvas.Rect{Width: float64(r.width), Height: float64(r.height)})
	return p.X, p.Y
}

// drawGrid は2本の主軸と各象限の2x2サブグリッドを描く。
func (r *Renderer) drawGrid(dc *gg.Context) {
	w, h := float64(r.width), float64(r.height)

	dc.SetColor(gridColor)
	dc.SetLineWidth(1)
	dc.SetDash(6, 4)
	for _, f := range []float64{0.25, 0.75} {
		dc.DrawLine(w*f, 0, w*f, h)
		dc.DrawLine(0, h*f, w, h*f)
	}
	dc.Stroke()
	dc.SetDash()

	dc.SetColor(axisColor)
	dc.SetLineWidth(2)
	dc.DrawLine(w/2, 0, w/2, h)
	dc.DrawLine(0, h/2, w, h/2)
	dc.Stroke()
}

func (r *Renderer) drawQuadrantCaptions(dc *gg.Context, captions []canvas.PlacedCaption) {
	dc.SetFontFace(r.face(r.fontSize(0.018)))
	dc.SetColor(captionColor)
	for _, c := range captions {
		if c.Text == "" {
			continue
		}
		x, y := r.at(c.Position)
		dc.DrawStringAnchored(c.Text, x, y, 0.5, 0.5)
	}
}

func (r *Renderer) drawAxisCaptions(dc *gg.Context, anchors []canvas.AxisAnchor) {
	dc.SetFontFace(r.face(r.fontSize(0.022)))
	dc.SetColor(axisTextColor)
	for _, a := range anchors {
		if a.Text == "" {
			continue
		}
		x, y := r.at(a.Position)
		dc.Push()
		if a.RotationDegrees != 0 {
			dc.RotateAbout(gg.Radians(a.RotationDegrees), x, y)
		}
		dc.DrawStringAnchored(a.Text, x, y, 0.5, 0.5)
		dc.Pop()
	}
}

// drawLabels はスキルラベルを角丸のピルとして描く。
func (r *Renderer) drawLabels(dc *gg.Context, labels []editor.PlacedLabel) {
	size := r.fontSize(0.02)
	dc.SetFontFace(r.face(size))
	padX, padY := size*0.8, size*0.45

	for _, l := range labels {
		x, y := r.at(l.Position)
		tw, th := dc.MeasureString(l.Text)
		pw, ph := tw+padX*2, th+padY*2

		dc.SetHexColor(l.Color)
		dc.DrawRoundedRectangle(x-pw/2, y-ph/2, pw, ph, ph/2)
		dc.Fill()

		dc.SetColor(color.White)
		dc.DrawStringAnchored(l.Text, x, y, 0.5, 0.35)
	}
}
