package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
)

const (
	markerRadius      = 5
	markerStrokeWidth = 2
	labelFontSize     = 12
	labelHaloPx       = 2
)

var errEmptyCanvas = errors.New("overlay has an empty canvas")

var (
	fontOnce  sync.Once
	labelFont *truetype.Font
	fontErr   error
)

func loadLabelFont() (*truetype.Font, error) {
	fontOnce.Do(func() {
		labelFont, fontErr = truetype.Parse(gobold.TTF)
	})
	return labelFont, fontErr
}

// rasterizeOverlay draws the overlay onto a transparent RGBA layer the size
// of the background
func rasterizeOverlay(o Overlay) (img image.Image, err error) {
	if o.Width <= 0 || o.Height <= 0 {
		return nil, errEmptyCanvas
	}
	f, err := loadLabelFont()
	if err != nil {
		return nil, fmt.Errorf("failed to load label font: %w", err)
	}
	// gg panics on some degenerate paths
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, fmt.Errorf("overlay rasterization panicked: %v", r)
		}
	}()

	dc := gg.NewContext(o.Width, o.Height)

	if len(o.Polyline) > 1 {
		dc.SetLineJoin(gg.LineJoinRound)
		dc.SetLineCap(gg.LineCapRound)
		dc.SetLineWidth(float64(o.Weight))
		dc.SetColor(o.Stroke.NRGBA())
		dc.MoveTo(float64(o.Polyline[0].X), float64(o.Polyline[0].Y))
		for _, p := range o.Polyline[1:] {
			dc.LineTo(float64(p.X), float64(p.Y))
		}
		dc.Stroke()
	}

	for _, m := range o.Markers {
		dc.DrawCircle(float64(m.X), float64(m.Y), markerRadius)
		dc.SetColor(color.White)
		dc.FillPreserve()
		dc.SetColor(color.Black)
		dc.SetLineWidth(markerStrokeWidth)
		dc.Stroke()
	}

	if len(o.Markers) > 0 {
		face := truetype.NewFace(f, &truetype.Options{Size: labelFontSize, Hinting: font.HintingFull})
		defer face.Close()
		dc.SetFontFace(face)
		for _, m := range o.Markers {
			drawHaloLabel(dc, m.Label, float64(m.TextX), float64(m.TextY))
		}
	}

	return dc.Image(), nil
}

// drawHaloLabel draws black text centred on x with its baseline at y, over a
// white halo made of offset copies
func drawHaloLabel(dc *gg.Context, label string, x, y float64) {
	dc.SetColor(color.White)
	for dx := -labelHaloPx; dx <= labelHaloPx; dx++ {
		for dy := -labelHaloPx; dy <= labelHaloPx; dy++ {
			if dx == 0 && dy == 0 || dx*dx+dy*dy > labelHaloPx*labelHaloPx {
				continue
			}
			dc.DrawStringAnchored(label, x+float64(dx), y+float64(dy), 0.5, 0)
		}
	}
	dc.SetColor(color.Black)
	dc.DrawStringAnchored(label, x, y, 0.5, 0)
}
