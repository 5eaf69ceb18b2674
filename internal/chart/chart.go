// Package chart renders quiz accuracy as a PNG bar chart.
package chart

import (
	"fmt"
	"image/color"
	"io"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"flashquiz-backend/internal/quiz"
)

const (
	Width  = 480
	Height = 320

	margin    = 40.0
	barWidth  = 120.0
	titleSize = 18
	labelSize = 14
)

var (
	correctColor   = color.NRGBA{R: 0x2e, G: 0x9e, B: 0x5b, A: 0xff}
	incorrectColor = color.NRGBA{R: 0xd9, G: 0x48, B: 0x3b, A: 0xff}
	axisColor      = color.NRGBA{R: 0x44, G: 0x44, B: 0x44, A: 0xff}
)

var (
	fontOnce sync.Once
	fontErr  error
	parsed   *truetype.Font
)

func face(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		parsed, fontErr = truetype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", fontErr)
	}
	return truetype.NewFace(parsed, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}

// RenderBar draws a Correct/Incorrect bar chart for st and writes it to w as
// PNG. With nothing answered both bars are empty and the title says so.
func RenderBar(w io.Writer, st quiz.Stats) error {
	titleFace, err := face(titleSize)
	if err != nil {
		return err
	}
	labelFace, err := face(labelSize)
	if err != nil {
		return err
	}

	dc := gg.NewContext(Width, Height)
	dc.SetColor(color.White)
	dc.Clear()

	title := "No answers yet"
	if acc := st.AccuracyString(); acc != "" {
		title = "Accuracy " + acc
	}
	dc.SetFontFace(titleFace)
	dc.SetColor(axisColor)
	dc.DrawStringAnchored(title, Width/2, margin/2+4, 0.5, 0.5)

	baseline := float64(Height) - margin
	top := margin + 20
	dc.SetLineWidth(2)
	dc.DrawLine(margin, baseline, float64(Width)-margin, baseline)
	dc.Stroke()

	maxVal := st.Correct
	if st.Incorrect > maxVal {
		maxVal = st.Incorrect
	}

	bars := []struct {
		label string
		value int
		color color.Color
	}{
		{"Correct", st.Correct, correctColor},
		{"Incorrect", st.Incorrect, incorrectColor},
	}

	dc.SetFontFace(labelFace)
	slot := (float64(Width) - 2*margin) / float64(len(bars))
	for i, b := range bars {
		cx := margin + slot*float64(i) + slot/2
		h := 0.0
		if maxVal > 0 {
			h = (baseline - top) * float64(b.value) / float64(maxVal)
		}

		dc.SetColor(b.color)
		dc.DrawRectangle(cx-barWidth/2, baseline-h, barWidth, h)
		dc.Fill()

		dc.SetColor(axisColor)
		dc.DrawStringAnchored(fmt.Sprintf("%d", b.value), cx, baseline-h-10, 0.5, 0.5)
		dc.DrawStringAnchored(b.label, cx, baseline+16, 0.5, 0.5)
	}

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}
