package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"captioner/internal/captions"
)

// DefaultFontSize is the glyph size in pixels at font scale 1.
const DefaultFontSize = 30.0

// Drawer measures and draws caption text. It is safe for concurrent use;
// faces are created per call because opentype faces are not.
type Drawer struct {
	font     *opentype.Font
	fontSize float64
	color    color.Color
}

// New parses the embedded font. fontSize <= 0 uses DefaultFontSize.
func New(fontSize float64) (*Drawer, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	if fontSize <= 0 {
		fontSize = DefaultFontSize
	}
	return &Drawer{font: f, fontSize: fontSize, color: color.White}, nil
}

func (d *Drawer) face(fontScale float64) (font.Face, error) {
	size := d.fontSize * fontScale
	if size <= 0 {
		size = 1
	}
	return opentype.NewFace(d.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// MeasureText returns the advance width of text in pixels.
func (d *Drawer) MeasureText(text string, fontScale float64) int {
	if text == "" {
		return 0
	}
	face, err := d.face(fontScale)
	if err != nil {
		return 0
	}
	defer face.Close()
	return font.MeasureString(face, text).Ceil()
}

// CharWidth estimates the mean character width of sample at fontScale.
func (d *Drawer) CharWidth(sample string, fontScale float64) float64 {
	n := utf8.RuneCountInString(sample)
	if n == 0 {
		return 0
	}
	return float64(d.MeasureText(sample, fontScale)) / float64(n)
}

// Draw renders text at p. The text is stroked p.Thickness pixels wide by
// repeating it at small offsets.
func (d *Drawer) Draw(dst draw.Image, text string, p captions.Placement) error {
	if text == "" {
		return nil
	}
	face, err := d.face(p.FontScale)
	if err != nil {
		return fmt.Errorf("create face: %w", err)
	}
	defer face.Close()

	thickness := max(p.Thickness, 1)
	fd := &font.Drawer{Dst: dst, Src: image.NewUniform(d.color), Face: face}
	for dx := range thickness {
		for dy := range thickness {
			fd.Dot = fixed.P(p.X+dx, p.Y+dy)
			fd.DrawString(text)
		}
	}
	return nil
}

var _ captions.TextMeasurer = (*Drawer)(nil)
