package captions

import "unicode/utf8"

// Layout defaults tuned against 1280 pixel wide video.
const (
	DefaultReferenceWidth   = 1280
	DefaultBaseFontScale    = 0.8
	DefaultBaseThickness    = 2
	DefaultVerticalFraction = 0.9
)

// TextMeasurer reports the rendered pixel width of text at a font scale.
type TextMeasurer interface {
	MeasureText(text string, fontScale float64) int
}

// FixedWidthMeasurer estimates width as rune count times a per-character width
// measured at font scale 1.
type FixedWidthMeasurer struct {
	CharWidth float64
}

// MeasureText implements TextMeasurer.
func (m FixedWidthMeasurer) MeasureText(text string, fontScale float64) int {
	return int(float64(utf8.RuneCountInString(text)) * m.CharWidth * fontScale)
}

// LayoutConfig holds the fixed base values scaled by frame width.
type LayoutConfig struct {
	ReferenceWidth   int
	BaseFontScale    float64
	BaseThickness    int
	VerticalFraction float64
}

// DefaultLayout returns the stock layout constants.
func DefaultLayout() LayoutConfig {
	return LayoutConfig{
		ReferenceWidth:   DefaultReferenceWidth,
		BaseFontScale:    DefaultBaseFontScale,
		BaseThickness:    DefaultBaseThickness,
		VerticalFraction: DefaultVerticalFraction,
	}
}

// Placement is where and how large a cue is drawn. X and Y are the left edge
// and the text baseline in pixels.
type Placement struct {
	FontScale float64
	Thickness int
	X         int
	Y         int
}

// Scale returns frameWidth relative to the reference width.
func (c LayoutConfig) Scale(frameWidth int) float64 {
	ref := c.ReferenceWidth
	if ref <= 0 {
		ref = DefaultReferenceWidth
	}
	return float64(frameWidth) / float64(ref)
}

// Layout centers text horizontally and places it at the configured fraction of
// the frame height. A nil measurer treats the text as zero width.
func (c LayoutConfig) Layout(text string, frameWidth, frameHeight int, measurer TextMeasurer) Placement {
	scale := c.Scale(frameWidth)
	fontScale := c.BaseFontScale * scale
	thickness := int(float64(c.BaseThickness) * scale)
	if thickness < 1 {
		thickness = 1
	}
	textWidth := 0
	if measurer != nil {
		textWidth = measurer.MeasureText(text, fontScale)
	}
	return Placement{
		FontScale: fontScale,
		Thickness: thickness,
		X:         (frameWidth - textWidth) / 2,
		Y:         int(float64(frameHeight) * c.VerticalFraction),
	}
}
