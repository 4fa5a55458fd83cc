package render

import (
	"image"
	"testing"

	"captioner/internal/captions"
)

func newTestDrawer(t *testing.T) *Drawer {
	t.Helper()
	d, err := New(0)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return d
}

func TestMeasureTextScales(t *testing.T) {
	d := newTestDrawer(t)
	if got := d.MeasureText("", 1); got != 0 {
		t.Fatalf("empty width = %d", got)
	}
	small := d.MeasureText("hello world", 0.5)
	large := d.MeasureText("hello world", 1)
	if small <= 0 || large <= small {
		t.Fatalf("expected width to grow with scale, got %d then %d", small, large)
	}
	if longer := d.MeasureText("hello world again", 1); longer <= large {
		t.Fatalf("longer text measured %d <= %d", longer, large)
	}
}

func TestCharWidth(t *testing.T) {
	d := newTestDrawer(t)
	if got := d.CharWidth("", 1); got != 0 {
		t.Fatalf("CharWidth(empty) = %v", got)
	}
	w := d.CharWidth("abcdefghij", 1)
	if w <= 0 || w > DefaultFontSize {
		t.Fatalf("implausible char width %v", w)
	}
}

func TestDrawPaintsNearBaseline(t *testing.T) {
	d := newTestDrawer(t)
	img := image.NewRGBA(image.Rect(0, 0, 1280, 720))
	layout := captions.DefaultLayout()
	p := layout.Layout("Hello", 1280, 720, d)
	if err := d.Draw(img, "Hello", p); err != nil {
		t.Fatalf("Draw returned error: %v", err)
	}

	painted := 0
	minY, maxY := img.Bounds().Max.Y, 0
	for y := range 720 {
		for x := range 1280 {
			if img.RGBAAt(x, y).A > 0 {
				painted++
				minY = min(minY, y)
				maxY = max(maxY, y)
			}
		}
	}
	if painted == 0 {
		t.Fatal("nothing drawn")
	}
	if maxY > p.Y+p.Thickness+2 || minY < p.Y-int(DefaultFontSize*p.FontScale)-2 {
		t.Fatalf("glyphs span rows %d..%d, baseline %d", minY, maxY, p.Y)
	}
}

func TestDrawEmptyIsNoop(t *testing.T) {
	d := newTestDrawer(t)
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	if err := d.Draw(img, "", captions.Placement{FontScale: 1, Thickness: 1}); err != nil {
		t.Fatalf("Draw returned error: %v", err)
	}
	for _, v := range img.Pix {
		if v != 0 {
			t.Fatal("empty text modified the frame")
		}
	}
}
