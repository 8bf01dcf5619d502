package text

import "testing"

func TestFixedFontMetrics(t *testing.T) {
	f := NewFixedFont(10, 12, 4)

	if got := f.TextWidth("hello"); got != 50 {
		t.Errorf("width = %d, want 50", got)
	}
	// Runes, not bytes.
	if got := f.TextWidth("héllo"); got != 50 {
		t.Errorf("multibyte width = %d, want 50", got)
	}
	if f.Ascent() != 12 || f.Descent() != 4 {
		t.Errorf("ascent/descent = %d/%d", f.Ascent(), f.Descent())
	}
	if f.EmPixels() != 16 {
		t.Errorf("em = %d", f.EmPixels())
	}
	if f.ExPixels() != 8 {
		t.Errorf("ex = %d", f.ExPixels())
	}
	if f.SpacePixels() != 10 {
		t.Errorf("space = %d", f.SpacePixels())
	}
}

func TestLoadFontMissingFile(t *testing.T) {
	if _, err := LoadFont("/nonexistent/font.ttf", 16); err == nil {
		t.Error("expected error for missing font file")
	}
}
