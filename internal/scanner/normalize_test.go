package scanner

import (
	"bytes"
	"image"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png fixture: %v", err)
	}
	return buf.Bytes()
}

func TestNormalizeImage_PNG(t *testing.T) {
	data := encodePNG(t, checkerboard(32))

	img, format, err := NormalizeImage(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if format != "png" {
		t.Errorf("expected format png, got %q", format)
	}
	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 32 {
		t.Errorf("unexpected bounds %v", img.Bounds())
	}
}

func TestNormalizeImage_SVGExplicitSize(t *testing.T) {
	data := []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="120" height="80">` +
		`<rect x="10" y="10" width="40" height="40" fill="black"/></svg>`)

	img, format, err := NormalizeImage(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if format != "svg" {
		t.Errorf("expected format svg, got %q", format)
	}
	if img.Bounds().Dx() != 120 || img.Bounds().Dy() != 80 {
		t.Errorf("expected 120x80 canvas, got %v", img.Bounds())
	}
}

func TestNormalizeImage_SVGFallbackSize(t *testing.T) {
	data := []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10">` +
		`<rect width="10" height="10" fill="black"/></svg>`)

	img, format, err := NormalizeImage(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if format != "svg" {
		t.Errorf("expected format svg, got %q", format)
	}
	if img.Bounds().Dx() != svgFallbackSize || img.Bounds().Dy() != svgFallbackSize {
		t.Errorf("expected fallback canvas, got %v", img.Bounds())
	}
}

func TestNormalizeImage_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"garbage", []byte("definitely not an image")},
		{"truncated png", encodePNG(t, checkerboard(16))[:8]},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if _, _, err := NormalizeImage(testCase.data); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestParseSVGExplicitSize(t *testing.T) {
	testCases := []struct {
		name     string
		svg      string
		width    int
		height   int
		expected bool
	}{
		{"plain pixels", `<svg width="300" height="200">`, 300, 200, true},
		{"px suffix", `<svg width="300px" height="200px">`, 300, 200, true},
		{"single quotes", `<svg width='64' height='64'>`, 64, 64, true},
		{"missing height", `<svg width="300">`, 0, 0, false},
		{"viewBox only", `<svg viewBox="0 0 100 100">`, 0, 0, false},
		{"zero size", `<svg width="0" height="0">`, 0, 0, false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			width, height, ok := parseSVGExplicitSize([]byte(testCase.svg))
			if ok != testCase.expected || width != testCase.width || height != testCase.height {
				t.Errorf("expected (%d, %d, %v), got (%d, %d, %v)",
					testCase.width, testCase.height, testCase.expected, width, height, ok)
			}
		})
	}
}
