package scanner

import (
	"image"
	"image/color"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// makeQRImage renders the text as a QR symbol on a grayscale canvas.
func makeQRImage(t *testing.T, text string, size int) image.Image {
	t.Helper()

	writer := qrcode.NewQRCodeWriter()
	matrix, err := writer.Encode(text, gozxing.BarcodeFormat_QR_CODE, size, size, nil)
	if err != nil {
		t.Fatalf("failed to encode QR fixture: %v", err)
	}

	img := image.NewGray(image.Rect(0, 0, matrix.GetWidth(), matrix.GetHeight()))
	for y := 0; y < matrix.GetHeight(); y++ {
		for x := 0; x < matrix.GetWidth(); x++ {
			if matrix.Get(x, y) {
				img.SetGray(x, y, color.Gray{Y: 0})
			} else {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

func TestQRDecoder_DecodesSymbol(t *testing.T) {
	decoder := NewQRDecoder()
	img := makeQRImage(t, "https://example.com", 256)

	payloads := decoder.Decode(Variant{Method: VariantIdentity, Image: img})
	if len(payloads) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(payloads))
	}
	if payloads[0].Text != "https://example.com" {
		t.Errorf("expected payload text %q, got %q", "https://example.com", payloads[0].Text)
	}
	if payloads[0].SourceVariant != VariantIdentity {
		t.Errorf("expected source variant %q, got %q", VariantIdentity, payloads[0].SourceVariant)
	}
	if payloads[0].Region == nil {
		t.Error("expected a bounding region for a decoded symbol")
	}
}

func TestQRDecoder_BoundingRegionWithinImage(t *testing.T) {
	decoder := NewQRDecoder()
	img := makeQRImage(t, "bounded", 200)

	payloads := decoder.Decode(Variant{Method: VariantIdentity, Image: img})
	if len(payloads) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(payloads))
	}

	region := payloads[0].Region
	if region == nil {
		t.Fatal("expected a bounding region")
	}
	bounds := img.Bounds()
	if region.MinX < bounds.Min.X || region.MaxX > bounds.Max.X ||
		region.MinY < bounds.Min.Y || region.MaxY > bounds.Max.Y {
		t.Errorf("region %+v outside image bounds %v", region, bounds)
	}
	if region.MinX > region.MaxX || region.MinY > region.MaxY {
		t.Errorf("degenerate region %+v", region)
	}
}

func TestQRDecoder_UnreadableVariantYieldsEmptyResult(t *testing.T) {
	decoder := NewQRDecoder()

	testCases := []struct {
		name  string
		image image.Image
	}{
		{"uniform", image.NewGray(image.Rect(0, 0, 64, 64))},
		{"tiny", image.NewGray(image.Rect(0, 0, 2, 2))},
		{"checkerboard", checkerboard(64)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			payloads := decoder.Decode(Variant{Method: VariantIdentity, Image: tc.image})
			if len(payloads) != 0 {
				t.Errorf("expected no payloads, got %d", len(payloads))
			}
		})
	}
}

func TestQRDecoder_StatelessAcrossCalls(t *testing.T) {
	decoder := NewQRDecoder()

	first := makeQRImage(t, "first-payload", 256)
	second := makeQRImage(t, "second-payload", 256)

	// The garbage decode in between must not affect later calls.
	if got := decoder.Decode(Variant{Method: VariantIdentity, Image: first}); len(got) != 1 || got[0].Text != "first-payload" {
		t.Fatalf("unexpected first decode result: %+v", got)
	}
	_ = decoder.Decode(Variant{Method: VariantIdentity, Image: checkerboard(32)})
	if got := decoder.Decode(Variant{Method: VariantIdentity, Image: second}); len(got) != 1 || got[0].Text != "second-payload" {
		t.Fatalf("unexpected second decode result: %+v", got)
	}
}

func checkerboard(size int) image.Image {
	img := image.NewGray(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x+y)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}
