package scanner

import (
	"log/slog"

	"github.com/makiuchi-d/gozxing"
	qrmulti "github.com/makiuchi-d/gozxing/multi/qrcode"
)

// Region is the axis-aligned bounding box of a decoded symbol, in pixel
// coordinates of the variant it was found in.
type Region struct {
	MinX int `json:"min_x"`
	MinY int `json:"min_y"`
	MaxX int `json:"max_x"`
	MaxY int `json:"max_y"`
}

// Payload is one decoded QR symbol.
type Payload struct {
	Text          string  `json:"text"`
	SourceVariant string  `json:"source_variant"`
	Region        *Region `json:"region,omitempty"`
}

// Decoder extracts QR payloads from a single image variant. Implementations
// must be stateless and safe for concurrent use; an unreadable variant yields
// an empty result, never an error.
type Decoder interface {
	Decode(variant Variant) []Payload
}

// QRDecoder decodes QR symbols via the zxing port. Each call uses a fresh
// reader, so there is no cross-variant state and a single instance may
// serve all variants of all images concurrently.
type QRDecoder struct {
	hints map[gozxing.DecodeHintType]interface{}
}

// NewQRDecoder creates a decoder that tries harder on low-quality input and
// reports every distinct symbol found in a variant.
func NewQRDecoder() *QRDecoder {
	return &QRDecoder{
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}
}

// Decode returns all QR payloads readable from the variant. Malformed or
// symbol-free pixel data is not an error; it simply produces no payloads.
func (d *QRDecoder) Decode(variant Variant) []Payload {
	bitmap, err := gozxing.NewBinaryBitmapFromImage(variant.Image)
	if err != nil {
		slog.Debug("variant not convertible to bitmap", "method", variant.Method, "error", err)
		return nil
	}

	results, err := qrmulti.NewQRCodeMultiReader().DecodeMultiple(bitmap, d.hints)
	if err != nil {
		// zxing reports "NotFoundException" for clean images without a
		// symbol; that is the expected empty case.
		return nil
	}

	payloads := make([]Payload, 0, len(results))
	for _, result := range results {
		payloads = append(payloads, Payload{
			Text:          result.GetText(),
			SourceVariant: variant.Method,
			Region:        boundingRegion(result.GetResultPoints()),
		})
	}
	return payloads
}

// boundingRegion computes the bounding box of the finder-pattern points the
// reader located. Returns nil when the reader supplied no geometry.
func boundingRegion(points []gozxing.ResultPoint) *Region {
	if len(points) == 0 {
		return nil
	}

	region := &Region{
		MinX: int(points[0].GetX()), MinY: int(points[0].GetY()),
		MaxX: int(points[0].GetX()), MaxY: int(points[0].GetY()),
	}
	for _, point := range points[1:] {
		x, y := int(point.GetX()), int(point.GetY())
		region.MinX = min(region.MinX, x)
		region.MinY = min(region.MinY, y)
		region.MaxX = max(region.MaxX, x)
		region.MaxY = max(region.MaxY, y)
	}
	return region
}
