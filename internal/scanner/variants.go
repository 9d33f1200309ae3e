package scanner

import (
	"image"
	"log/slog"

	"github.com/disintegration/imaging"
)

// Variant method names. The order of DefaultGenerators determines which
// variant is credited when several of them decode the same payload.
const (
	VariantIdentity         = "identity"
	VariantGrayscale        = "grayscale"
	VariantEnhancedContrast = "enhanced-contrast"
	VariantChannelRed       = "channel-red"
	VariantChannelGreen     = "channel-green"
	VariantChannelBlue      = "channel-blue"
	VariantThresholdOtsu    = "threshold-otsu"
	VariantThresholdMean    = "threshold-mean"
)

// Variant is a derived version of an input image, tagged with the
// preprocessing method that produced it.
type Variant struct {
	Method string
	Image  image.Image
}

// Generator derives one variant from the input image. Generators are pure:
// they never modify the input and never fail. A generator that does not
// apply to the given image (e.g. a channel split on single-channel input)
// returns ok=false and the variant is omitted.
type Generator struct {
	Method string
	Apply  func(img image.Image) (image.Image, bool)
}

// DefaultGenerators returns the fixed, ordered preprocessing cascade.
// The unmodified image always comes first so that a clean decode is
// attributed to it rather than to a derived variant.
func DefaultGenerators() []Generator {
	return []Generator{
		{VariantIdentity, func(img image.Image) (image.Image, bool) {
			return img, true
		}},
		{VariantGrayscale, func(img image.Image) (image.Image, bool) {
			return imaging.Grayscale(img), true
		}},
		{VariantEnhancedContrast, func(img image.Image) (image.Image, bool) {
			enhanced := imaging.AdjustContrast(imaging.Grayscale(img), 30)
			return imaging.Sharpen(enhanced, 1.0), true
		}},
		{VariantChannelRed, channelGenerator(0)},
		{VariantChannelGreen, channelGenerator(1)},
		{VariantChannelBlue, channelGenerator(2)},
		{VariantThresholdOtsu, func(img image.Image) (image.Image, bool) {
			return otsuThreshold(toGray(img)), true
		}},
		{VariantThresholdMean, func(img image.Image) (image.Image, bool) {
			return meanThreshold(toGray(img), meanThresholdWindow, meanThresholdBias), true
		}},
	}
}

// GenerateVariants runs every generator against the input and returns the
// applicable variants in generator order.
func GenerateVariants(img image.Image, generators []Generator) []Variant {
	variants := make([]Variant, 0, len(generators))
	for _, generator := range generators {
		derived, ok := generator.Apply(img)
		if !ok {
			slog.Debug("preprocessing variant not applicable", "method", generator.Method)
			continue
		}
		variants = append(variants, Variant{Method: generator.Method, Image: derived})
	}
	return variants
}

// channelGenerator isolates one RGB channel as a grayscale image.
// Single-channel input has no channels to separate, so the generator
// reports the variant as not applicable.
func channelGenerator(channel int) func(image.Image) (image.Image, bool) {
	return func(img image.Image) (image.Image, bool) {
		if isSingleChannel(img) {
			return nil, false
		}

		bounds := img.Bounds()
		out := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				r, g, b, _ := img.At(x, y).RGBA()
				var value uint32
				switch channel {
				case 0:
					value = r
				case 1:
					value = g
				default:
					value = b
				}
				out.Pix[out.PixOffset(x-bounds.Min.X, y-bounds.Min.Y)] = uint8(value >> 8)
			}
		}
		return out, true
	}
}

func isSingleChannel(img image.Image) bool {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return true
	}
	return false
}

// toGray converts any image to 8-bit grayscale using the standard
// luminance weights.
func toGray(img image.Image) *image.Gray {
	if gray, ok := img.(*image.Gray); ok {
		return gray
	}
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			// ITU-R BT.601 luma
			luma := (299*r + 587*g + 114*b) / 1000
			gray.Pix[gray.PixOffset(x-bounds.Min.X, y-bounds.Min.Y)] = uint8(luma >> 8)
		}
	}
	return gray
}
