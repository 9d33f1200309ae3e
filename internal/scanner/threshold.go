package scanner

import "image"

const (
	// meanThresholdWindow is the side length of the neighborhood used by the
	// adaptive mean binarization. Must be odd.
	meanThresholdWindow = 15
	// meanThresholdBias is subtracted from the local mean before comparison,
	// which keeps thin dark modules from being swallowed by noise.
	meanThresholdBias = 4
)

// otsuThreshold binarizes a grayscale image using Otsu's method: the global
// threshold that maximizes the between-class variance of the histogram.
func otsuThreshold(gray *image.Gray) *image.Gray {
	var histogram [256]int
	for _, pixel := range gray.Pix {
		histogram[pixel]++
	}

	total := len(gray.Pix)
	if total == 0 {
		return gray
	}

	var sum float64
	for level, count := range histogram {
		sum += float64(level) * float64(count)
	}

	var sumBackground float64
	var weightBackground int
	var maxVariance float64
	threshold := 0

	for level := 0; level < 256; level++ {
		weightBackground += histogram[level]
		if weightBackground == 0 {
			continue
		}
		weightForeground := total - weightBackground
		if weightForeground == 0 {
			break
		}

		sumBackground += float64(level) * float64(histogram[level])
		meanBackground := sumBackground / float64(weightBackground)
		meanForeground := (sum - sumBackground) / float64(weightForeground)

		diff := meanBackground - meanForeground
		variance := float64(weightBackground) * float64(weightForeground) * diff * diff
		if variance > maxVariance {
			maxVariance = variance
			threshold = level
		}
	}

	return applyThreshold(gray, func(x, y int, value uint8) bool {
		return int(value) > threshold
	})
}

// meanThreshold binarizes a grayscale image against the mean of a local
// window around each pixel, computed via an integral image. It copes with
// uneven lighting that defeats a single global threshold.
func meanThreshold(gray *image.Gray, window, bias int) *image.Gray {
	width := gray.Rect.Dx()
	height := gray.Rect.Dy()
	if width == 0 || height == 0 {
		return gray
	}

	// integral[y][x] holds the sum of all pixels above and left of (x, y).
	integral := make([][]int64, height+1)
	for y := range integral {
		integral[y] = make([]int64, width+1)
	}
	for y := 0; y < height; y++ {
		var rowSum int64
		for x := 0; x < width; x++ {
			rowSum += int64(gray.Pix[y*gray.Stride+x])
			integral[y+1][x+1] = integral[y][x+1] + rowSum
		}
	}

	half := window / 2
	return applyThreshold(gray, func(x, y int, value uint8) bool {
		x0 := max(0, x-half)
		y0 := max(0, y-half)
		x1 := min(width-1, x+half)
		y1 := min(height-1, y+half)

		area := int64(x1-x0+1) * int64(y1-y0+1)
		sum := integral[y1+1][x1+1] - integral[y0][x1+1] - integral[y1+1][x0] + integral[y0][x0]
		mean := sum / area
		return int64(value) > mean-int64(bias)
	})
}

func applyThreshold(gray *image.Gray, isWhite func(x, y int, value uint8) bool) *image.Gray {
	width := gray.Rect.Dx()
	height := gray.Rect.Dy()
	out := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			value := gray.Pix[y*gray.Stride+x]
			if isWhite(x, y, value) {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}
