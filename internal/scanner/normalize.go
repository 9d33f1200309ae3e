package scanner

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// svgFallbackSize is used when an SVG upload carries no explicit pixel size.
// Large enough that QR modules stay several pixels wide after rasterization.
const svgFallbackSize = 1024

// NormalizeImage turns uploaded bytes into a decoded image, accepting the
// raster formats registered above plus SVG. The returned format string is
// the detected source format. A failure here is a whole-image failure; the
// caller reports it per-image without touching sibling images in a batch.
func NormalizeImage(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty image data")
	}

	if isSVGData(data) {
		img, err := rasterizeSVG(data)
		if err != nil {
			return nil, "", fmt.Errorf("failed to rasterize SVG: %w", err)
		}
		return img, "svg", nil
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	slog.Debug("normalized input image",
		"format", format,
		"width", img.Bounds().Dx(),
		"height", img.Bounds().Dy())
	return img, format, nil
}

// isSVGData performs a lightweight detection of SVG content from raw bytes.
func isSVGData(data []byte) bool {
	n := len(data)
	if n > 4096 {
		n = 4096
	}
	header := bytes.ToLower(bytes.TrimSpace(data[:n]))
	return bytes.Contains(header, []byte("<svg")) ||
		bytes.Contains(header, []byte(`xmlns="http://www.w3.org/2000/svg"`)) ||
		bytes.Contains(header, []byte(`xmlns='http://www.w3.org/2000/svg'`))
}

// rasterizeSVG renders SVG bytes onto a white canvas. The explicit width and
// height attributes win; otherwise the fallback square size is used.
func rasterizeSVG(data []byte) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse SVG: %w", err)
	}

	width, height, ok := parseSVGExplicitSize(data)
	if !ok {
		width, height = svgFallbackSize, svgFallbackSize
	}

	icon.SetTarget(0, 0, float64(width), float64(height))

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(width, height, dst, dst.Bounds())
	dasher := rasterx.NewDasher(width, height, scanner)
	icon.Draw(dasher, 1.0)

	return dst, nil
}

// parseSVGExplicitSize extracts pixel width/height attributes from the SVG
// start tag. viewBox is deliberately not treated as a pixel size.
func parseSVGExplicitSize(data []byte) (int, int, bool) {
	n := len(data)
	if n > 8192 {
		n = 8192
	}
	s := strings.ToLower(string(data[:n]))

	i := strings.Index(s, "<svg")
	if i < 0 {
		return 0, 0, false
	}
	j := strings.Index(s[i:], ">")
	if j < 0 {
		j = len(s)
	} else {
		j = i + j
	}
	tag := s[i:j]

	width, wOk := parseNumericAttr(tag, "width")
	height, hOk := parseNumericAttr(tag, "height")
	if wOk && hOk && width > 0 && height > 0 {
		return width, height, true
	}
	return 0, 0, false
}

// parseNumericAttr extracts the leading numeric value of an attribute
// (e.g. width="300px" yields 300).
func parseNumericAttr(tag, attr string) (int, bool) {
	pos := strings.Index(tag, attr+"=")
	if pos < 0 {
		return 0, false
	}
	rest := tag[pos+len(attr)+1:]
	if len(rest) == 0 {
		return 0, false
	}

	quote := rest[0]
	if quote != '"' && quote != '\'' {
		return 0, false
	}
	rest = rest[1:]
	if end := strings.IndexByte(rest, quote); end >= 0 {
		rest = rest[:end]
	}

	value := 0
	found := false
	for i := 0; i < len(rest); i++ {
		ch := rest[i]
		if ch >= '0' && ch <= '9' {
			found = true
			value = value*10 + int(ch-'0')
		} else if found {
			break
		}
	}
	if !found || value <= 0 {
		return 0, false
	}
	return value, true
}
