package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

const (
	// Ingestion limits for the downstream vision model.
	maxScreenshotBytes = 4_500_000
	maxScreenshotDim   = 7500
)

// fitForIngestion re-encodes a screenshot so it fits under the byte and
// pixel-dimension limits the vision model accepts. Oversized captures are
// downscaled first, then re-encoded at decreasing JPEG quality.
func fitForIngestion(data []byte) ([]byte, error) {
	if len(data) <= maxScreenshotBytes {
		if w, h, ok := decodeBounds(data); !ok || (w <= maxScreenshotDim && h <= maxScreenshotDim) {
			return data, nil
		}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode screenshot: %w", err)
	}

	img = clampDimensions(img)

	for _, quality := range []int{85, 70, 55, 40, 25} {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("failed to encode screenshot: %w", err)
		}
		if buf.Len() <= maxScreenshotBytes {
			return buf.Bytes(), nil
		}
	}

	return nil, fmt.Errorf("screenshot cannot be compressed under %d bytes", maxScreenshotBytes)
}

// clampDimensions scales the image down so neither side exceeds the pixel bound.
func clampDimensions(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxScreenshotDim && h <= maxScreenshotDim {
		return img
	}

	scale := float64(maxScreenshotDim) / float64(w)
	if h > w {
		scale = float64(maxScreenshotDim) / float64(h)
	}
	dw := int(float64(w) * scale)
	dh := int(float64(h) * scale)

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func decodeBounds(data []byte) (int, int, bool) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, false
	}
	return cfg.Width, cfg.Height, true
}
