package verification

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder

	"github.com/HugoSmits86/nativewebp"
	"github.com/raxnet/patrol/internal/database/types"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register decoder
)

// ProofMIMEType is the format NormalizeImage produces.
const ProofMIMEType = "image/webp"

// NormalizeImage decodes a png, jpeg or webp image, shrinks it so that its
// longest side is at most maxDimension pixels and re-encodes it as webp.
// A maxDimension of 0 or less keeps the original size.
func NormalizeImage(data []byte, maxDimension int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode image: %w", types.ErrInvalidProof, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("%w: image is empty", types.ErrInvalidProof)
	}

	if width, height, ok := fitWithin(bounds.Dx(), bounds.Dy(), maxDimension); ok {
		resized := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.ApproxBiLinear.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
		img = resized
	}

	buf := new(bytes.Buffer)
	if err := nativewebp.Encode(buf, img, nil); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return buf.Bytes(), nil
}

// fitWithin scales width and height down so neither exceeds limit, keeping
// the aspect ratio. ok is false when no scaling is needed.
func fitWithin(width, height, limit int) (int, int, bool) {
	if limit <= 0 || (width <= limit && height <= limit) {
		return width, height, false
	}

	if width >= height {
		return limit, max(height*limit/width, 1), true
	}
	return max(width*limit/height, 1), limit, true
}
