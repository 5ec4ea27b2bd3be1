package verification

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/raxnet/patrol/internal/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/webp"
)

// encodePNG builds a solid png of the given size.
func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}

	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestNormalizeImage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		width        int
		height       int
		maxDimension int
		wantWidth    int
		wantHeight   int
	}{
		{name: "landscape is downscaled", width: 200, height: 100, maxDimension: 50, wantWidth: 50, wantHeight: 25},
		{name: "portrait is downscaled", width: 60, height: 240, maxDimension: 120, wantWidth: 30, wantHeight: 120},
		{name: "small image keeps size", width: 40, height: 30, maxDimension: 100, wantWidth: 40, wantHeight: 30},
		{name: "no limit keeps size", width: 40, height: 30, maxDimension: 0, wantWidth: 40, wantHeight: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := NormalizeImage(encodePNG(t, tt.width, tt.height), tt.maxDimension)
			require.NoError(t, err)

			cfg, err := webp.DecodeConfig(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, tt.wantWidth, cfg.Width)
			assert.Equal(t, tt.wantHeight, cfg.Height)
		})
	}
}

func TestNormalizeImageRejectsNonImages(t *testing.T) {
	t.Parallel()

	_, err := NormalizeImage([]byte("definitely not an image"), 100)
	require.ErrorIs(t, err, types.ErrInvalidProof)

	_, err = NormalizeImage(nil, 100)
	require.ErrorIs(t, err, types.ErrInvalidProof)
}

func TestFitWithin(t *testing.T) {
	t.Parallel()

	w, h, ok := fitWithin(1000, 1, 10)
	assert.True(t, ok)
	assert.Equal(t, 10, w)
	assert.Equal(t, 1, h)
}
