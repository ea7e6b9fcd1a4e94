package imagemeta_test

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/album-ingest-service/internal/imagemeta"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))

	var buf bytes.Buffer

	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

func TestExtract_AssumedDPI(t *testing.T) {
	t.Parallel()

	// 600x300 at the assumed 300 DPI is a 2.0 x 1.0 inch image.
	meta, err := imagemeta.Extract(encodePNG(t, 600, 300), 300)
	require.NoError(t, err)

	assert.Equal(t, 600, meta.PixelWidth)
	assert.Equal(t, 300, meta.PixelHeight)
	assert.InDelta(t, 300.0, meta.DPI, 0.001)
	assert.InDelta(t, 2.0, meta.PhysicalWidth, 0.001)
	assert.InDelta(t, 1.0, meta.PhysicalHeight, 0.001)
	assert.InDelta(t, 2.0, meta.Ratio, 0.001)
	assert.NotNil(t, meta.Raster)
	assert.NotEmpty(t, meta.Preview)
}

func TestExtract_RatioIsOrientationIndependent(t *testing.T) {
	t.Parallel()

	landscape, err := imagemeta.Extract(encodePNG(t, 600, 300), 300)
	require.NoError(t, err)

	portrait, err := imagemeta.Extract(encodePNG(t, 300, 600), 300)
	require.NoError(t, err)

	assert.InDelta(t, landscape.Ratio, portrait.Ratio, 0.001)
}

func TestExtract_UndecodableBytes(t *testing.T) {
	t.Parallel()

	meta, err := imagemeta.Extract([]byte("not an image"), 300)
	require.ErrorIs(t, err, imagemeta.ErrUndecodableImage)

	assert.Zero(t, meta.PixelWidth)
	assert.Zero(t, meta.PixelHeight)
	assert.Zero(t, meta.Ratio)
	assert.Nil(t, meta.Raster)
}

func TestExtract_PreviewIsBounded(t *testing.T) {
	t.Parallel()

	meta, err := imagemeta.Extract(encodePNG(t, 1200, 800), 300)
	require.NoError(t, err)
	require.NotEmpty(t, meta.Preview)

	preview, decodeErr := jpeg.Decode(bytes.NewReader(meta.Preview))
	require.NoError(t, decodeErr)

	bounds := preview.Bounds()
	assert.LessOrEqual(t, bounds.Dx(), imagemeta.PreviewLongEdge)
	assert.LessOrEqual(t, bounds.Dy(), imagemeta.PreviewLongEdge)
}

func TestDerive_RoundsToOneDecimal(t *testing.T) {
	t.Parallel()

	// 1234 pixels at 300 DPI is 4.1133... inches, rounds to 4.1.
	meta := imagemeta.Derive(1234, 600, 300)
	assert.InDelta(t, 4.1, meta.PhysicalWidth, 0.001)
	assert.InDelta(t, 2.0, meta.PhysicalHeight, 0.001)
}

func TestDerive_NonPositiveDPIFallsBack(t *testing.T) {
	t.Parallel()

	meta := imagemeta.Derive(600, 600, 0)
	assert.InDelta(t, float64(imagemeta.DefaultAssumedDPI), meta.DPI, 0.001)
	assert.InDelta(t, 2.0, meta.PhysicalWidth, 0.001)
}
