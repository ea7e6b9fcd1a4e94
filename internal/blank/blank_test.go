package blank_test

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"

	"github.com/book-expert/album-ingest-service/internal/blank"
)

var (
	nearWhite = color.NRGBA{R: 245, G: 245, B: 245, A: 255}
	nearBlack = color.NRGBA{R: 5, G: 5, B: 5, A: 255}
	midGray   = color.NRGBA{R: 128, G: 128, B: 128, A: 255}
)

// halfAndHalf builds a raster with a uniform left half and a right half that
// carries content (a block of mid-gray).
func halfAndHalf(left, right color.Color) image.Image {
	img := imaging.New(400, 200, left)
	rightHalf := imaging.New(200, 200, right)

	return imaging.Paste(img, rightHalf, image.Pt(200, 0))
}

func TestIsBlank_UniformLight(t *testing.T) {
	t.Parallel()

	img := imaging.New(300, 300, nearWhite)
	assert.True(t, blank.IsBlank(img, blank.RegionFull, blank.Thresholds{}))
}

func TestIsBlank_UniformDark(t *testing.T) {
	t.Parallel()

	img := imaging.New(300, 300, nearBlack)
	assert.True(t, blank.IsBlank(img, blank.RegionFull, blank.Thresholds{}))
}

func TestIsBlank_ContentIsNotBlank(t *testing.T) {
	t.Parallel()

	img := imaging.New(300, 300, midGray)
	assert.False(t, blank.IsBlank(img, blank.RegionFull, blank.Thresholds{}))
}

func TestIsBlank_RegionSensitive(t *testing.T) {
	t.Parallel()

	// Entirely light on the left half, content on the right half.
	img := halfAndHalf(nearWhite, midGray)

	assert.True(t, blank.IsBlank(img, blank.RegionLeft, blank.Thresholds{}))
	assert.False(t, blank.IsBlank(img, blank.RegionRight, blank.Thresholds{}))
	assert.False(t, blank.IsBlank(img, blank.RegionFull, blank.Thresholds{}))
}

func TestIsBlank_MixedBandsAreContent(t *testing.T) {
	t.Parallel()

	// Half near-black, half near-white: neither all-dark nor all-light.
	img := halfAndHalf(nearBlack, nearWhite)
	assert.False(t, blank.IsBlank(img, blank.RegionFull, blank.Thresholds{}))
}

func TestIsBlank_NilRasterAssumesContent(t *testing.T) {
	t.Parallel()

	assert.False(t, blank.IsBlank(nil, blank.RegionFull, blank.Thresholds{}))
}

func TestIsBlank_ThresholdBoundaries(t *testing.T) {
	t.Parallel()

	// Exactly at the light threshold is not "above" it, so not blank.
	atLight := imaging.New(100, 100, color.NRGBA{R: 230, G: 230, B: 230, A: 255})
	assert.False(t, blank.IsBlank(atLight, blank.RegionFull, blank.Thresholds{}))

	justAbove := imaging.New(100, 100, color.NRGBA{R: 231, G: 231, B: 231, A: 255})
	assert.True(t, blank.IsBlank(justAbove, blank.RegionFull, blank.Thresholds{}))
}
