// Package imagemeta reads raster image metadata: native pixel dimensions, an
// embedded or assumed resolution, derived physical size in inches, the
// normalized aspect ratio, and a small preview raster for display.
package imagemeta

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"

	"github.com/book-expert/album-ingest-service/internal/album"

	// Register the decoders for the ingest allow-list formats.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/tiff"
)

// ErrUndecodableImage wraps decode failures. Callers keep the zeroed
// metadata and treat the file as a classification failure, never as a
// batch-fatal error.
var ErrUndecodableImage = errors.New("image could not be decoded")

const (
	// DefaultAssumedDPI is used when no resolution tag is embedded.
	DefaultAssumedDPI = 300

	// PreviewLongEdge bounds the preview raster's longer dimension.
	PreviewLongEdge = 500

	previewJPEGQuality = 80

	// centimetersPerInch converts pixels-per-centimeter resolution tags.
	centimetersPerInch = 2.54

	// resolutionUnitCentimeter is the EXIF ResolutionUnit value for cm.
	resolutionUnitCentimeter = 3
)

// Metadata is the extracted description of one image.
type Metadata struct {
	PixelWidth     int
	PixelHeight    int
	DPI            float64
	PhysicalWidth  float64
	PhysicalHeight float64
	Ratio          float64
	Raster         image.Image
	Preview        []byte
}

// Extract decodes the image bytes and derives all metadata. The assumed DPI
// is used when no embedded resolution tag is present; a non-positive value
// falls back to DefaultAssumedDPI. On decode failure the returned metadata
// carries zeroed dimensions and ratio alongside the wrapped error.
func Extract(data []byte, assumedDPI float64) (*Metadata, error) {
	if assumedDPI <= 0 {
		assumedDPI = DefaultAssumedDPI
	}

	img, _, decodeErr := image.Decode(bytes.NewReader(data))
	if decodeErr != nil {
		zero := &Metadata{
			PixelWidth:     0,
			PixelHeight:    0,
			DPI:            assumedDPI,
			PhysicalWidth:  0,
			PhysicalHeight: 0,
			Ratio:          0,
			Raster:         nil,
			Preview:        nil,
		}

		return zero, fmt.Errorf("%w: %w", ErrUndecodableImage, decodeErr)
	}

	dpi := embeddedDPI(data, assumedDPI)
	bounds := img.Bounds()

	meta := Derive(bounds.Dx(), bounds.Dy(), dpi)
	meta.Raster = img
	meta.Preview = EncodePreview(img)

	return meta, nil
}

// Derive computes the physical size and normalized ratio for the given pixel
// dimensions and resolution. Physical inches round to one decimal.
func Derive(pixelWidth, pixelHeight int, dpi float64) *Metadata {
	if dpi <= 0 {
		dpi = DefaultAssumedDPI
	}

	physicalWidth := RoundTenth(float64(pixelWidth) / dpi)
	physicalHeight := RoundTenth(float64(pixelHeight) / dpi)

	return &Metadata{
		PixelWidth:     pixelWidth,
		PixelHeight:    pixelHeight,
		DPI:            dpi,
		PhysicalWidth:  physicalWidth,
		PhysicalHeight: physicalHeight,
		Ratio:          album.NormalizeRatio(physicalWidth, physicalHeight),
		Raster:         nil,
		Preview:        nil,
	}
}

// RoundTenth rounds to one decimal place.
func RoundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

// embeddedDPI reads the EXIF XResolution tag. Pixels-per-centimeter values
// convert to dots-per-inch. Any failure along the way falls back to the
// assumed value; a missing tag is the normal case for PNG uploads.
func embeddedDPI(data []byte, assumedDPI float64) float64 {
	meta, decodeErr := exif.Decode(bytes.NewReader(data))
	if decodeErr != nil {
		return assumedDPI
	}

	tag, tagErr := meta.Get(exif.XResolution)
	if tagErr != nil {
		return assumedDPI
	}

	numerator, denominator, ratErr := tag.Rat2(0)
	if ratErr != nil || denominator == 0 || numerator <= 0 {
		return assumedDPI
	}

	dpi := float64(numerator) / float64(denominator)

	unitTag, unitErr := meta.Get(exif.ResolutionUnit)
	if unitErr == nil {
		if unit, intErr := unitTag.Int(0); intErr == nil && unit == resolutionUnitCentimeter {
			dpi *= centimetersPerInch
		}
	}

	return dpi
}

// EncodePreview produces a lossy preview bounded to PreviewLongEdge on the
// long side. A preview that fails to encode is simply absent. The splitter
// and extender call this again after synthesizing new cover rasters.
func EncodePreview(img image.Image) []byte {
	preview := imaging.Fit(img, PreviewLongEdge, PreviewLongEdge, imaging.Lanczos)

	var buf bytes.Buffer

	encodeErr := imaging.Encode(&buf, preview, imaging.JPEG, imaging.JPEGQuality(previewJPEGQuality))
	if encodeErr != nil {
		return nil
	}

	return buf.Bytes()
}
