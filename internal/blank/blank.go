// Package blank classifies image regions as blank (uniformly very dark or
// very light) or as containing content.
package blank

import (
	"image"

	"github.com/disintegration/imaging"
)

// Region selects which part of a raster to sample.
type Region string

// Supported sampling regions. In spread layout the first file is checked on
// its left half and the last file on its right half; single layout checks the
// full frame.
const (
	RegionFull  Region = "full"
	RegionLeft  Region = "left"
	RegionRight Region = "right"
)

// Default detection parameters, on an 8-bit channel scale.
const (
	DefaultDarkThreshold  = 25
	DefaultLightThreshold = 230
	DefaultSampleSize     = 200
)

// Thresholds parameterizes detection. Zero values fall back to the defaults.
type Thresholds struct {
	Dark       uint8
	Light      uint8
	SampleSize int
}

// applyDefaults fills zero-value thresholds with the package defaults.
func (t Thresholds) applyDefaults() Thresholds {
	if t.Dark == 0 {
		t.Dark = DefaultDarkThreshold
	}

	if t.Light == 0 {
		t.Light = DefaultLightThreshold
	}

	if t.SampleSize <= 0 {
		t.SampleSize = DefaultSampleSize
	}

	return t
}

// IsBlank samples the selected region on a downscaled grid and reports
// whether every sample pixel is uniformly dark or uniformly light. A nil
// raster is conservatively reported as non-blank: content is assumed
// present when nothing can be inspected.
func IsBlank(img image.Image, region Region, thresholds Thresholds) bool {
	if img == nil {
		return false
	}

	thresholds = thresholds.applyDefaults()

	cropped := cropRegion(img, region)
	if cropped.Bounds().Dx() == 0 || cropped.Bounds().Dy() == 0 {
		return false
	}

	// Nearest neighbor: this is sampling, not display scaling, and it must
	// not blend content pixels into the blank bands.
	sample := imaging.Resize(cropped, thresholds.SampleSize, thresholds.SampleSize, imaging.NearestNeighbor)

	allDark, allLight := true, true

	bounds := sample.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			red, green, blue, _ := sample.At(x, y).RGBA()
			r8, g8, b8 := uint8(red>>8), uint8(green>>8), uint8(blue>>8)

			if !channelsBelow(r8, g8, b8, thresholds.Dark) {
				allDark = false
			}

			if !channelsAbove(r8, g8, b8, thresholds.Light) {
				allLight = false
			}

			if !allDark && !allLight {
				return false
			}
		}
	}

	return true
}

// cropRegion extracts the requested half (or the full frame) of the raster.
func cropRegion(img image.Image, region Region) image.Image {
	bounds := img.Bounds()
	half := bounds.Dx() / 2

	switch region {
	case RegionLeft:
		return imaging.Crop(img, image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Min.X+half, bounds.Max.Y))
	case RegionRight:
		return imaging.Crop(img, image.Rect(bounds.Max.X-half, bounds.Min.Y, bounds.Max.X, bounds.Max.Y))
	case RegionFull:
		return img
	default:
		return img
	}
}

func channelsBelow(r, g, b, threshold uint8) bool {
	return r < threshold && g < threshold && b < threshold
}

func channelsAbove(r, g, b, threshold uint8) bool {
	return r > threshold && g > threshold && b > threshold
}
