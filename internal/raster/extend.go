package raster

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/book-expert/album-ingest-service/internal/album"
	"github.com/book-expert/album-ingest-service/internal/imagemeta"
)

// DefaultHalfWidthTolerance is the pixel tolerance for recognizing a
// half-width cover against the folder's representative inner-page width.
const DefaultHalfWidthTolerance = 100

// ExtendHalfCovers pads front and back covers that arrive at roughly half the
// representative inner-page width up to full width with a blank filler band.
// Front covers pad on the left and back covers on the right, so the real
// content stays adjacent to the spine once bound. Extension is idempotent:
// an already-extended (now full-width) cover no longer meets the half-width
// condition. A missing raster degrades to a metadata-only update.
func ExtendHalfCovers(files []*album.UploadedFile, tolerance int) {
	if tolerance <= 0 {
		tolerance = DefaultHalfWidthTolerance
	}

	meanWidth, meanHeight := innerPageMeans(files)
	if meanWidth == 0 {
		return
	}

	for _, file := range files {
		if file.CoverType != album.FrontCover && file.CoverType != album.BackCover {
			continue
		}

		if !withinTolerance(file.PixelWidth, meanWidth/2, tolerance) {
			continue
		}

		if !withinTolerance(file.PixelHeight, meanHeight, tolerance) {
			continue
		}

		extend(file, meanWidth)
	}
}

// extend pads one cover to fullWidth, keeping the original content on the
// spine-adjacent side.
func extend(file *album.UploadedFile, fullWidth int) {
	padWidth := fullWidth - file.PixelWidth
	if padWidth <= 0 {
		return
	}

	file.PreExtensionWidth = file.PixelWidth
	file.IsExtended = true

	if file.CoverType == album.FrontCover {
		file.ContentSide = album.SideRight
	} else {
		file.ContentSide = album.SideLeft
	}

	if file.Raster != nil {
		canvas := imaging.New(fullWidth, file.PixelHeight, fillerColor)

		offset := image.Pt(0, 0)
		if file.CoverType == album.FrontCover {
			offset = image.Pt(padWidth, 0)
		}

		file.Raster = imaging.Paste(canvas, file.Raster, offset)
		file.Preview = imagemeta.EncodePreview(file.Raster)
	}

	meta := imagemeta.Derive(fullWidth, file.PixelHeight, file.DPI)
	file.PixelWidth = meta.PixelWidth
	file.PhysicalWidth = meta.PhysicalWidth
	file.PhysicalHeight = meta.PhysicalHeight
	file.Ratio = meta.Ratio
}

// innerPageMeans returns the mean pixel width and height of the folder's
// inner pages. Zero means no inner pages exist to compare against.
func innerPageMeans(files []*album.UploadedFile) (int, int) {
	var sumWidth, sumHeight, count int

	for _, file := range files {
		if file.CoverType != album.InnerPage {
			continue
		}

		sumWidth += file.PixelWidth
		sumHeight += file.PixelHeight
		count++
	}

	if count == 0 {
		return 0, 0
	}

	return sumWidth / count, sumHeight / count
}

func withinTolerance(value, target, tolerance int) bool {
	diff := value - target
	if diff < 0 {
		diff = -diff
	}

	return diff <= tolerance
}
