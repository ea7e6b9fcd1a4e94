// Package raster synthesizes cover images: it splits combined covers into a
// front/back pair and extends half-width covers to full width with blank
// filler. Every synthesized raster is exclusively owned by the file record
// that holds it.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/book-expert/album-ingest-service/internal/album"
	"github.com/book-expert/album-ingest-service/internal/imagemeta"
)

// ProvisionalLastPage is the sentinel page number carried by a freshly split
// back cover until the sequencer assigns final numbers.
const ProvisionalLastPage = 1 << 20

// fillerColor is the solid light blank used for synthesized filler bands. It
// sits above the blank detector's light threshold, so filler halves read as
// blank.
var fillerColor = color.NRGBA{R: 250, G: 250, B: 250, A: 255}

// SplitCombined turns one combined-cover file into a front cover and a back
// cover, both full source width. The front cover carries the source's left
// half on its right side behind a blank left band; the back cover carries the
// source's right half on its left side ahead of a blank right band. If the
// source raster is unavailable the two records still come back with correct
// metadata, reusing the source preview, rather than failing the batch.
func SplitCombined(source *album.UploadedFile) (*album.UploadedFile, *album.UploadedFile) {
	front := synthesizedCover(source, album.FrontCover)
	front.PageNumber = 1
	front.ContentSide = album.SideRight
	front.Name = splitName(source.Name, "front")

	back := synthesizedCover(source, album.BackCover)
	back.PageNumber = ProvisionalLastPage
	back.ContentSide = album.SideLeft
	back.Name = splitName(source.Name, "back")

	if source.Raster == nil {
		front.Preview = source.Preview
		back.Preview = source.Preview

		return front, back
	}

	width := source.PixelWidth
	height := source.PixelHeight
	half := width / 2

	leftHalf := imaging.Crop(source.Raster, image.Rect(0, 0, half, height))
	rightHalf := imaging.Crop(source.Raster, image.Rect(width-half, 0, width, height))

	frontRaster := imaging.New(width, height, fillerColor)
	front.Raster = imaging.Paste(frontRaster, leftHalf, image.Pt(width-half, 0))
	front.Preview = imagemeta.EncodePreview(front.Raster)

	backRaster := imaging.New(width, height, fillerColor)
	back.Raster = imaging.Paste(backRaster, rightHalf, image.Pt(0, 0))
	back.Preview = imagemeta.EncodePreview(back.Raster)

	return front, back
}

// synthesizedCover builds a new file record inheriting the source's folder,
// dimensions, and resolution. The physical width is recomputed from the full
// pixel width, which the split leaves unchanged.
func synthesizedCover(source *album.UploadedFile, coverType album.CoverType) *album.UploadedFile {
	meta := imagemeta.Derive(source.PixelWidth, source.PixelHeight, source.DPI)

	return &album.UploadedFile{
		ID:                uuid.New().String(),
		Name:              "",
		FolderPath:        source.FolderPath,
		ByteSize:          source.ByteSize,
		PixelWidth:        meta.PixelWidth,
		PixelHeight:       meta.PixelHeight,
		DPI:               meta.DPI,
		PhysicalWidth:     meta.PhysicalWidth,
		PhysicalHeight:    meta.PhysicalHeight,
		Ratio:             meta.Ratio,
		CoverType:         coverType,
		PageNumber:        0,
		LeftPage:          0,
		RightPage:         0,
		IsSplit:           true,
		IsExtended:        false,
		IsBlank:           false,
		SplitFrom:         source.Name,
		ContentSide:       album.SideNone,
		PreExtensionWidth: 0,
		Match:             "",
		Raster:            nil,
		Preview:           nil,
	}
}

// splitName derives the synthesized file's name from the source name, for
// example "cover.jpg" becomes "cover_front.jpg".
func splitName(sourceName, side string) string {
	ext := filepath.Ext(sourceName)
	base := strings.TrimSuffix(sourceName, ext)

	return fmt.Sprintf("%s_%s%s", base, side, ext)
}
