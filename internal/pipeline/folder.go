package pipeline

import (
	"context"
	"os"

	"github.com/google/uuid"

	"github.com/book-expert/album-ingest-service/internal/album"
	"github.com/book-expert/album-ingest-service/internal/blank"
	"github.com/book-expert/album-ingest-service/internal/classify"
	"github.com/book-expert/album-ingest-service/internal/collect"
	"github.com/book-expert/album-ingest-service/internal/imagemeta"
	"github.com/book-expert/album-ingest-service/internal/layout"
	"github.com/book-expert/album-ingest-service/internal/pricing"
	"github.com/book-expert/album-ingest-service/internal/raster"
	"github.com/book-expert/album-ingest-service/internal/sequence"
	"github.com/book-expert/album-ingest-service/internal/specmatch"
)

// processFolder runs one collected folder through every pipeline stage. Files
// are processed strictly sequentially; a file that fails to decode degrades
// to a zero-dimension record and never aborts the folder.
func (processor *Processor) processFolder(
	ctx context.Context,
	collected collect.Folder,
) *album.UploadedFolder {
	folder := &album.UploadedFolder{
		ID:       uuid.New().String(),
		Title:    collected.Title,
		Path:     collected.Path,
		Depth:    collected.Depth,
		Quantity: 1,
		Status:   album.StatusPending,
	}

	processor.extractFiles(ctx, folder, collected)

	pageLayout := layout.ResolveLayout(
		processor.config.LayoutDefault,
		firstInnerPage(folder.Files),
		processor.config.Catalog,
	)
	folder.Layout = pageLayout

	if pageLayout == album.LayoutSpread {
		processor.splitCombinedCovers(folder)
		raster.ExtendHalfCovers(folder.Files, processor.config.HalfWidthTolerance)
	}

	processor.detectEdgeBlanks(folder)

	direction, autoDetected := layout.ResolveBinding(
		processor.config.BindingDefault,
		pageLayout,
		folder.FirstPageBlank,
		folder.LastPageBlank,
	)
	folder.Binding = direction
	folder.AutoBindingDetected = autoDetected

	folder.PageCount = sequence.Apply(folder.Files, pageLayout, direction)

	processor.deriveAlbumSpec(folder)
	specmatch.Match(folder, processor.config.Catalog, processor.config.MatchTolerances)
	pricing.PriceFolder(folder, processor.config.Rates)

	processor.log.Info(
		"Folder '%s': %d file(s), %d page(s), %s, status %s",
		folder.Title, len(folder.Files), folder.PageCount, folder.Layout, folder.Status,
	)

	return folder
}

// extractFiles reads, decodes, and classifies every accepted file in order.
// Cancellation stops the loop; files already extracted stay on the folder.
func (processor *Processor) extractFiles(
	ctx context.Context,
	folder *album.UploadedFolder,
	collected collect.Folder,
) {
	for _, entry := range collected.Files {
		if ctx.Err() != nil {
			processor.log.Warn(
				"Cancelled, leaving folder '%s' after %d file(s)",
				folder.Title, len(folder.Files),
			)

			return
		}

		folder.Files = append(folder.Files, processor.extractOne(entry))
		folder.TotalBytes += entry.ByteSize
	}
}

// extractOne builds one UploadedFile record. Unreadable or undecodable
// sources degrade to zeroed dimensions, which downstream validation counts
// as a mismatch.
func (processor *Processor) extractOne(entry collect.FileEntry) *album.UploadedFile {
	data, readErr := os.ReadFile(entry.Path)
	if readErr != nil {
		processor.log.Warn("Could not read '%s': %v", entry.Path, readErr)
	}

	meta, extractErr := imagemeta.Extract(data, processor.config.AssumedDPI)
	if extractErr != nil {
		processor.log.Warn("Could not decode '%s': %v", entry.Name, extractErr)
	}

	return &album.UploadedFile{
		ID:                uuid.New().String(),
		Name:              entry.Name,
		FolderPath:        entry.Path,
		ByteSize:          entry.ByteSize,
		PixelWidth:        meta.PixelWidth,
		PixelHeight:       meta.PixelHeight,
		DPI:               meta.DPI,
		PhysicalWidth:     meta.PhysicalWidth,
		PhysicalHeight:    meta.PhysicalHeight,
		Ratio:             meta.Ratio,
		CoverType:         classify.Cover(entry.Name),
		PageNumber:        0,
		LeftPage:          0,
		RightPage:         0,
		IsSplit:           false,
		IsExtended:        false,
		IsBlank:           false,
		SplitFrom:         "",
		ContentSide:       album.SideNone,
		PreExtensionWidth: 0,
		Match:             "",
		Raster:            meta.Raster,
		Preview:           meta.Preview,
	}
}

// splitCombinedCovers replaces each combined cover with a synthesized front
// cover at the head of the file list and a back cover at its tail.
func (processor *Processor) splitCombinedCovers(folder *album.UploadedFolder) {
	var remaining []*album.UploadedFile

	for _, file := range folder.Files {
		if file.CoverType != album.CombinedCover {
			remaining = append(remaining, file)

			continue
		}

		front, back := raster.SplitCombined(file)
		folder.SplitCovers = append(folder.SplitCovers, front, back)

		remaining = append([]*album.UploadedFile{front}, remaining...)
		remaining = append(remaining, back)

		processor.log.Info("Split combined cover '%s' in folder '%s'", file.Name, folder.Title)
	}

	folder.Files = remaining
}

// detectEdgeBlanks probes the first and last files only. In spread layout
// the first file's left half and the last file's right half are the halves
// visible as lone leaves; single layout checks the full frame.
func (processor *Processor) detectEdgeBlanks(folder *album.UploadedFolder) {
	if len(folder.Files) == 0 {
		return
	}

	firstRegion, lastRegion := blank.RegionFull, blank.RegionFull
	if folder.Layout == album.LayoutSpread {
		firstRegion, lastRegion = blank.RegionLeft, blank.RegionRight
	}

	first := folder.Files[0]
	first.IsBlank = blank.IsBlank(first.Raster, firstRegion, processor.config.BlankThresholds)
	folder.FirstPageBlank = first.IsBlank

	last := folder.Files[len(folder.Files)-1]
	if last == first {
		// A single-file folder is probed on both edge regions.
		folder.LastPageBlank = blank.IsBlank(first.Raster, lastRegion, processor.config.BlankThresholds)

		return
	}

	last.IsBlank = blank.IsBlank(last.Raster, lastRegion, processor.config.BlankThresholds)
	folder.LastPageBlank = last.IsBlank
}

// deriveAlbumSpec derives the folder's file-level and album-level physical
// specs from a representative file, post split/extension. In spread layout
// one file holds two album pages, so the album width is half the file width.
func (processor *Processor) deriveAlbumSpec(folder *album.UploadedFolder) {
	representative := firstInnerPage(folder.Files)
	if representative == nil && len(folder.Files) > 0 {
		representative = folder.Files[0]
	}

	if representative == nil {
		return
	}

	folder.FileSpecWidth = representative.PhysicalWidth
	folder.FileSpecHeight = representative.PhysicalHeight

	albumWidth := representative.PhysicalWidth
	if folder.Layout == album.LayoutSpread {
		albumWidth = imagemeta.RoundTenth(albumWidth / 2)
	}

	folder.AlbumWidth = albumWidth
	folder.AlbumHeight = representative.PhysicalHeight
	folder.AlbumRatio = album.NormalizeRatio(folder.AlbumWidth, folder.AlbumHeight)
}

// firstInnerPage returns the first inner-page file with usable dimensions,
// the layout probe and representative page for spec derivation. Undecodable
// files cannot represent the folder.
func firstInnerPage(files []*album.UploadedFile) *album.UploadedFile {
	for _, file := range files {
		if file.CoverType == album.InnerPage && file.PhysicalWidth > 0 {
			return file
		}
	}

	return nil
}
