// Package specmatch maps a folder's derived album size to the closest
// standard catalog size and drives the folder validation state machine.
package specmatch

import (
	"math"

	"github.com/book-expert/album-ingest-service/internal/album"
)

// Default tolerances, in inches (Snap, Exact) and ratio units (Ratio).
const (
	// DefaultSnapTolerance is the per-axis distance within which the
	// displayed album size snaps to the catalog entry.
	DefaultSnapTolerance = 0.5

	// DefaultExactTolerance is the per-axis distance within which a file's
	// page size counts as exactly the catalog size. Tighter than the snap
	// tolerance: a 7.9x8.1 album snaps to 8x8 for display but is still only
	// a ratio match.
	DefaultExactTolerance = 0.05

	// DefaultRatioTolerance is the normalized-ratio distance within which
	// two sizes count as ratio-compatible.
	DefaultRatioTolerance = 0.05
)

// Tolerances parameterizes matching. Zero values fall back to the defaults.
type Tolerances struct {
	Snap  float64
	Exact float64
	Ratio float64
}

func (t Tolerances) applyDefaults() Tolerances {
	if t.Snap <= 0 {
		t.Snap = DefaultSnapTolerance
	}

	if t.Exact <= 0 {
		t.Exact = DefaultExactTolerance
	}

	if t.Ratio <= 0 {
		t.Ratio = DefaultRatioTolerance
	}

	return t
}

// Match validates the folder against the catalog. It finds the catalog entry
// with the nearest normalized ratio, snaps the displayed album size when the
// raw dimensions are close enough, classifies every file, and transitions the
// folder status out of Pending. An empty catalog leaves the folder Pending.
func Match(folder *album.UploadedFolder, catalog []album.StandardSize, tolerances Tolerances) {
	if len(catalog) == 0 {
		return
	}

	tolerances = tolerances.applyDefaults()

	folder.AlbumRatio = album.NormalizeRatio(folder.AlbumWidth, folder.AlbumHeight)
	entry := closestEntry(folder.AlbumRatio, folder.AlbumWidth, folder.AlbumHeight, catalog)

	if withinBox(folder.AlbumWidth, folder.AlbumHeight, entry, tolerances.Snap) {
		folder.AlbumWidth = entry.Width
		folder.AlbumHeight = entry.Height
		folder.SizeLabel = entry.Label
	}

	classifyFiles(folder, entry, tolerances)

	switch {
	case folder.MismatchCount > 0:
		folder.Status = album.StatusRatioMismatch
	case folder.RatioCount > 0:
		folder.Status = album.StatusRatioMatch
	default:
		folder.Status = album.StatusExactMatch
	}
}

// classifyFiles assigns a per-file match state against the catalog entry and
// accumulates the folder's counts. In spread layout a file holds two pages,
// so its effective page width is half its physical width. Zeroed dimensions
// (undecodable images) count as mismatches.
func classifyFiles(folder *album.UploadedFolder, entry album.StandardSize, tolerances Tolerances) {
	folder.ExactCount = 0
	folder.RatioCount = 0
	folder.MismatchCount = 0
	folder.MismatchedFiles = nil

	entryRatio := entryRatio(entry)

	for _, file := range folder.Files {
		pageWidth := file.PhysicalWidth
		if folder.Layout == album.LayoutSpread {
			pageWidth /= 2
		}

		file.Match = classifyOne(pageWidth, file.PhysicalHeight, entry, entryRatio, tolerances)

		switch file.Match {
		case album.MatchExact:
			folder.ExactCount++
		case album.MatchRatio:
			folder.RatioCount++
		case album.MatchMismatch:
			folder.MismatchCount++
			folder.MismatchedFiles = append(folder.MismatchedFiles, file.Name)
		}
	}
}

func classifyOne(
	width, height float64,
	entry album.StandardSize,
	entryRatio float64,
	tolerances Tolerances,
) album.FileMatch {
	if width <= 0 || height <= 0 {
		return album.MatchMismatch
	}

	if withinBox(width, height, entry, tolerances.Exact) {
		return album.MatchExact
	}

	ratio := album.NormalizeRatio(width, height)
	if math.Abs(ratio-entryRatio) <= tolerances.Ratio {
		return album.MatchRatio
	}

	return album.MatchMismatch
}

// withinBox compares dimensions against a catalog entry within a per-axis
// tolerance, orientation-independently.
func withinBox(width, height float64, entry album.StandardSize, tolerance float64) bool {
	longSide := math.Max(width, height)
	shortSide := math.Min(width, height)
	entryLong := math.Max(entry.Width, entry.Height)
	entryShort := math.Min(entry.Width, entry.Height)

	return math.Abs(longSide-entryLong) <= tolerance &&
		math.Abs(shortSide-entryShort) <= tolerance
}

// closestEntry picks the catalog entry whose ratio is nearest to the given
// normalized ratio. Entries with equal ratios (the square sizes) tie-break on
// absolute dimension distance.
func closestEntry(ratio, width, height float64, catalog []album.StandardSize) album.StandardSize {
	const ratioEpsilon = 1e-9

	best := catalog[0]
	bestRatioDistance := math.MaxFloat64
	bestBoxDistance := math.MaxFloat64

	for _, size := range catalog {
		ratioDistance := math.Abs(entryRatio(size) - ratio)
		boxDistance := boxDistance(width, height, size)

		closer := ratioDistance < bestRatioDistance-ratioEpsilon
		tied := math.Abs(ratioDistance-bestRatioDistance) <= ratioEpsilon

		if closer || (tied && boxDistance < bestBoxDistance) {
			bestRatioDistance = ratioDistance
			bestBoxDistance = boxDistance
			best = size
		}
	}

	return best
}

func boxDistance(width, height float64, entry album.StandardSize) float64 {
	longSide := math.Max(width, height)
	shortSide := math.Min(width, height)

	return math.Abs(longSide-math.Max(entry.Width, entry.Height)) +
		math.Abs(shortSide-math.Min(entry.Width, entry.Height))
}

func entryRatio(size album.StandardSize) float64 {
	if size.Ratio > 0 {
		return size.Ratio
	}

	return album.NormalizeRatio(size.Width, size.Height)
}

// DefaultCatalog is the built-in standard-size table used when no external
// catalog is configured.
func DefaultCatalog() []album.StandardSize {
	return []album.StandardSize{
		{Label: "8x8", Width: 8, Height: 8, Ratio: 1.0},
		{Label: "10x10", Width: 10, Height: 10, Ratio: 1.0},
		{Label: "12x12", Width: 12, Height: 12, Ratio: 1.0},
		{Label: "11x8.5", Width: 11, Height: 8.5, Ratio: album.NormalizeRatio(11, 8.5)},
		{Label: "14x11", Width: 14, Height: 11, Ratio: album.NormalizeRatio(14, 11)},
		{Label: "12x9", Width: 12, Height: 9, Ratio: album.NormalizeRatio(12, 9)},
	}
}
