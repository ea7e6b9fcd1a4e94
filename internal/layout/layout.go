// Package layout resolves a folder's effective page layout and binding
// direction, from explicit user defaults or from heuristic evidence.
package layout

import (
	"math"

	"github.com/book-expert/album-ingest-service/internal/album"
)

// DefaultBinding is the binding direction used when nothing blank-page
// evidence suggests otherwise.
const DefaultBinding = album.LeftStartRightEnd

// ResolveLayout decides the folder's page layout. An explicit choice is used
// verbatim. Otherwise the first probed inner page's physical dimensions are
// held against the standard-size catalog: when doubling the probed width
// (simulating a spread) ratio-matches the catalog more closely than the
// probed width alone, the layout resolves to spread. Ambiguity, including an
// unusable probe or an empty catalog, defaults to spread.
func ResolveLayout(
	choice album.LayoutChoice,
	probe *album.UploadedFile,
	catalog []album.StandardSize,
) album.PageLayout {
	if value, explicit := choice.Explicit(); explicit {
		return value
	}

	if probe == nil || probe.PhysicalWidth <= 0 || probe.PhysicalHeight <= 0 || len(catalog) == 0 {
		return album.LayoutSpread
	}

	singleDistance := closestRatioDistance(
		album.NormalizeRatio(probe.PhysicalWidth, probe.PhysicalHeight),
		catalog,
	)
	spreadDistance := closestRatioDistance(
		album.NormalizeRatio(probe.PhysicalWidth*2, probe.PhysicalHeight),
		catalog,
	)

	if singleDistance < spreadDistance {
		return album.LayoutSingle
	}

	return album.LayoutSpread
}

// ResolveBinding decides the binding direction and reports whether it was
// auto-detected. An explicit choice is used verbatim. Auto-detection consults
// the first/last blank flags only in spread layout; in single layout the
// default direction applies without detection.
func ResolveBinding(
	choice album.BindingChoice,
	pageLayout album.PageLayout,
	firstBlank, lastBlank bool,
) (album.BindingDirection, bool) {
	if value, explicit := choice.Explicit(); explicit {
		return value, false
	}

	if pageLayout != album.LayoutSpread {
		return DefaultBinding, false
	}

	return bindingFromBlanks(firstBlank, lastBlank), true
}

// bindingFromBlanks is the pure truth table over (firstBlank, lastBlank).
func bindingFromBlanks(firstBlank, lastBlank bool) album.BindingDirection {
	switch {
	case firstBlank && lastBlank:
		return album.RightStartLeftEnd
	case firstBlank:
		return album.RightStartRightEnd
	case lastBlank:
		return album.LeftStartLeftEnd
	default:
		return DefaultBinding
	}
}

// closestRatioDistance returns the smallest absolute difference between the
// given normalized ratio and any catalog entry's ratio.
func closestRatioDistance(ratio float64, catalog []album.StandardSize) float64 {
	best := math.MaxFloat64

	for _, size := range catalog {
		entryRatio := size.Ratio
		if entryRatio <= 0 {
			entryRatio = album.NormalizeRatio(size.Width, size.Height)
		}

		distance := math.Abs(entryRatio - ratio)
		if distance < best {
			best = distance
		}
	}

	return best
}
