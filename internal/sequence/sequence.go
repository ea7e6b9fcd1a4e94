// Package sequence assigns final logical page numbers to a folder's files,
// honoring the chosen page layout and binding direction.
package sequence

import (
	"github.com/book-expert/album-ingest-service/internal/album"
)

// Apply numbers the given files in place and returns the folder's total page
// count. Files must already be in their final order (post split/extension).
//
// In single layout each file receives its 1-based index. In spread layout
// each file maps to a left/right page pair; the binding direction decides
// where empty slots (value 0) appear at the start and end of the album.
func Apply(
	files []*album.UploadedFile,
	pageLayout album.PageLayout,
	direction album.BindingDirection,
) int {
	if len(files) == 0 {
		return 0
	}

	if pageLayout != album.LayoutSpread {
		return applySingle(files)
	}

	return applySpread(files, direction)
}

func applySingle(files []*album.UploadedFile) int {
	for index, file := range files {
		file.PageNumber = index + 1
		file.LeftPage = 0
		file.RightPage = 0
	}

	return len(files)
}

func applySpread(files []*album.UploadedFile, direction album.BindingDirection) int {
	total := len(files)

	for index, file := range files {
		left, right := spreadSlots(direction, index, total)
		file.LeftPage = left
		file.RightPage = right
		file.PageNumber = firstNonZero(left, right)
	}

	return countAssigned(files)
}

// spreadSlots computes the left/right page pair for the file at zero-based
// index of total files. A zero slot is an unbound blank.
func spreadSlots(direction album.BindingDirection, index, total int) (int, int) {
	first := index == 0
	last := index == total-1

	switch direction {
	case album.LeftStartRightEnd:
		return 2*index + 1, 2*index + 2
	case album.LeftStartLeftEnd:
		if last {
			return 2*index + 1, 0
		}

		return 2*index + 1, 2*index + 2
	case album.RightStartLeftEnd:
		if first {
			return 0, 1
		}

		if last {
			return 2 * index, 0
		}

		return 2 * index, 2*index + 1
	case album.RightStartRightEnd:
		if first {
			return 0, 1
		}

		return 2 * index, 2*index + 1
	default:
		return 2*index + 1, 2*index + 2
	}
}

// countAssigned counts the populated page slots, which is the folder's
// logical page count.
func countAssigned(files []*album.UploadedFile) int {
	count := 0

	for _, file := range files {
		if file.LeftPage > 0 {
			count++
		}

		if file.RightPage > 0 {
			count++
		}
	}

	return count
}

func firstNonZero(a, b int) int {
	if a > 0 {
		return a
	}

	return b
}
