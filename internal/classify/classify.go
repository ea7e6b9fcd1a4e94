// Package classify tags uploaded files as covers or inner pages based on
// their filenames.
package classify

import (
	"strings"

	"github.com/book-expert/album-ingest-service/internal/album"
)

// Keyword sets matched case-insensitively against the filename without its
// extension. Front and back keywords are checked first, so a name such as
// "front_cover" classifies as a front cover even though it also contains a
// combined keyword.
var (
	frontKeywords    = []string{"front", "cover1", "cover_1", "cover-1"}
	backKeywords     = []string{"back", "cover2", "cover_2", "cover-2"}
	combinedKeywords = []string{"combined", "fullcover", "wrap", "cover"}
)

// Cover returns the cover classification for the given filename. It is a
// pure function: no I/O, no error cases. Filenames matching no keyword set
// default to inner pages.
func Cover(filename string) album.CoverType {
	name := strings.ToLower(baseName(filename))

	switch {
	case containsAny(name, frontKeywords):
		return album.FrontCover
	case containsAny(name, backKeywords):
		return album.BackCover
	case containsAny(name, combinedKeywords):
		return album.CombinedCover
	default:
		return album.InnerPage
	}
}

// baseName strips a trailing extension, if any, so that an extension such as
// ".tif" cannot collide with a keyword.
func baseName(filename string) string {
	dot := strings.LastIndex(filename, ".")
	if dot <= 0 {
		return filename
	}

	return filename[:dot]
}

func containsAny(name string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(name, keyword) {
			return true
		}
	}

	return false
}
