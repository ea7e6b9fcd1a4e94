package sequence_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/album-ingest-service/internal/album"
	"github.com/book-expert/album-ingest-service/internal/sequence"
)

func makeFiles(count int) []*album.UploadedFile {
	files := make([]*album.UploadedFile, count)
	for i := range files {
		files[i] = &album.UploadedFile{CoverType: album.InnerPage}
	}

	return files
}

func TestApply_SingleLayout(t *testing.T) {
	t.Parallel()

	files := makeFiles(5)
	count := sequence.Apply(files, album.LayoutSingle, album.LeftStartRightEnd)

	assert.Equal(t, 5, count)

	for index, file := range files {
		assert.Equal(t, index+1, file.PageNumber)
		assert.Zero(t, file.LeftPage)
		assert.Zero(t, file.RightPage)
	}
}

func TestApply_SpreadLeftStartRightEnd(t *testing.T) {
	t.Parallel()

	// Ten inner pages, dense numbering: 20 logical pages.
	files := makeFiles(10)
	count := sequence.Apply(files, album.LayoutSpread, album.LeftStartRightEnd)

	assert.Equal(t, 20, count)
	assert.Equal(t, 1, files[0].LeftPage)
	assert.Equal(t, 2, files[0].RightPage)
	assert.Equal(t, 19, files[9].LeftPage)
	assert.Equal(t, 20, files[9].RightPage)
}

func TestApply_SpreadLeftStartLeftEnd(t *testing.T) {
	t.Parallel()

	files := makeFiles(4)
	count := sequence.Apply(files, album.LayoutSpread, album.LeftStartLeftEnd)

	assert.Equal(t, 7, count)
	assert.Equal(t, 1, files[0].LeftPage)
	assert.Equal(t, 2, files[0].RightPage)
	assert.Equal(t, 7, files[3].LeftPage)
	assert.Zero(t, files[3].RightPage)
}

func TestApply_SpreadRightStartLeftEnd(t *testing.T) {
	t.Parallel()

	files := makeFiles(4)
	count := sequence.Apply(files, album.LayoutSpread, album.RightStartLeftEnd)

	assert.Equal(t, 6, count)
	assert.Zero(t, files[0].LeftPage)
	assert.Equal(t, 1, files[0].RightPage)
	assert.Equal(t, 2, files[1].LeftPage)
	assert.Equal(t, 3, files[1].RightPage)
	assert.Equal(t, 4, files[2].LeftPage)
	assert.Equal(t, 5, files[2].RightPage)
	assert.Equal(t, 6, files[3].LeftPage)
	assert.Zero(t, files[3].RightPage)
}

func TestApply_SpreadRightStartRightEnd(t *testing.T) {
	t.Parallel()

	files := makeFiles(4)
	count := sequence.Apply(files, album.LayoutSpread, album.RightStartRightEnd)

	assert.Equal(t, 7, count)
	assert.Zero(t, files[0].LeftPage)
	assert.Equal(t, 1, files[0].RightPage)
	assert.Equal(t, 6, files[3].LeftPage)
	assert.Equal(t, 7, files[3].RightPage)
}

func TestApply_PageNumbersAreUniqueAndContiguous(t *testing.T) {
	t.Parallel()

	directions := []album.BindingDirection{
		album.LeftStartRightEnd,
		album.LeftStartLeftEnd,
		album.RightStartLeftEnd,
		album.RightStartRightEnd,
	}

	for _, direction := range directions {
		t.Run(string(direction), func(t *testing.T) {
			t.Parallel()

			files := makeFiles(6)
			count := sequence.Apply(files, album.LayoutSpread, direction)

			seen := map[int]bool{}

			for _, file := range files {
				for _, slot := range []int{file.LeftPage, file.RightPage} {
					if slot == 0 {
						continue
					}

					require.False(t, seen[slot], "page %d assigned twice", slot)
					seen[slot] = true
				}
			}

			// Assigned slots are exactly 1..count with no gaps.
			require.Len(t, seen, count)
			for page := 1; page <= count; page++ {
				assert.True(t, seen[page], "page %d missing", page)
			}
		})
	}
}

func TestApply_SingleFileEdgeCases(t *testing.T) {
	t.Parallel()

	files := makeFiles(1)
	count := sequence.Apply(files, album.LayoutSpread, album.RightStartLeftEnd)

	assert.Equal(t, 1, count)
	assert.Zero(t, files[0].LeftPage)
	assert.Equal(t, 1, files[0].RightPage)
}

func TestApply_Empty(t *testing.T) {
	t.Parallel()

	assert.Zero(t, sequence.Apply(nil, album.LayoutSpread, album.LeftStartRightEnd))
}
