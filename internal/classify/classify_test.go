package classify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/book-expert/album-ingest-service/internal/album"
	"github.com/book-expert/album-ingest-service/internal/classify"
)

func TestCover(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		filename string
		want     album.CoverType
	}{
		{"plain page number", "page_001.jpg", album.InnerPage},
		{"front keyword", "FRONT.jpg", album.FrontCover},
		{"front cover compound", "front_cover.png", album.FrontCover},
		{"back keyword", "Back.tiff", album.BackCover},
		{"numbered cover one", "cover1.jpg", album.FrontCover},
		{"numbered cover two", "cover_2.jpg", album.BackCover},
		{"bare cover is combined", "cover.jpg", album.CombinedCover},
		{"wrap keyword", "album_wrap.jpg", album.CombinedCover},
		{"combined keyword", "combined.png", album.CombinedCover},
		{"no extension", "front", album.FrontCover},
		{"keyword in extension ignored", "page_07.cover", album.InnerPage},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.want, classify.Cover(testCase.filename))
		})
	}
}

func TestCover_Deterministic(t *testing.T) {
	t.Parallel()

	first := classify.Cover("holiday_cover.jpg")
	second := classify.Cover("holiday_cover.jpg")
	assert.Equal(t, first, second)
}
