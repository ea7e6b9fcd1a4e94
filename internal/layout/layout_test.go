package layout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/book-expert/album-ingest-service/internal/album"
	"github.com/book-expert/album-ingest-service/internal/layout"
)

var squareCatalog = []album.StandardSize{
	{Label: "8x8", Width: 8, Height: 8, Ratio: 1.0},
	{Label: "11x8.5", Width: 11, Height: 8.5, Ratio: 11.0 / 8.5},
}

func probe(width, height float64) *album.UploadedFile {
	return &album.UploadedFile{
		PhysicalWidth:  width,
		PhysicalHeight: height,
		CoverType:      album.InnerPage,
	}
}

func TestResolveLayout_ExplicitWins(t *testing.T) {
	t.Parallel()

	got := layout.ResolveLayout(album.ExplicitLayout(album.LayoutSingle), probe(4, 8), squareCatalog)
	assert.Equal(t, album.LayoutSingle, got)
}

func TestResolveLayout_DoubledWidthMatchesSpread(t *testing.T) {
	t.Parallel()

	// A 4x8 probe doubles to 8x8, an exact square-catalog match.
	got := layout.ResolveLayout(album.AutoLayout(), probe(4, 8), squareCatalog)
	assert.Equal(t, album.LayoutSpread, got)
}

func TestResolveLayout_SingleWidthMatchesSingle(t *testing.T) {
	t.Parallel()

	// An 11x8.5 probe matches the catalog as-is; doubled it matches nothing.
	got := layout.ResolveLayout(album.AutoLayout(), probe(11, 8.5), squareCatalog)
	assert.Equal(t, album.LayoutSingle, got)
}

func TestResolveLayout_AmbiguityDefaultsToSpread(t *testing.T) {
	t.Parallel()

	assert.Equal(t, album.LayoutSpread,
		layout.ResolveLayout(album.AutoLayout(), nil, squareCatalog))
	assert.Equal(t, album.LayoutSpread,
		layout.ResolveLayout(album.AutoLayout(), probe(0, 0), squareCatalog))
	assert.Equal(t, album.LayoutSpread,
		layout.ResolveLayout(album.AutoLayout(), probe(8, 8), nil))
}

func TestResolveBinding_ExplicitWins(t *testing.T) {
	t.Parallel()

	direction, auto := layout.ResolveBinding(
		album.ExplicitBinding(album.RightStartRightEnd), album.LayoutSpread, true, true)
	assert.Equal(t, album.RightStartRightEnd, direction)
	assert.False(t, auto)
}

func TestResolveBinding_TruthTable(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		firstBlank bool
		lastBlank  bool
		want       album.BindingDirection
	}{
		{"both blank", true, true, album.RightStartLeftEnd},
		{"first blank only", true, false, album.RightStartRightEnd},
		{"last blank only", false, true, album.LeftStartLeftEnd},
		{"neither blank", false, false, album.LeftStartRightEnd},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			direction, auto := layout.ResolveBinding(
				album.AutoBinding(), album.LayoutSpread, testCase.firstBlank, testCase.lastBlank)
			assert.Equal(t, testCase.want, direction)
			assert.True(t, auto)
		})
	}
}

func TestResolveBinding_SingleLayoutSkipsDetection(t *testing.T) {
	t.Parallel()

	direction, auto := layout.ResolveBinding(album.AutoBinding(), album.LayoutSingle, true, true)
	assert.Equal(t, album.LeftStartRightEnd, direction)
	assert.False(t, auto)
}
