// Package album defines the data model shared by every stage of the ingest
// pipeline: uploaded files and folders, cover/layout/binding/validation
// enumerations, the standard-size catalog entry, and pricing figures.
package album

import (
	"errors"
	"image"
	"math"
)

// ErrFolderMismatched is returned when a folder with incompatible files is
// marked for selection. The folder stays unselectable until the offending
// files are removed or replaced.
var ErrFolderMismatched = errors.New("folder has mismatched files and cannot be selected")

// CoverType classifies a file's role within an album.
type CoverType string

// Cover classifications assigned by the filename classifier.
const (
	InnerPage     CoverType = "inner_page"
	FrontCover    CoverType = "front_cover"
	BackCover     CoverType = "back_cover"
	CombinedCover CoverType = "combined_cover"
)

// PageLayout selects how many logical pages one file represents.
type PageLayout string

// Supported page layouts.
const (
	LayoutSingle PageLayout = "single"
	LayoutSpread PageLayout = "spread"
)

// BindingDirection records which edge of a spread starts and ends the album.
// It determines where empty page slots appear during sequencing.
type BindingDirection string

// The four binding directions.
const (
	LeftStartRightEnd  BindingDirection = "left_start_right_end"
	LeftStartLeftEnd   BindingDirection = "left_start_left_end"
	RightStartLeftEnd  BindingDirection = "right_start_left_end"
	RightStartRightEnd BindingDirection = "right_start_right_end"
)

// FileMatch is the per-file validation result against the folder's chosen
// spec.
type FileMatch string

// Per-file validation states.
const (
	MatchExact    FileMatch = "exact"
	MatchRatio    FileMatch = "ratio"
	MatchMismatch FileMatch = "mismatch"
)

// FolderStatus is the folder-level validation state machine.
type FolderStatus string

// Folder validation states. RatioMismatch is terminal for selection until the
// user removes or replaces the offending files.
const (
	StatusPending       FolderStatus = "pending"
	StatusExactMatch    FolderStatus = "exact_match"
	StatusRatioMatch    FolderStatus = "ratio_match"
	StatusRatioMismatch FolderStatus = "ratio_mismatch"
)

// ContentSide records which half of a synthesized cover raster holds real
// content, as opposed to blank filler.
type ContentSide string

// Content sides for split and extended covers.
const (
	SideNone  ContentSide = ""
	SideLeft  ContentSide = "left"
	SideRight ContentSide = "right"
)

// LayoutChoice selects between an explicit page layout and auto-detection.
type LayoutChoice struct {
	value    PageLayout
	explicit bool
}

// ExplicitLayout returns a choice that uses the given layout verbatim.
func ExplicitLayout(v PageLayout) LayoutChoice {
	return LayoutChoice{value: v, explicit: true}
}

// AutoLayout returns a choice that defers to the resolver's heuristics.
func AutoLayout() LayoutChoice { return LayoutChoice{value: "", explicit: false} }

// Explicit reports the chosen layout and whether it was set explicitly.
func (c LayoutChoice) Explicit() (PageLayout, bool) { return c.value, c.explicit }

// BindingChoice selects between an explicit binding direction and
// auto-detection from blank-page evidence.
type BindingChoice struct {
	value    BindingDirection
	explicit bool
}

// ExplicitBinding returns a choice that uses the given direction verbatim.
func ExplicitBinding(v BindingDirection) BindingChoice {
	return BindingChoice{value: v, explicit: true}
}

// AutoBinding returns a choice that defers to blank-page detection.
func AutoBinding() BindingChoice { return BindingChoice{value: "", explicit: false} }

// Explicit reports the chosen direction and whether it was set explicitly.
func (c BindingChoice) Explicit() (BindingDirection, bool) { return c.value, c.explicit }

// StandardSize is one entry of the externally supplied catalog of album
// sizes. Width and Height are inches; Ratio is the normalized aspect ratio.
type StandardSize struct {
	Label  string  `json:"label"  toml:"label"`
	Width  float64 `json:"width"  toml:"width"`
	Height float64 `json:"height" toml:"height"`
	Ratio  float64 `json:"ratio"  toml:"ratio"`
}

// Rates holds the externally supplied pricing reference values. A missing
// rate is zero and never an error; quotes remain producible for display.
type Rates struct {
	PerPage float64 `json:"per_page" toml:"per_page"`
	Print   float64 `json:"print"    toml:"print"`
	Cover   float64 `json:"cover"    toml:"cover"`
	Tax     float64 `json:"tax"      toml:"tax"`
}

// Price holds the computed order figures for a folder or additional order.
type Price struct {
	Unit     float64 `json:"unit"`
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// AdditionalOrder is an alternate size/quantity request against the same
// underlying file set as its parent folder.
type AdditionalOrder struct {
	ID       string       `json:"id"`
	Size     StandardSize `json:"size"`
	Quantity int          `json:"quantity"`
	Price    Price        `json:"price"`
}

// UploadedFile is one page or cover image flowing through the pipeline.
// The Raster slot is exclusively owned by the file: it is replaced wholesale
// when the splitter or extender synthesizes new content and is never aliased
// across files.
type UploadedFile struct {
	ID                string
	Name              string
	FolderPath        string
	ByteSize          int64
	PixelWidth        int
	PixelHeight       int
	DPI               float64
	PhysicalWidth     float64
	PhysicalHeight    float64
	Ratio             float64
	CoverType         CoverType
	PageNumber        int
	LeftPage          int
	RightPage         int
	IsSplit           bool
	IsExtended        bool
	IsBlank           bool
	SplitFrom         string
	ContentSide       ContentSide
	PreExtensionWidth int
	Match             FileMatch
	Raster            image.Image
	Preview           []byte
}

// UploadedFolder is one candidate order line built from one directory's
// accepted image files.
type UploadedFolder struct {
	ID                  string
	Title               string
	Path                string
	Depth               int
	Files               []*UploadedFile
	TotalBytes          int64
	PageCount           int
	Layout              PageLayout
	Binding             BindingDirection
	FileSpecWidth       float64
	FileSpecHeight      float64
	AlbumWidth          float64
	AlbumHeight         float64
	AlbumRatio          float64
	SizeLabel           string
	Status              FolderStatus
	Approved            bool
	Selected            bool
	ExactCount          int
	RatioCount          int
	MismatchCount       int
	MismatchedFiles     []string
	SplitCovers         []*UploadedFile
	AdditionalOrders    []*AdditionalOrder
	Quantity            int
	FirstPageBlank      bool
	LastPageBlank       bool
	AutoBindingDetected bool
	Price               Price
}

// Approve records explicit user approval of a RatioMatch folder. An approved
// folder behaves as if it matched exactly for selection purposes.
func (f *UploadedFolder) Approve() {
	if f.Status == StatusRatioMatch {
		f.Approved = true
	}
}

// Selectable reports whether the folder may be included in the final order.
func (f *UploadedFolder) Selectable() bool {
	switch f.Status {
	case StatusExactMatch:
		return true
	case StatusRatioMatch:
		return f.Approved
	case StatusPending, StatusRatioMismatch:
		return false
	default:
		return false
	}
}

// SetSelected marks the folder for inclusion in the final order. Selecting a
// folder that is not selectable returns ErrFolderMismatched.
func (f *UploadedFolder) SetSelected(selected bool) error {
	if selected && !f.Selectable() {
		return ErrFolderMismatched
	}

	f.Selected = selected

	return nil
}

// AddAdditionalOrder attaches an alternate size/quantity request sharing the
// folder's page count. The price is computed later by the price calculator.
func (f *UploadedFolder) AddAdditionalOrder(id string, size StandardSize, quantity int) *AdditionalOrder {
	order := &AdditionalOrder{
		ID:       id,
		Size:     size,
		Quantity: quantity,
		Price:    Price{Unit: 0, Subtotal: 0, Tax: 0, Total: 0},
	}
	f.AdditionalOrders = append(f.AdditionalOrders, order)

	return order
}

// Titles returns the display titles of the given folders, in order. This is
// the advisory hook for an external "recently ordered" duplicate check.
func Titles(folders []*UploadedFolder) []string {
	titles := make([]string, 0, len(folders))
	for _, folder := range folders {
		titles = append(titles, folder.Title)
	}

	return titles
}

// NormalizeRatio returns an orientation-independent aspect ratio: the longer
// dimension divided by the shorter, always >= 1. Zero dimensions yield zero,
// which downstream validation treats as a mismatch.
func NormalizeRatio(width, height float64) float64 {
	if width <= 0 || height <= 0 {
		return 0
	}

	return math.Max(width, height) / math.Min(width, height)
}
