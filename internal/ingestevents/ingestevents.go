// Package ingestevents defines the event payloads exchanged by the album
// ingest worker over NATS.
package ingestevents

import (
	"github.com/book-expert/events"

	"github.com/book-expert/album-ingest-service/internal/album"
)

// AlbumDroppedEvent announces a directory of album folders dropped on a
// shared volume, ready for ingestion. Empty layout/binding defaults request
// auto-detection.
type AlbumDroppedEvent struct {
	Header         events.EventHeader     `json:"header"`
	Path           string                 `json:"path"`
	LayoutDefault  album.PageLayout       `json:"layout_default,omitempty"`
	BindingDefault album.BindingDirection `json:"binding_default,omitempty"`
}

// AlbumQuotedEvent carries one validated, priced folder to the cart/checkout
// collaborator.
type AlbumQuotedEvent struct {
	Header      events.EventHeader     `json:"header"`
	FolderID    string                 `json:"folder_id"`
	Title       string                 `json:"title"`
	Path        string                 `json:"path"`
	PageCount   int                    `json:"page_count"`
	Layout      album.PageLayout       `json:"layout"`
	Binding     album.BindingDirection `json:"binding"`
	AutoBinding bool                   `json:"auto_binding"`
	Status      album.FolderStatus     `json:"status"`
	AlbumWidth  float64                `json:"album_width"`
	AlbumHeight float64                `json:"album_height"`
	SizeLabel   string                 `json:"size_label,omitempty"`
	Selectable  bool                   `json:"selectable"`
	Price       album.Price            `json:"price"`
}

// PreviewCreatedEvent announces one preview raster uploaded to the preview
// object store.
type PreviewCreatedEvent struct {
	Header     events.EventHeader `json:"header"`
	PreviewKey string             `json:"preview_key"`
	FolderID   string             `json:"folder_id"`
	FileID     string             `json:"file_id"`
	FileName   string             `json:"file_name"`
	PageNumber int                `json:"page_number"`
}

// Choices converts the event's optional defaults into the pipeline's tagged
// layout and binding choices.
func (e *AlbumDroppedEvent) Choices() (album.LayoutChoice, album.BindingChoice) {
	layoutChoice := album.AutoLayout()
	if e.LayoutDefault != "" {
		layoutChoice = album.ExplicitLayout(e.LayoutDefault)
	}

	bindingChoice := album.AutoBinding()
	if e.BindingDefault != "" {
		bindingChoice = album.ExplicitBinding(e.BindingDefault)
	}

	return layoutChoice, bindingChoice
}
