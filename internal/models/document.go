package models

import (
	"time"

	"github.com/tmc/langchaingo/schema"
)

// Metadata keys attached to every chunk of a transcript.
const (
	MetaSource       = "source"
	MetaTitle        = "title"
	MetaAuthor       = "author"
	MetaLength       = "length"
	MetaDescription  = "description"
	MetaViewCount    = "view_count"
	MetaPublishDate  = "publish_date"
	MetaThumbnailURL = "thumbnail_url"
)

type VideoInfo struct {
	ID           string
	Title        string
	Author       string
	Length       int // seconds
	Description  string
	ViewCount    int
	PublishDate  time.Time
	ThumbnailURL string
}

type Transcript struct {
	Video VideoInfo
	Text  string
}

// Metadata returns the video info in the shape carried by each Document.
func (v VideoInfo) Metadata() map[string]any {
	meta := map[string]any{
		MetaSource:       v.ID,
		MetaTitle:        v.Title,
		MetaAuthor:       v.Author,
		MetaLength:       v.Length,
		MetaDescription:  v.Description,
		MetaViewCount:    v.ViewCount,
		MetaThumbnailURL: v.ThumbnailURL,
	}
	if !v.PublishDate.IsZero() {
		meta[MetaPublishDate] = v.PublishDate.Format("2006-01-02")
	}
	return meta
}

// Document wraps the whole transcript as a single unsplit document.
func (t Transcript) Document() schema.Document {
	return schema.Document{
		PageContent: t.Text,
		Metadata:    t.Video.Metadata(),
	}
}

// ConceptMap maps a concept name to its definition.
type ConceptMap map[string]string
