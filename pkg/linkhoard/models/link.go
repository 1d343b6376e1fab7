package models

import "time"

// MediaType classifies what kind of resource a link points at.
// Only the values below are ever stored; anything unrecognized is
// captured as MediaOther and extracted with the generic article strategy.
type MediaType string

const (
	MediaArticle MediaType = "article"
	MediaVideo   MediaType = "video"
	MediaTweet   MediaType = "tweet"
	MediaOther   MediaType = "other"
)

// Link represents a saved URL with its extracted content and AI summary.
// Deletes are hard deletes: the URL is the link's unique identity, and a
// deleted URL must be capturable again.
type Link struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	URL         string    `gorm:"uniqueIndex;not null" json:"url"`
	Title       string    `gorm:"not null" json:"title"`
	Summary     string    `json:"summary"`
	ContentText string    `json:"content_text"`
	MediaType   MediaType `gorm:"default:article" json:"media_type"`
	IsRead      bool      `gorm:"default:false" json:"is_read"`

	// Relationships
	Tags []Tag `gorm:"many2many:link_tags;" json:"tags,omitempty"`
}
