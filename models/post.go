package models

import (
	"strings"
	"time"
)

type PostType string

const (
	PostTypeBlog  PostType = "blog"
	PostTypeEvent PostType = "event"
)

// DefaultPostImage is served when a post has no upload of its own.
const DefaultPostImage = "/images/default-post.jpg"

// Post is either a blog article or an event. Slugs are unique per type.
type Post struct {
	ContentRecord
	Type      PostType   `json:"type" db:"type" gorm:"type:text;not null;uniqueIndex:idx_posts_type_slug;index" validate:"oneof=blog event" label:"type"`
	Title     string     `json:"title" db:"title" gorm:"type:varchar(100);not null" validate:"max=100" label:"title"`
	Slug      string     `json:"slug" db:"slug" gorm:"type:text;not null;uniqueIndex:idx_posts_type_slug" validate:"slug" label:"slug"`
	Content   string     `json:"content" db:"content" gorm:"type:text"`
	Image     string     `json:"image" db:"image" gorm:"type:text"`
	EventDate *time.Time `json:"eventDate,omitempty" db:"event_date" gorm:"type:timestamptz;index"`
	Location  string     `json:"location,omitempty" db:"location" gorm:"type:text"`
}

func (p *Post) UniqueKeys() []string {
	return []string{"type_slug:" + string(p.Type) + "/" + strings.ToLower(p.Slug)}
}
