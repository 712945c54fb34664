package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Article represents a published news article stored in MongoDB
type Article struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Title       string             `json:"title" bson:"title"`
	Content     string             `json:"content" bson:"content"` // rich text markup, opaque to the backend
	AuthorID    uint               `json:"author_id" bson:"author_id"`
	Image       *string            `json:"image" bson:"image"`
	Files       []string           `json:"files" bson:"files"` // slice order is the display order
	IsPublished bool               `json:"isPublished" bson:"is_published"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// ArticleResponse is an Article with the author resolved to its public projection.
type ArticleResponse struct {
	Article
	Author UserCompact `json:"author"`
}

// ArticlePatch carries the fields of an update request. Empty Title/Content mean
// "leave unchanged", never "clear the field". Pointer fields distinguish an absent
// field from its zero value.
type ArticlePatch struct {
	Title         string
	Content       string
	IsPublished   *bool
	Image         *string
	ExistingFiles []string // references to keep, nil when the field was absent
	NewFiles      []string
	HasFiles      bool // true when existingFiles or new uploads were present
}
