package model

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

type MediaAsset struct {
	BaseModel
	FileName     string  `db:"file_name" json:"file_name"`
	OriginalName string  `db:"original_name" json:"original_name"`
	MimeType     string  `db:"mime_type" json:"mime_type"`
	SizeBytes    int64   `db:"size_bytes" json:"size_bytes"`
	StoragePath  string  `db:"storage_path" json:"-"`
	URL          string  `db:"url" json:"url"`
	AltText      string  `db:"alt_text" json:"alt_text"`
	Folder       string  `db:"folder" json:"folder"`
	UploadedBy   *string `db:"uploaded_by" json:"uploaded_by"`
}

type FeatureFlag struct {
	BaseModel
	Key         string `db:"key" json:"key"`
	Description string `db:"description" json:"description"`
	Enabled     bool   `db:"enabled" json:"enabled"`
	IsPremium   bool   `db:"is_premium" json:"is_premium"`
}

type Theme struct {
	BaseModel
	Name        string         `db:"name" json:"name"`
	Description string         `db:"description" json:"description"`
	Settings    types.JSONText `db:"settings" json:"settings"`
	IsActive    bool           `db:"is_active" json:"is_active"`
}

const (
	SEOProduct  = "product"
	SEOCategory = "category"
	SEOPage     = "page"
)

type SEOMetadata struct {
	BaseModel
	EntityType      string `db:"entity_type" json:"entity_type"`
	EntityID        string `db:"entity_id" json:"entity_id"`
	MetaTitle       string `db:"meta_title" json:"meta_title"`
	MetaDescription string `db:"meta_description" json:"meta_description"`
	CanonicalURL    string `db:"canonical_url" json:"canonical_url"`
	OGImage         string `db:"og_image" json:"og_image"`
	NoIndex         bool   `db:"no_index" json:"no_index"`
}

// SitemapEntry is one indexable public URL.
type SitemapEntry struct {
	EntityType string    `db:"entity_type"`
	Slug       string    `db:"slug"`
	UpdatedAt  time.Time `db:"updated_at"`
}

const (
	SubscriberSubscribed   = "SUBSCRIBED"
	SubscriberUnsubscribed = "UNSUBSCRIBED"
)

type NewsletterSubscriber struct {
	BaseModel
	Email          string     `db:"email" json:"email"`
	Status         string     `db:"status" json:"status"`
	Source         string     `db:"source" json:"source"`
	SubscribedAt   time.Time  `db:"subscribed_at" json:"subscribed_at"`
	UnsubscribedAt *time.Time `db:"unsubscribed_at" json:"unsubscribed_at"`
}

// ActivityLog lives in MongoDB, not Postgres.
type ActivityLog struct {
	ID         string                 `bson:"_id" json:"id"`
	ActorID    string                 `bson:"actor_id" json:"actor_id"`
	ActorRole  string                 `bson:"actor_role" json:"actor_role"`
	Action     string                 `bson:"action" json:"action"`
	EntityType string                 `bson:"entity_type" json:"entity_type"`
	EntityID   string                 `bson:"entity_id" json:"entity_id"`
	Metadata   map[string]interface{} `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt  time.Time              `bson:"created_at" json:"created_at"`
}
