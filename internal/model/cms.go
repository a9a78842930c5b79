package model

import (
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

const (
	PageDraft     = "DRAFT"
	PagePublished = "PUBLISHED"
	PageArchived  = "ARCHIVED"
)

type CMSTemplate struct {
	BaseModel
	Name           string         `db:"name" json:"name"`
	BlockType      string         `db:"block_type" json:"block_type"`
	Description    string         `db:"description" json:"description"`
	RequiredFields pq.StringArray `db:"required_fields" json:"required_fields"`
	DefaultConfig  types.JSONText `db:"default_config" json:"default_config"`
}

type CMSPage struct {
	BaseModel
	Title       string         `db:"title" json:"title"`
	Slug        string         `db:"slug" json:"slug"`
	Content     types.JSONText `db:"content" json:"content"`
	Status      string         `db:"status" json:"status"`
	Version     int            `db:"version" json:"version"`
	PublishedAt *time.Time     `db:"published_at" json:"published_at"`
	CreatedBy   *string        `db:"created_by" json:"created_by"`
	UpdatedBy   *string        `db:"updated_by" json:"updated_by"`
	Blocks      []CMSBlock     `db:"-" json:"blocks,omitempty"`
}

type CMSPageRevision struct {
	ID        string         `db:"id" json:"id"`
	PageID    string         `db:"page_id" json:"page_id"`
	Version   int            `db:"version" json:"version"`
	Title     string         `db:"title" json:"title"`
	Content   types.JSONText `db:"content" json:"content"`
	Note      string         `db:"note" json:"note"`
	CreatedBy *string        `db:"created_by" json:"created_by"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

type CMSBlock struct {
	BaseModel
	PageID     *string        `db:"page_id" json:"page_id"`
	TemplateID string         `db:"template_id" json:"template_id"`
	Name       string         `db:"name" json:"name"`
	Placement  string         `db:"placement" json:"placement"`
	SortOrder  int            `db:"sort_order" json:"sort_order"`
	Config     types.JSONText `db:"config" json:"config"`
	IsActive   bool           `db:"is_active" json:"is_active"`
}
