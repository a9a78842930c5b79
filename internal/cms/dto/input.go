package dto

import "encoding/json"

type TemplateInput struct {
	ActorID        string
	ID             string
	Name           string
	BlockType      string
	Description    string
	RequiredFields []string
	DefaultConfig  json.RawMessage
}

type PageInput struct {
	ActorID string
	ID      string
	Title   string
	Slug    string
	Content json.RawMessage
	Note    string
}

type RestoreInput struct {
	ActorID    string
	PageID     string
	RevisionID string
}

type BlockInput struct {
	ActorID    string
	ID         string
	PageID     *string
	TemplateID string
	Name       string
	Placement  string
	SortOrder  int
	Config     json.RawMessage
	IsActive   *bool
}

type ReorderInput struct {
	ActorID  string
	PageID   string
	BlockIDs []string
}
