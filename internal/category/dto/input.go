package dto

type CreateCategoryInput struct {
	ActorID     string
	ParentID    *string
	Name        string
	Slug        string
	Description string
	ImageURL    string
	SortOrder   int
}

type UpdateCategoryInput struct {
	ActorID     string
	ID          string
	ParentID    *string // nil or "" makes the category a root
	Name        string
	Slug        string
	Description string
	ImageURL    string
	SortOrder   int
	IsActive    bool
}
