package dto

type CategoryFilters struct {
	ParentID *string // nil ignores the parent, "" selects root categories
	IsActive *bool
	Query    string
	Page     int
	PageSize int
}
