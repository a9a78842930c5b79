package dto

type CodeFilters struct {
	Query    string
	IsActive *bool
	Page     int
	PageSize int
}
