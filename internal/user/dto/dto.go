package dto

type UserFilters struct {
	Role     string
	Query    string // matches email or name
	IsActive *bool
	Page     int
	PageSize int
}
