package dto

type AccountFilters struct {
	TierID   string
	Query    string
	Page     int
	PageSize int
}
