package dto

type PageFilters struct {
	Status   string
	Query    string
	Page     int
	PageSize int
}

type BlockFilters struct {
	PageID     string
	Placement  string
	ActiveOnly bool
}
