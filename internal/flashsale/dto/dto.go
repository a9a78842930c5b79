package dto

type SaleFilters struct {
	Status   string
	Page     int
	PageSize int
}
