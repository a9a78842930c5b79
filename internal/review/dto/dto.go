package dto

type ReviewFilters struct {
	ProductID string
	Status    string
	Rating    int
	Page      int
	PageSize  int
}
