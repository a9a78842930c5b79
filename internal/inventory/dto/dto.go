package dto

import "time"

type MovementFilters struct {
	ProductID    string
	VariantID    string
	MovementType string
	StartDate    *time.Time
	EndDate      *time.Time
	Page         int
	PageSize     int
}
