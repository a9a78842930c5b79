package dto

import "time"

type OrderFilters struct {
	UserID   string
	Status   string
	Channel  string
	From     *time.Time
	To       *time.Time
	Query    string
	Page     int
	PageSize int
}
