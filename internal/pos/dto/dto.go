package dto

import "time"

type SessionFilters struct {
	StaffID  string
	Status   string
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}
