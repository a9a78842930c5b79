package dto

import "time"

type LogFilters struct {
	ActorID    string
	EntityType string
	EntityID   string
	Action     string
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}
