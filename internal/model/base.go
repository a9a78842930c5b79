package model

import "time"

type BaseModel struct {
	ID        string    `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// NewBase stamps a fresh id and timestamps.
func NewBase(id string, now time.Time) BaseModel {
	return BaseModel{ID: id, CreatedAt: now, UpdatedAt: now}
}
