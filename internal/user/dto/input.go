package dto

import (
	"time"

	"github.com/fekuna/omnipos-commerce/internal/model"
)

type RegisterInput struct {
	Email     string
	Password  string
	Name      string
	Phone     string
	SessionID string
}

type LoginInput struct {
	Email     string
	Password  string
	SessionID string // guest cart to merge, optional
}

type AuthResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

type UpdateProfileInput struct {
	UserID string
	Name   string
	Phone  string
}

type ChangePasswordInput struct {
	UserID          string
	CurrentPassword string
	NewPassword     string
}

type AddressInput struct {
	ID         string
	UserID     string
	Label      string
	Recipient  string
	Phone      string
	Line1      string
	Line2      string
	City       string
	Province   string
	PostalCode string
	Country    string
	IsDefault  bool
}

type UpdateRoleInput struct {
	ActorID string
	UserID  string
	Role    string
}

type SetActiveInput struct {
	ActorID  string
	UserID   string
	IsActive bool
}
