package auth

import (
	"github.com/gin-gonic/gin"
)

const (
	userIDKey = "auth.user_id"
	roleKey   = "auth.role"
	emailKey  = "auth.email"
)

const (
	RoleCustomer = "CUSTOMER"
	RoleStaff    = "STAFF"
	RoleAdmin    = "ADMIN"
)

type UserContext struct {
	UserID string
	Email  string
	Role   string
}

func SetUser(c *gin.Context, u UserContext) {
	c.Set(userIDKey, u.UserID)
	c.Set(roleKey, u.Role)
	c.Set(emailKey, u.Email)
}

// GetUserID returns the authenticated user's id, or "" for anonymous requests.
func GetUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func GetRole(c *gin.Context) string {
	return c.GetString(roleKey)
}

func IsStaff(role string) bool {
	return role == RoleStaff || role == RoleAdmin
}

func ValidRole(role string) bool {
	switch role {
	case RoleCustomer, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// CartSessionHeader carries the guest cart token for anonymous shoppers.
const CartSessionHeader = "X-Cart-Session"
