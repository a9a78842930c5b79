package model

const (
	ReviewPending  = "PENDING"
	ReviewApproved = "APPROVED"
	ReviewRejected = "REJECTED"
)

type Review struct {
	BaseModel
	ProductID  string `db:"product_id" json:"product_id"`
	UserID     string `db:"user_id" json:"user_id"`
	Rating     int    `db:"rating" json:"rating"`
	Title      string `db:"title" json:"title"`
	Body       string `db:"body" json:"body"`
	Status     string `db:"status" json:"status"`
	IsVerified bool   `db:"is_verified" json:"is_verified"`
	AuthorName string `db:"author_name" json:"author_name,omitempty"`
}
