package model

type User struct {
	BaseModel
	Email        string  `db:"email" json:"email"`
	PasswordHash string  `db:"password_hash" json:"-"`
	Name         string  `db:"name" json:"name"`
	Phone        *string `db:"phone" json:"phone,omitempty"`
	Role         string  `db:"role" json:"role"`
	IsActive     bool    `db:"is_active" json:"is_active"`
}

type Address struct {
	BaseModel
	UserID     string `db:"user_id" json:"user_id"`
	Label      string `db:"label" json:"label"`
	Recipient  string `db:"recipient" json:"recipient"`
	Phone      string `db:"phone" json:"phone"`
	Line1      string `db:"line1" json:"line1"`
	Line2      string `db:"line2" json:"line2"`
	City       string `db:"city" json:"city"`
	Province   string `db:"province" json:"province"`
	PostalCode string `db:"postal_code" json:"postal_code"`
	Country    string `db:"country" json:"country"`
	IsDefault  bool   `db:"is_default" json:"is_default"`
}
