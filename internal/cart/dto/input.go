package dto

// Owner identifies a cart by user or, for guests, by session token.
type Owner struct {
	UserID    string
	SessionID string
}

func (o Owner) IsGuest() bool { return o.UserID == "" }

type AddItemInput struct {
	VariantID string
	Quantity  int
}

// AbandonedEvent is the payload of CartAbandoned.
type AbandonedEvent struct {
	CartID    string  `json:"cart_id"`
	UserID    *string `json:"user_id"`
	Email     *string `json:"email,omitempty"`
	Subtotal  string  `json:"subtotal"`
	ItemCount int     `json:"item_count"`
}
