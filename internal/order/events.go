package order

const (
	EventCreated       = "OrderCreated"
	EventStatusChanged = "OrderStatusChanged"
)

// Event is the payload of every order event on the orders topic.
type Event struct {
	OrderID        string  `json:"order_id"`
	OrderNumber    string  `json:"order_number"`
	UserID         *string `json:"user_id"`
	Channel        string  `json:"channel"`
	Status         string  `json:"status"`
	PreviousStatus string  `json:"previous_status,omitempty"`
	GrandTotal     string  `json:"grand_total"`
	PointsRedeemed int     `json:"points_redeemed"`
}
