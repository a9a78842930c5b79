package order

import "github.com/fekuna/omnipos-commerce/internal/model"

var transitions = map[string][]string{
	model.OrderPending:    {model.OrderPaid, model.OrderCancelled},
	model.OrderPaid:       {model.OrderProcessing, model.OrderCancelled, model.OrderRefunded},
	model.OrderProcessing: {model.OrderShipped, model.OrderCancelled},
	model.OrderShipped:    {model.OrderDelivered},
	model.OrderDelivered:  {model.OrderRefunded},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CustomerCancellable lists the statuses a customer may still cancel from.
func CustomerCancellable(status string) bool {
	return status == model.OrderPending || status == model.OrderPaid
}
