package services

import "digiread/internal/models"

// Allowed order status moves. paid is final.
var OrderTransitions = map[models.OrderStatus]map[models.OrderStatus]bool{
	models.OrderPending: {models.OrderPaid: true, models.OrderFailed: true},
	models.OrderFailed:  {models.OrderPaid: true}, // buyer retried from the same snap page
	models.OrderPaid:    {},
}

func canTransition(current, to models.OrderStatus) bool {
	if current == "" {
		return to == models.OrderPending
	}
	nexts, ok := OrderTransitions[current]
	if !ok {
		return false
	}
	return nexts[to]
}

// targetStatus maps a Midtrans notification onto an order status. ok is false
// for notifications that change nothing, such as pending or challenged captures.
func targetStatus(n Notification) (to models.OrderStatus, ok bool) {
	switch n.TransactionStatus {
	case "settlement":
		return models.OrderPaid, true
	case "capture":
		if n.FraudStatus == "accept" {
			return models.OrderPaid, true
		}
	case "expire", "cancel", "deny":
		return models.OrderFailed, true
	}
	return "", false
}
