package domain

import "time"

type OrderStatus string

const (
	OrderStatusAccepted   OrderStatus = "ACCEPTED"
	OrderStatusInProgress OrderStatus = "IN_PROGRESS"
	OrderStatusIsSent     OrderStatus = "IS_SENT"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusRejected   OrderStatus = "REJECTED"
)

// DefaultOrderStatus is given to orders created without a status.
const DefaultOrderStatus = OrderStatusAccepted

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusAccepted, OrderStatusInProgress, OrderStatusIsSent,
		OrderStatusCompleted, OrderStatusRejected:
		return true
	}
	return false
}

type Order struct {
	ID        int64       `json:"id"`
	UserID    int64       `json:"user_id"`
	FullPrice float64     `json:"full_price"`
	Address   string      `json:"address"`
	OrderDate time.Time   `json:"order_date"`
	Status    OrderStatus `json:"status"`
	Items     []OrderItem `json:"items"`
}

type OrderItem struct {
	MealID int64 `json:"meal_id"`
	Amount int   `json:"amount"`
}
