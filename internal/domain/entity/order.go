package entity

import "github.com/shopspring/decimal"

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderShipped   OrderStatus = "SHIPPED"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderConfirmed, OrderCancelled},
	OrderConfirmed: {OrderShipped, OrderCancelled},
	OrderShipped:   {OrderDelivered},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// CanTransition reports whether the backend would accept moving from s to next.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type DeliveryMethod string

const (
	DeliverySpeedy DeliveryMethod = "speedy"
	DeliveryEcont  DeliveryMethod = "econt"
)

type DeliveryType string

const (
	DeliveryToOffice  DeliveryType = "office"
	DeliveryToAddress DeliveryType = "address"
)

type Order struct {
	ID              int64           `json:"id"`
	CustomerEmail   string          `json:"customerEmail"`
	CustomerName    string          `json:"customerName,omitempty"`
	CustomerPhone   string          `json:"customerPhone,omitempty"`
	Item            *Listing        `json:"item"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	DeliveryMethod  DeliveryMethod  `json:"deliveryMethod"`
	DeliveryAddress string          `json:"deliveryAddress"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	CreatedAt       Timestamp       `json:"createdAt"`
	Status          OrderStatus     `json:"status"`
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.Item = o.Item.Clone()
	return &c
}
