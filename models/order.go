package models

import "time"

type OrderStatus string

const (
	OrderStatusUnpaid OrderStatus = "unpaid" // created, awaiting payment confirmation
	OrderStatusPaid   OrderStatus = "paid"   // confirmed by the payment processor
)

type ShippingAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Order is immutable after creation except for Status and StripeSessionID.
type Order struct {
	ID              uint            `gorm:"primaryKey" json:"-"`
	OrderRef        string          `gorm:"uniqueIndex;not null" json:"id"`
	UserID          string          `gorm:"index;not null" json:"user_id"`
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Subtotal        float64         `json:"subtotal"`
	ShippingCost    float64         `json:"shipping_cost"`
	Total           float64         `json:"total"`
	Status          OrderStatus     `gorm:"type:VARCHAR(20);default:'unpaid'" json:"status"`
	StripeSessionID string          `json:"stripe_session_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderItem is a frozen copy of a cart line at order creation time.
type OrderItem struct {
	ID           uint    `gorm:"primaryKey" json:"-"`
	OrderID      uint    `gorm:"index" json:"-"`
	ProductID    uint    `json:"product_id"`
	ProductName  string  `json:"product_name"`
	ProductPrice float64 `json:"product_price"`
	ProductImage string  `json:"product_image"`
	Quantity     int     `json:"quantity"`
}
