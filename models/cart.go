package models

import "time"

type Cart struct {
	CartID    uint       `gorm:"primaryKey" json:"cart_id"`
	UserID    string     `gorm:"uniqueIndex" json:"user_id"` // Enforces ONE cart per user
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem carries a snapshot of the product at the time it was added, so
// that later catalog edits do not change what the customer saw.
type CartItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CartID       uint      `gorm:"index" json:"-"`
	ProductID    uint      `gorm:"index" json:"product_id"`
	ProductName  string    `json:"product_name"`
	ProductPrice float64   `json:"product_price"`
	ProductImage string    `json:"product_image"`
	Quantity     int       `json:"quantity"`
	AddedAt      time.Time `json:"added_at"`
}

// Subtotal of the whole cart, snapshot price times quantity per line.
func (c *Cart) Subtotal() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.ProductPrice * float64(item.Quantity)
	}
	return total
}
