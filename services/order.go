package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heiphin7/bloom-boutique-catalog/models"
)

// OrderFilter narrows a user's order listing.
type OrderFilter struct {
	Status string // "paid", "unpaid" or empty for all
	Search string // matches order ref, customer name or frozen product names
}

// OrderRepository is the persistence surface of the order store.
type OrderRepository interface {
	// Create writes the order and its items as one unit; a partially written
	// order must never be observable.
	Create(ctx context.Context, order *models.Order) error
	ByRef(ctx context.Context, orderRef string) (*models.Order, error)
	ByRefForUser(ctx context.Context, userID, orderRef string) (*models.Order, error)
	ByUser(ctx context.Context, userID string, filter OrderFilter) ([]models.Order, error)
	All(ctx context.Context) ([]models.Order, error)
	AttachSession(ctx context.Context, orderRef, sessionID string) error
	// MarkPaid transitions unpaid -> paid and reports whether this call
	// performed the transition. Calling it again for a paid order is a no-op.
	MarkPaid(ctx context.Context, orderRef, sessionID string) (bool, error)
}

// CustomerInfo is the checkout form input.
type CustomerInfo struct {
	Name    string
	Email   string
	Address models.ShippingAddress
}

// OrderService converts a cart snapshot into an immutable priced order.
type OrderService struct {
	orders        OrderRepository
	carts         *CartService
	shippingFee   float64
	freeShipAbove float64
}

// NewOrderService wires the order builder. Orders below freeShipAbove pay a
// flat shippingFee; everything else ships free.
func NewOrderService(orders OrderRepository, carts *CartService, shippingFee, freeShipAbove float64) *OrderService {
	return &OrderService{
		orders:        orders,
		carts:         carts,
		shippingFee:   shippingFee,
		freeShipAbove: freeShipAbove,
	}
}

// Checkout validates the customer input, freezes the current cart lines into
// order items and persists the order in unpaid status. The cart itself is left
// untouched; it is cleared only once payment is confirmed.
func (s *OrderService) Checkout(ctx context.Context, userID string, info CustomerInfo) (*models.Order, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if err := validateCustomerInfo(info); err != nil {
		return nil, err
	}

	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrCartEmpty
	}

	// Freeze the lines: totals are computed from this snapshot, not from a
	// later re-read, so what the customer saw is what gets charged.
	var subtotal float64
	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		subtotal += line.ProductPrice * float64(line.Quantity)
		items = append(items, models.OrderItem{
			ProductID:    line.ProductID,
			ProductName:  line.ProductName,
			ProductPrice: line.ProductPrice,
			ProductImage: line.ProductImage,
			Quantity:     line.Quantity,
		})
	}

	shipping := 0.0
	if subtotal < s.freeShipAbove {
		shipping = s.shippingFee
	}

	order := &models.Order{
		OrderRef:        generateOrderRef(),
		UserID:          userID,
		CustomerName:    info.Name,
		CustomerEmail:   info.Email,
		ShippingAddress: info.Address,
		Items:           items,
		Subtotal:        subtotal,
		ShippingCost:    shipping,
		Total:           subtotal + shipping,
		Status:          models.OrderStatusUnpaid,
		CreatedAt:       time.Now(),
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// ListByUser lists the user's orders, newest first.
func (s *OrderService) ListByUser(ctx context.Context, userID string, filter OrderFilter) ([]models.Order, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return s.orders.ByUser(ctx, userID, filter)
}

// GetByRef returns one of the user's orders with its frozen items.
func (s *OrderService) GetByRef(ctx context.Context, userID, orderRef string) (*models.Order, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return s.orders.ByRefForUser(ctx, userID, orderRef)
}

func validateCustomerInfo(info CustomerInfo) error {
	var missing []string
	check := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	check("name", info.Name)
	check("email", info.Email)
	check("street", info.Address.Street)
	check("city", info.Address.City)
	check("state", info.Address.State)
	check("postal_code", info.Address.PostalCode)
	check("country", info.Address.Country)

	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

func generateOrderRef() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()
}
