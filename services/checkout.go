package services

import (
	"context"
	"fmt"
	"math"

	"github.com/heiphin7/bloom-boutique-catalog/models"
	"github.com/heiphin7/bloom-boutique-catalog/stripe"
)

// SessionAPI is the slice of the Stripe client the checkout pipeline uses.
type SessionAPI interface {
	CreateCheckoutSession(ctx context.Context, p stripe.CheckoutParams) (*stripe.CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error)
}

// CheckoutConfig carries the storefront-facing session settings.
type CheckoutConfig struct {
	// BaseURL is the public origin of the storefront, used to build the
	// success and cancel redirects.
	BaseURL  string
	Currency string
}

// CheckoutService hands an order to the payment processor and records the
// resulting session reference. It holds no state of its own.
type CheckoutService struct {
	gateway SessionAPI
	orders  OrderRepository
	cfg     CheckoutConfig
}

func NewCheckoutService(gateway SessionAPI, orders OrderRepository, cfg CheckoutConfig) *CheckoutService {
	return &CheckoutService{gateway: gateway, orders: orders, cfg: cfg}
}

// CreateSession creates a checkout session for the order and stores the
// session id on it. On gateway failure the order is left untouched, still
// unpaid and safe to retry with a fresh session.
func (s *CheckoutService) CreateSession(ctx context.Context, order *models.Order) (*stripe.CheckoutSession, error) {
	items := make([]stripe.LineItem, 0, len(order.Items)+1)
	for _, item := range order.Items {
		items = append(items, stripe.LineItem{
			Name:       item.ProductName,
			UnitAmount: minorUnits(item.ProductPrice),
			Quantity:   item.Quantity,
			Image:      item.ProductImage,
		})
	}
	if order.ShippingCost > 0 {
		items = append(items, stripe.LineItem{
			Name:       "Shipping",
			UnitAmount: minorUnits(order.ShippingCost),
			Quantity:   1,
		})
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, stripe.CheckoutParams{
		LineItems:     items,
		Currency:      s.cfg.Currency,
		CustomerEmail: order.CustomerEmail,
		SuccessURL:    fmt.Sprintf("%s/payment/%s?session_id={CHECKOUT_SESSION_ID}&success=true", s.cfg.BaseURL, order.OrderRef),
		CancelURL:     s.cfg.BaseURL + "/orders?canceled=true",
		OrderID:       order.OrderRef,
	})
	if err != nil {
		return nil, err
	}

	if err := s.orders.AttachSession(ctx, order.OrderRef, session.ID); err != nil {
		return nil, err
	}
	order.StripeSessionID = session.ID
	return session, nil
}

// minorUnits converts a price into the processor's integer subunit.
func minorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}
