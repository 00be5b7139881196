package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/heiphin7/bloom-boutique-catalog/models"
	"github.com/heiphin7/bloom-boutique-catalog/stripe"
)

// EmailSender delivers the order confirmation mail.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Notifier pushes order events to connected clients.
type Notifier interface {
	OrderPaid(order *models.Order)
}

// VerifyResult is the outcome of a verification pass. Paid=false is a normal
// pending state, not a failure.
type VerifyResult struct {
	Paid     bool
	OrderRef string
}

// PayAgainResult is the outcome of a user-initiated payment retry.
type PayAgainResult struct {
	Paid        bool
	SessionID   string
	CheckoutURL string
}

// Reconciler converts the processor's payment truth into order status. It is
// the only component allowed to move an order from unpaid to paid, and every
// entry point is safe to invoke any number of times for the same session.
type Reconciler struct {
	orders   OrderRepository
	gateway  SessionAPI
	checkout *CheckoutService
	carts    *CartService
	mail     EmailSender
	notify   Notifier
}

func NewReconciler(orders OrderRepository, gateway SessionAPI, checkout *CheckoutService, carts *CartService, mail EmailSender, notify Notifier) *Reconciler {
	return &Reconciler{
		orders:   orders,
		gateway:  gateway,
		checkout: checkout,
		carts:    carts,
		mail:     mail,
		notify:   notify,
	}
}

// VerifyAndFinalize looks the session up at the processor and applies the
// result. The order is identified by the session's own metadata, never by
// client input. The browser may hit this on every reload of the return URL,
// and the webhook may race it; only the call that wins the unpaid->paid
// update runs the side effects.
func (r *Reconciler) VerifyAndFinalize(ctx context.Context, sessionID string) (VerifyResult, error) {
	session, err := r.gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("verify payment: %w", err)
	}

	orderRef := session.Metadata["orderId"]
	if orderRef == "" {
		return VerifyResult{}, errors.New("order id not found in session metadata")
	}

	if session.PaymentStatus != stripe.PaymentStatusPaid {
		// Payment may still be settling; leave the order alone.
		return VerifyResult{Paid: false, OrderRef: orderRef}, nil
	}

	transitioned, err := r.orders.MarkPaid(ctx, orderRef, sessionID)
	if err != nil {
		return VerifyResult{}, err
	}
	if transitioned {
		r.finalize(ctx, orderRef)
	}
	return VerifyResult{Paid: true, OrderRef: orderRef}, nil
}

// PayAgain drives a manual retry for an order. A session already paid at the
// processor finalizes the order without minting a second session; otherwise a
// fresh session replaces the stale reference.
func (r *Reconciler) PayAgain(ctx context.Context, userID, orderRef string) (PayAgainResult, error) {
	order, err := r.orders.ByRefForUser(ctx, userID, orderRef)
	if err != nil {
		return PayAgainResult{}, err
	}

	if order.Status == models.OrderStatusPaid {
		return PayAgainResult{Paid: true, SessionID: order.StripeSessionID}, nil
	}

	if order.StripeSessionID != "" {
		result, err := r.VerifyAndFinalize(ctx, order.StripeSessionID)
		if err != nil {
			return PayAgainResult{}, err
		}
		if result.Paid {
			return PayAgainResult{Paid: true, SessionID: order.StripeSessionID}, nil
		}
	}

	session, err := r.checkout.CreateSession(ctx, order)
	if err != nil {
		return PayAgainResult{}, err
	}
	return PayAgainResult{SessionID: session.ID, CheckoutURL: session.URL}, nil
}

// finalize runs the once-per-order side effects after the paid transition.
// Failures here are logged, not returned: the order is already paid and a
// re-verification must not re-trigger them.
func (r *Reconciler) finalize(ctx context.Context, orderRef string) {
	order, err := r.orders.ByRef(ctx, orderRef)
	if err != nil {
		log.Printf("paid order %s: reload failed: %v", orderRef, err)
		return
	}

	if err := r.carts.Clear(ctx, order.UserID); err != nil {
		log.Printf("paid order %s: cart clear failed: %v", orderRef, err)
	}

	subject := fmt.Sprintf("Order %s confirmed", shortRef(order.OrderRef))
	body := confirmationBody(order)
	if err := r.mail.Send(ctx, order.CustomerEmail, subject, body); err != nil {
		log.Printf("paid order %s: confirmation mail failed: %v", orderRef, err)
	}

	r.notify.OrderPaid(order)
}

func confirmationBody(order *models.Order) string {
	body := fmt.Sprintf("Hi %s,\n\nYour payment was received. Order summary:\n\n", order.CustomerName)
	for _, item := range order.Items {
		body += fmt.Sprintf("  %s x%d: %.2f\n", item.ProductName, item.Quantity, item.ProductPrice*float64(item.Quantity))
	}
	body += fmt.Sprintf("\nShipping: %.2f\nTotal: %.2f\n\nWe will deliver to %s, %s.\n",
		order.ShippingCost, order.Total, order.ShippingAddress.Street, order.ShippingAddress.City)
	return body
}

func shortRef(ref string) string {
	if len(ref) > 8 {
		return ref[:8]
	}
	return ref
}
