package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heiphin7/bloom-boutique-catalog/models"
)

func validCustomer() CustomerInfo {
	return CustomerInfo{
		Name:  "Aruzhan S",
		Email: "aruzhan@example.com",
		Address: models.ShippingAddress{
			Street:     "12 Abay Ave",
			City:       "Almaty",
			State:      "Almaty",
			PostalCode: "050000",
			Country:    "KZ",
		},
	}
}

func newTestOrderService(t *testing.T) (*OrderService, *CartService, *mockOrderRepo) {
	t.Helper()
	carts, _, _ := newTestCartService()
	orders := newMockOrderRepo()
	return NewOrderService(orders, carts, 1000, 22500), carts, orders
}

func TestCheckoutFreezesCartAndComputesTotals(t *testing.T) {
	svc, carts, _ := newTestOrderService(t)
	ctx := context.Background()

	require.NoError(t, carts.AddLine(ctx, testUser, 1, 2)) // Rose Bouquet, 1500
	require.NoError(t, carts.AddLine(ctx, testUser, 2, 1)) // Tulip Mix, 800

	order, err := svc.Checkout(ctx, testUser, validCustomer())
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusUnpaid, order.Status)
	assert.Equal(t, 3800.0, order.Subtotal)
	assert.Equal(t, 1000.0, order.ShippingCost)
	assert.Equal(t, 4800.0, order.Total)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Rose Bouquet", order.Items[0].ProductName)
	assert.Equal(t, 1500.0, order.Items[0].ProductPrice)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.NotEmpty(t, order.OrderRef)
}

func TestCheckoutLeavesCartUntouched(t *testing.T) {
	svc, carts, _ := newTestOrderService(t)
	ctx := context.Background()

	require.NoError(t, carts.AddLine(ctx, testUser, 1, 2))

	_, err := svc.Checkout(ctx, testUser, validCustomer())
	require.NoError(t, err)

	cart, err := carts.Get(ctx, testUser)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1, "checkout must not clear the cart before payment")
}

func TestOrderImmutableAfterCartChanges(t *testing.T) {
	svc, carts, orders := newTestOrderService(t)
	ctx := context.Background()

	require.NoError(t, carts.AddLine(ctx, testUser, 1, 2))
	order, err := svc.Checkout(ctx, testUser, validCustomer())
	require.NoError(t, err)

	// Keep shopping after checkout.
	require.NoError(t, carts.AddLine(ctx, testUser, 2, 5))
	cart, err := carts.Get(ctx, testUser)
	require.NoError(t, err)
	require.NoError(t, carts.UpdateQuantity(ctx, testUser, cart.Items[0].ID, 9))

	stored, err := orders.ByRef(ctx, order.OrderRef)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, 2, stored.Items[0].Quantity)
	assert.Equal(t, 3000.0, stored.Subtotal)
}

func TestCheckoutFreeShippingAboveThreshold(t *testing.T) {
	svc, carts, _ := newTestOrderService(t)
	ctx := context.Background()

	// 10 x 1500 + 10 x 800 = 23000, above the 22500 threshold.
	require.NoError(t, carts.AddLine(ctx, testUser, 1, 10))
	require.NoError(t, carts.AddLine(ctx, testUser, 2, 10))

	order, err := svc.Checkout(ctx, testUser, validCustomer())
	require.NoError(t, err)
	assert.Equal(t, 0.0, order.ShippingCost)
	assert.Equal(t, 23000.0, order.Total)
}

func TestCheckoutEmptyCart(t *testing.T) {
	svc, _, orders := newTestOrderService(t)

	_, err := svc.Checkout(context.Background(), testUser, validCustomer())
	assert.ErrorIs(t, err, ErrCartEmpty)
	assert.Empty(t, orders.orders)
}

func TestCheckoutValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CustomerInfo)
		missing []string
	}{
		{"empty name", func(c *CustomerInfo) { c.Name = "" }, []string{"name"}},
		{"blank email", func(c *CustomerInfo) { c.Email = "   " }, []string{"email"}},
		{"empty city", func(c *CustomerInfo) { c.Address.City = "" }, []string{"city"}},
		{"several fields", func(c *CustomerInfo) {
			c.Address.Street = ""
			c.Address.Country = ""
		}, []string{"street", "country"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, carts, orders := newTestOrderService(t)
			ctx := context.Background()
			require.NoError(t, carts.AddLine(ctx, testUser, 1, 1))

			info := validCustomer()
			tt.mutate(&info)

			_, err := svc.Checkout(ctx, testUser, info)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.missing, verr.Fields)
			assert.Empty(t, orders.orders, "rejected checkout must not create an order")

			cart, err := carts.Get(ctx, testUser)
			require.NoError(t, err)
			assert.Len(t, cart.Items, 1, "rejected checkout must not touch the cart")
		})
	}
}

func TestCheckoutRequiresIdentity(t *testing.T) {
	svc, _, _ := newTestOrderService(t)

	_, err := svc.Checkout(context.Background(), "", validCustomer())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestListByUserFiltersStatus(t *testing.T) {
	svc, carts, orders := newTestOrderService(t)
	ctx := context.Background()

	require.NoError(t, carts.AddLine(ctx, testUser, 1, 1))
	first, err := svc.Checkout(ctx, testUser, validCustomer())
	require.NoError(t, err)

	require.NoError(t, carts.AddLine(ctx, testUser, 2, 1))
	_, err = svc.Checkout(ctx, testUser, validCustomer())
	require.NoError(t, err)

	_, err = orders.MarkPaid(ctx, first.OrderRef, "cs_test_x")
	require.NoError(t, err)

	paid, err := svc.ListByUser(ctx, testUser, OrderFilter{Status: "paid"})
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, first.OrderRef, paid[0].OrderRef)

	all, err := svc.ListByUser(ctx, testUser, OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGetByRefScopedToUser(t *testing.T) {
	svc, carts, _ := newTestOrderService(t)
	ctx := context.Background()

	require.NoError(t, carts.AddLine(ctx, testUser, 1, 1))
	order, err := svc.Checkout(ctx, testUser, validCustomer())
	require.NoError(t, err)

	_, err = svc.GetByRef(ctx, "somebody-else", order.OrderRef)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	got, err := svc.GetByRef(ctx, testUser, order.OrderRef)
	require.NoError(t, err)
	assert.Equal(t, order.OrderRef, got.OrderRef)
}
