package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heiphin7/bloom-boutique-catalog/models"
)

const testUser = "user-1"

func newTestCartService() (*CartService, *mockCartRepo, *mockCartCache) {
	repo := newMockCartRepo(testUser)
	products := &mockProductRepo{products: map[uint]models.Product{
		1: {ID: 1, Name: "Rose Bouquet", Price: 1500, Image: "https://img.test/rose.jpg"},
		2: {ID: 2, Name: "Tulip Mix", Price: 800, Image: "https://img.test/tulip.jpg"},
	}}
	cache := &mockCartCache{}
	return NewCartService(repo, products, cache), repo, cache
}

func TestAddLineSnapshotsProduct(t *testing.T) {
	svc, _, _ := newTestCartService()
	ctx := context.Background()

	require.NoError(t, svc.AddLine(ctx, testUser, 1, 2))

	cart, err := svc.Get(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)

	item := cart.Items[0]
	assert.Equal(t, uint(1), item.ProductID)
	assert.Equal(t, "Rose Bouquet", item.ProductName)
	assert.Equal(t, 1500.0, item.ProductPrice)
	assert.Equal(t, "https://img.test/rose.jpg", item.ProductImage)
	assert.Equal(t, 2, item.Quantity)
}

func TestAddLineMergesSameProduct(t *testing.T) {
	svc, _, _ := newTestCartService()
	ctx := context.Background()

	require.NoError(t, svc.AddLine(ctx, testUser, 1, 3))
	require.NoError(t, svc.AddLine(ctx, testUser, 1, 4))

	cart, err := svc.Get(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1, "same product must never produce two lines")
	assert.Equal(t, 7, cart.Items[0].Quantity)
}

func TestAddLineClampsMergedQuantity(t *testing.T) {
	svc, _, _ := newTestCartService()
	ctx := context.Background()

	require.NoError(t, svc.AddLine(ctx, testUser, 1, 8))
	require.NoError(t, svc.AddLine(ctx, testUser, 1, 8))

	cart, err := svc.Get(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, MaxLineQuantity, cart.Items[0].Quantity)
}

func TestAddLineUnknownProduct(t *testing.T) {
	svc, _, _ := newTestCartService()

	err := svc.AddLine(context.Background(), testUser, 99, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestAddLineRequiresIdentity(t *testing.T) {
	svc, _, _ := newTestCartService()

	err := svc.AddLine(context.Background(), "", 1, 1)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestUpdateQuantityClamps(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		want     int
		removed  bool
	}{
		{name: "within range", quantity: 5, want: 5},
		{name: "above max", quantity: 25, want: 10},
		{name: "zero removes line", quantity: 0, removed: true},
		{name: "negative removes line", quantity: -3, removed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestCartService()
			ctx := context.Background()

			require.NoError(t, svc.AddLine(ctx, testUser, 1, 2))
			cart, err := svc.Get(ctx, testUser)
			require.NoError(t, err)
			itemID := cart.Items[0].ID

			require.NoError(t, svc.UpdateQuantity(ctx, testUser, itemID, tt.quantity))

			cart, err = svc.Get(ctx, testUser)
			require.NoError(t, err)
			if tt.removed {
				assert.Empty(t, cart.Items)
			} else {
				require.Len(t, cart.Items, 1)
				assert.Equal(t, tt.want, cart.Items[0].Quantity)
			}
		})
	}
}

func TestRemoveLineIsIdempotent(t *testing.T) {
	svc, _, _ := newTestCartService()
	ctx := context.Background()

	require.NoError(t, svc.AddLine(ctx, testUser, 1, 1))
	cart, err := svc.Get(ctx, testUser)
	require.NoError(t, err)
	itemID := cart.Items[0].ID

	require.NoError(t, svc.RemoveLine(ctx, testUser, itemID))
	require.NoError(t, svc.RemoveLine(ctx, testUser, itemID), "removing twice must not error")

	cart, err = svc.Get(ctx, testUser)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestTotal(t *testing.T) {
	svc, _, _ := newTestCartService()
	ctx := context.Background()

	require.NoError(t, svc.AddLine(ctx, testUser, 1, 2)) // Rose x2 @ 1500
	require.NoError(t, svc.AddLine(ctx, testUser, 2, 1)) // Tulip x1 @ 800

	total, err := svc.Total(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 3800.0, total)
}

func TestClearEmptiesCart(t *testing.T) {
	svc, _, _ := newTestCartService()
	ctx := context.Background()

	require.NoError(t, svc.AddLine(ctx, testUser, 1, 2))
	require.NoError(t, svc.AddLine(ctx, testUser, 2, 1))
	require.NoError(t, svc.Clear(ctx, testUser))

	cart, err := svc.Get(ctx, testUser)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	total, err := svc.Total(ctx, testUser)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestGetForUserWithoutCart(t *testing.T) {
	svc := NewCartService(newMockCartRepo(testUser), &mockProductRepo{products: map[uint]models.Product{}}, &mockCartCache{})

	cart, err := svc.Get(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, testUser, cart.UserID)
	assert.Empty(t, cart.Items)
}

func TestMutationsInvalidateCache(t *testing.T) {
	svc, _, cache := newTestCartService()
	ctx := context.Background()

	require.NoError(t, svc.AddLine(ctx, testUser, 1, 1))
	cart, err := svc.Get(ctx, testUser)
	require.NoError(t, err)
	require.NoError(t, svc.UpdateQuantity(ctx, testUser, cart.Items[0].ID, 4))
	require.NoError(t, svc.Clear(ctx, testUser))

	cache.mu.Lock()
	defer cache.mu.Unlock()
	assert.Equal(t, 3, cache.deletes)
}
