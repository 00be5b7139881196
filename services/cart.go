package services

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/heiphin7/bloom-boutique-catalog/models"
)

// A line never holds more than this many units; larger requests are clamped.
const MaxLineQuantity = 10

// CartRepository is the persistence surface of the cart store.
type CartRepository interface {
	// GetOrCreate returns the user's cart, creating an empty one on first access.
	GetOrCreate(ctx context.Context, userID string) (*models.Cart, error)
	// GetWithItems returns the cart and its lines, or ErrCartNotFound.
	GetWithItems(ctx context.Context, userID string) (*models.Cart, error)
	FindItemByProduct(ctx context.Context, cartID, productID uint) (*models.CartItem, error)
	InsertItem(ctx context.Context, item *models.CartItem) error
	UpdateItemQuantity(ctx context.Context, cartID, itemID uint, quantity int) error
	// DeleteItem is idempotent: deleting an absent line is not an error.
	DeleteItem(ctx context.Context, cartID, itemID uint) error
	DeleteAllItems(ctx context.Context, cartID uint) error
}

// ProductRepository provides the catalog lookups the cart needs for snapshots.
type ProductRepository interface {
	ByID(ctx context.Context, id uint) (*models.Product, error)
}

// CartService owns the mutable pre-purchase basket. All mutations are
// synchronous write-then-invalidate: the cached view is dropped after every
// successful write and fully rebuilt on the next read, never merged.
type CartService struct {
	repo     CartRepository
	products ProductRepository
	cache    CartCache
	sfg      singleflight.Group
}

func NewCartService(repo CartRepository, products ProductRepository, cache CartCache) *CartService {
	return &CartService{
		repo:     repo,
		products: products,
		cache:    cache,
	}
}

// Get returns the user's cart, reading through the cache. A user with no
// persisted cart gets an empty view, not an error.
func (s *CartService) Get(ctx context.Context, userID string) (*models.Cart, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			log.Printf("cart cache get error: %v", err)
		}

		cart, err = s.repo.GetWithItems(ctx, userID)
		if errors.Is(err, ErrCartNotFound) {
			return &models.Cart{UserID: userID}, nil
		}
		if err != nil {
			return nil, err
		}

		if err := s.cache.Set(ctx, userID, cart); err != nil {
			log.Printf("cart cache set error: %v", err)
		}
		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Cart), nil
}

// AddLine puts quantity units of a product into the cart. If a line for the
// product already exists its quantity is increased instead, clamped to
// MaxLineQuantity; the product's current name, price and image are snapshotted
// when the line is first created.
func (s *CartService) AddLine(ctx context.Context, userID string, productID uint, quantity int) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	quantity = clampQuantity(quantity)

	product, err := s.products.ByID(ctx, productID)
	if err != nil {
		return err
	}

	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}

	existing, err := s.repo.FindItemByProduct(ctx, cart.CartID, productID)
	if err != nil && !errors.Is(err, ErrLineNotFound) {
		return err
	}

	if existing != nil {
		newQuantity := clampQuantity(existing.Quantity + quantity)
		if err := s.repo.UpdateItemQuantity(ctx, cart.CartID, existing.ID, newQuantity); err != nil {
			return err
		}
	} else {
		item := &models.CartItem{
			CartID:       cart.CartID,
			ProductID:    product.ID,
			ProductName:  product.Name,
			ProductPrice: product.Price,
			ProductImage: product.Image,
			Quantity:     quantity,
			AddedAt:      time.Now(),
		}
		if err := s.repo.InsertItem(ctx, item); err != nil {
			return err
		}
	}

	s.invalidate(userID)
	return nil
}

// UpdateQuantity sets a line's quantity. Zero or below removes the line;
// anything else is clamped to [1, MaxLineQuantity].
func (s *CartService) UpdateQuantity(ctx context.Context, userID string, itemID uint, quantity int) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	if quantity <= 0 {
		return s.RemoveLine(ctx, userID, itemID)
	}

	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateItemQuantity(ctx, cart.CartID, itemID, clampQuantity(quantity)); err != nil {
		return err
	}

	s.invalidate(userID)
	return nil
}

// RemoveLine deletes a line. Removing a line twice is not an error.
func (s *CartService) RemoveLine(ctx context.Context, userID string, itemID uint) error {
	if userID == "" {
		return ErrNotAuthenticated
	}

	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteItem(ctx, cart.CartID, itemID); err != nil {
		return err
	}

	s.invalidate(userID)
	return nil
}

// Clear deletes every line in the user's cart.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}

	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteAllItems(ctx, cart.CartID); err != nil {
		return err
	}

	s.invalidate(userID)
	return nil
}

// Total is the sum of snapshot price times quantity over current lines.
func (s *CartService) Total(ctx context.Context, userID string) (float64, error) {
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	return cart.Subtotal(), nil
}

// OnIdentityChanged drops the cached view for a user after sign-in or
// sign-out so the next read reflects the store.
func (s *CartService) OnIdentityChanged(userID string) {
	if userID == "" {
		return
	}
	s.invalidate(userID)
}

func (s *CartService) invalidate(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		log.Printf("cart cache invalidate error: %v", err)
	}
}

func clampQuantity(q int) int {
	if q < 1 {
		return 1
	}
	if q > MaxLineQuantity {
		return MaxLineQuantity
	}
	return q
}
