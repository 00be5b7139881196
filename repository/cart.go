package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/heiphin7/bloom-boutique-catalog/models"
	"github.com/heiphin7/bloom-boutique-catalog/services"
)

type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) GetOrCreate(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = models.Cart{UserID: userID}
		if err := r.db.WithContext(ctx).Create(&cart).Error; err != nil {
			return nil, err
		}
		return &cart, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *CartRepository) GetWithItems(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).Preload("Items").Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, services.ErrCartNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *CartRepository) FindItemByProduct(ctx context.Context, cartID, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).Where("cart_id = ? AND product_id = ?", cartID, productID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, services.ErrLineNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *CartRepository) InsertItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *CartRepository) UpdateItemQuantity(ctx context.Context, cartID, itemID uint, quantity int) error {
	result := r.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("cart_id = ? AND id = ?", cartID, itemID).
		Update("quantity", quantity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return services.ErrLineNotFound
	}
	return nil
}

func (r *CartRepository) DeleteItem(ctx context.Context, cartID, itemID uint) error {
	// No rows affected is fine: removing twice must not be an error.
	return r.db.WithContext(ctx).
		Where("cart_id = ? AND id = ?", cartID, itemID).
		Delete(&models.CartItem{}).Error
}

func (r *CartRepository) DeleteAllItems(ctx context.Context, cartID uint) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartItem{}).Error
}
