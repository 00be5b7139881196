package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/heiphin7/bloom-boutique-catalog/models"
	"github.com/heiphin7/bloom-boutique-catalog/services"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create writes the order row and its items in one transaction so a partial
// order is never visible to readers.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(order).Error
	})
}

func (r *OrderRepository) ByRef(ctx context.Context, orderRef string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("order_ref = ?", orderRef).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, services.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) ByRefForUser(ctx context.Context, userID, orderRef string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("order_ref = ? AND user_id = ?", orderRef, userID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, services.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) ByUser(ctx context.Context, userID string, filter services.OrderFilter) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC")

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where(`
			order_ref ILIKE ? OR customer_name ILIKE ? OR EXISTS (
				SELECT 1 FROM order_items oi
				WHERE oi.order_id = orders.id AND oi.product_name ILIKE ?
			)`, like, like, like)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepository) All(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepository) AttachSession(ctx context.Context, orderRef, sessionID string) error {
	result := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("order_ref = ?", orderRef).
		Update("stripe_session_id", sessionID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return services.ErrOrderNotFound
	}
	return nil
}

// MarkPaid performs the unpaid -> paid transition as a single guarded update.
// RowsAffected tells the caller whether this invocation won the transition,
// which is what keeps repeated verification idempotent.
func (r *OrderRepository) MarkPaid(ctx context.Context, orderRef, sessionID string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("order_ref = ? AND status = ?", orderRef, models.OrderStatusUnpaid).
		Updates(map[string]interface{}{
			"status":            models.OrderStatusPaid,
			"stripe_session_id": sessionID,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
