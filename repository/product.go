package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/heiphin7/bloom-boutique-catalog/models"
	"github.com/heiphin7/bloom-boutique-catalog/services"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) ByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, services.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}
