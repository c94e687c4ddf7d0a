package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/avdonin/foodreel/internal/logging"
	"github.com/avdonin/foodreel/internal/models"
)

// CartEntry is a cart row joined against live product data for display.
type CartEntry struct {
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ImageURL  string  `json:"image_url"`
	Type      string  `json:"type"`
	Quantity  int     `json:"quantity"`
}

// CartService mutates the per-account cart. All mutation paths are single
// SQL statements keyed by (account_id, product_id), so two concurrent
// increments both land instead of one overwriting the other.
type CartService struct {
	DB *gorm.DB
}

func (s *CartService) Get(ctx context.Context, accountID uint) ([]CartEntry, error) {
	if err := s.accountExists(ctx, accountID); err != nil {
		return nil, err
	}

	// The inner join silently drops entries whose product has been deleted.
	entries := []CartEntry{}
	err := s.DB.WithContext(ctx).Table("cart_items").
		Select("cart_items.product_id, products.name, products.price, products.image_url, products.type, cart_items.quantity").
		Joins("JOIN products ON products.id = cart_items.product_id").
		Where("cart_items.account_id = ?", accountID).
		Order("cart_items.id ASC").
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// AddOrAdjust folds delta into the existing entry, creating it when absent.
// A resulting quantity at or below zero removes the entry; a negative delta
// with no entry to decrement is rejected.
func (s *CartService) AddOrAdjust(ctx context.Context, accountID, productID uint, delta int) ([]CartEntry, error) {
	l := logging.FromContext(ctx).With("svc", "cart.add", "account_id", accountID, "product_id", productID)

	if productID == 0 {
		return nil, fmt.Errorf("product id is required: %w", ErrValidation)
	}
	if delta == 0 {
		return nil, fmt.Errorf("quantity must be non-zero: %w", ErrValidation)
	}
	if err := s.accountExists(ctx, accountID); err != nil {
		return nil, err
	}

	var product models.Product
	if err := s.DB.WithContext(ctx).First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", productID, ErrNotFound)
		}
		return nil, err
	}

	if delta > 0 {
		item := models.CartItem{AccountID: accountID, ProductID: productID, Quantity: delta}
		err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "account_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity": gorm.Expr("quantity + ?", delta),
			}),
		}).Create(&item).Error
		if err != nil {
			return nil, err
		}
	} else {
		res := s.DB.WithContext(ctx).Model(&models.CartItem{}).
			Where("account_id = ? AND product_id = ?", accountID, productID).
			Update("quantity", gorm.Expr("quantity + ?", delta))
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, fmt.Errorf("nothing in cart to decrement: %w", ErrValidation)
		}
	}

	// Entries driven to zero or below are dropped rather than retained.
	if err := s.DB.WithContext(ctx).
		Where("account_id = ? AND product_id = ? AND quantity <= 0", accountID, productID).
		Delete(&models.CartItem{}).Error; err != nil {
		return nil, err
	}

	l.Info("cart adjusted", "delta", delta)
	return s.Get(ctx, accountID)
}

// Remove deletes the matching entry. Removing an absent entry is a no-op
// that still returns the current cart.
func (s *CartService) Remove(ctx context.Context, accountID, productID uint) ([]CartEntry, error) {
	if err := s.accountExists(ctx, accountID); err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).
		Where("account_id = ? AND product_id = ?", accountID, productID).
		Delete(&models.CartItem{}).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, accountID)
}

// PullProduct removes a deleted product from every cart, best effort.
func (s *CartService) PullProduct(ctx context.Context, productID uint) error {
	return s.DB.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&models.CartItem{}).Error
}

func (s *CartService) accountExists(ctx context.Context, accountID uint) error {
	if accountID == 0 {
		return fmt.Errorf("missing account id: %w", ErrUnauthorized)
	}
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", accountID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("account %d: %w", accountID, ErrNotFound)
	}
	return nil
}
