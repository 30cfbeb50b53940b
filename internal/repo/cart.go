package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/shopapi/internal/models"
)

func (r *GormRepo) AddCartItem(ctx context.Context, userID, productID uint) (*models.CartItem, error) {
	item := models.CartItem{UserID: userID, ProductID: productID}
	if err := r.DB.WithContext(ctx).Omit(clause.Associations).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// RemoveOneCartItem deletes the oldest row matching (userID, productID); other
// units of the same product stay in the cart.
func (r *GormRepo) RemoveOneCartItem(ctx context.Context, userID, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND product_id = ?", userID, productID).
			Order("id ASC").
			First(&item).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.CartItem{}, item.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) LoadCartItems(ctx context.Context, userID uint) ([]models.CartItem, error) {
	items := make([]models.CartItem, 0)
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) ClearCart(ctx context.Context, userID uint) (int64, error) {
	res := r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}
