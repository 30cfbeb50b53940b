package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/shopapi/internal/models"
)

func (r *GormRepo) CreateSession(ctx context.Context, s *models.Session) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(s).Error
}

func (r *GormRepo) FindSession(ctx context.Context, id string) (*models.Session, error) {
	var s models.Session
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormRepo) RevokeSession(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Model(&models.Session{}).
		Where("id = ? AND revoked = ?", id, false).
		Update("revoked", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// PurgeSessions drops revoked sessions and those that expired before now.
func (r *GormRepo) PurgeSessions(ctx context.Context, now int64) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("revoked = ? OR expires_at < ?", true, now).
		Delete(&models.Session{})
	return res.RowsAffected, res.Error
}
