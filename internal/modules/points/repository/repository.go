package repository

import (
	"context"
	"time"

	"anoa.com/mentorhub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PointsRepository interface {
	// CountActionsSince counts log entries of one action type inside the
	// sliding window, awarded or not.
	CountActionsSince(ctx context.Context, userID uuid.UUID, actionType string, since time.Time) (int64, error)
	// Award appends the log entry and, when it carries points, increments the
	// balance. Both writes happen in one transaction: a partial write would
	// break the balance == SUM(log) invariant.
	Award(ctx context.Context, entry *entity.PointActionLog) error
	GetBalance(ctx context.Context, userID uuid.UUID) (*entity.PointsBalance, error)
	GetHistory(ctx context.Context, userID uuid.UUID, offset, limit int) ([]entity.PointActionLog, int64, error)
	SumAwarded(ctx context.Context, userID uuid.UUID) (int, error)
	SetBalance(ctx context.Context, userID uuid.UUID, points int) error
	TopBalances(ctx context.Context, limit int) ([]entity.PointsBalance, error)
}

type pointsRepository struct {
	db *gorm.DB
}

func NewPointsRepository(db *gorm.DB) PointsRepository {
	return &pointsRepository{db: db}
}

func (r *pointsRepository) CountActionsSince(ctx context.Context, userID uuid.UUID, actionType string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.PointActionLog{}).
		Where("user_id = ? AND action_type = ? AND created_at >= ?", userID, actionType, since).
		Count(&count).Error
	return count, err
}

func (r *pointsRepository) Award(ctx context.Context, entry *entity.PointActionLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return err
		}

		if entry.PointsAwarded == 0 {
			return nil
		}

		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"points":          gorm.Expr("points_balances.points + ?", entry.PointsAwarded),
				"last_updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
			}),
		}).Create(&entity.PointsBalance{
			UserID: entry.UserID,
			Points: entry.PointsAwarded,
		}).Error
	})
}

func (r *pointsRepository) GetBalance(ctx context.Context, userID uuid.UUID) (*entity.PointsBalance, error) {
	var balance entity.PointsBalance
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&balance).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			// Lazily created on first award; absent row means zero points.
			return &entity.PointsBalance{UserID: userID, Points: 0}, nil
		}
		return nil, err
	}
	return &balance, nil
}

func (r *pointsRepository) GetHistory(ctx context.Context, userID uuid.UUID, offset, limit int) ([]entity.PointActionLog, int64, error) {
	var entries []entity.PointActionLog
	var total int64

	if err := r.db.WithContext(ctx).Model(&entity.PointActionLog{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error
	return entries, total, err
}

func (r *pointsRepository) SumAwarded(ctx context.Context, userID uuid.UUID) (int, error) {
	var sum int
	err := r.db.WithContext(ctx).Model(&entity.PointActionLog{}).
		Select("COALESCE(SUM(points_awarded), 0)").
		Where("user_id = ?", userID).
		Scan(&sum).Error
	return sum, err
}

func (r *pointsRepository) SetBalance(ctx context.Context, userID uuid.UUID, points int) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"points":          points,
			"last_updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&entity.PointsBalance{
		UserID: userID,
		Points: points,
	}).Error
}

func (r *pointsRepository) TopBalances(ctx context.Context, limit int) ([]entity.PointsBalance, error) {
	var balances []entity.PointsBalance
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("User.Profile").
		Order("points DESC").
		Limit(limit).
		Find(&balances).Error
	return balances, err
}
