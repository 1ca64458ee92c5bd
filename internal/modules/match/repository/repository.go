package repository

import (
	"context"

	"anoa.com/mentorhub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MatchRepository interface {
	Create(ctx context.Context, match *entity.MatchRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.MatchRequest, error)
	FindByUser(ctx context.Context, userID uuid.UUID, status entity.MatchStatus, role string) ([]entity.MatchRequest, error)
	ExistsForPair(ctx context.Context, mentorID, menteeID uuid.UUID) (bool, error)
	Update(ctx context.Context, match *entity.MatchRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type matchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) Create(ctx context.Context, match *entity.MatchRequest) error {
	// The unique index on (mentor_id, mentee_id) surfaces racing duplicates
	// as gorm.ErrDuplicatedKey; the service maps that to a conflict.
	return r.db.WithContext(ctx).Create(match).Error
}

func (r *matchRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.MatchRequest, error) {
	var match entity.MatchRequest
	if err := r.db.WithContext(ctx).
		Preload("Mentor").
		Preload("Mentor.Profile").
		Preload("Mentee").
		Preload("Mentee.Profile").
		Where("id = ?", id).
		First(&match).Error; err != nil {
		return nil, err
	}
	return &match, nil
}

func (r *matchRepository) FindByUser(ctx context.Context, userID uuid.UUID, status entity.MatchStatus, role string) ([]entity.MatchRequest, error) {
	query := r.db.WithContext(ctx).
		Preload("Mentor").
		Preload("Mentor.Profile").
		Preload("Mentee").
		Preload("Mentee.Profile")

	switch role {
	case "mentor":
		query = query.Where("mentor_id = ?", userID)
	case "mentee":
		query = query.Where("mentee_id = ?", userID)
	default:
		query = query.Where("mentor_id = ? OR mentee_id = ?", userID, userID)
	}

	if status != "" {
		query = query.Where("status = ?", status)
	}

	var matches []entity.MatchRequest
	err := query.Order("requested_at DESC").Find(&matches).Error
	return matches, err
}

func (r *matchRepository) ExistsForPair(ctx context.Context, mentorID, menteeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.MatchRequest{}).
		Where("mentor_id = ? AND mentee_id = ?", mentorID, menteeID).
		Count(&count).Error
	return count > 0, err
}

func (r *matchRepository) Update(ctx context.Context, match *entity.MatchRequest) error {
	return r.db.WithContext(ctx).Save(match).Error
}

func (r *matchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.MatchRequest{}, "id = ?", id).Error
}
