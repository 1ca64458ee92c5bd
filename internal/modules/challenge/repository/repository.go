package repository

import (
	"context"

	"anoa.com/mentorhub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChallengeRepository interface {
	Create(ctx context.Context, challenge *entity.Challenge) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Challenge, error)
	FindAll(ctx context.Context, offset, limit int) ([]entity.Challenge, int64, error)

	CreateParticipation(ctx context.Context, p *entity.ChallengeParticipation) error
	FindParticipation(ctx context.Context, challengeID, userID uuid.UUID) (*entity.ChallengeParticipation, error)
	FindParticipationByID(ctx context.Context, id uuid.UUID) (*entity.ChallengeParticipation, error)
	UpdateParticipation(ctx context.Context, p *entity.ChallengeParticipation) error
	FindParticipantsByChallenge(ctx context.Context, challengeID uuid.UUID, offset, limit int) ([]entity.ChallengeParticipation, int64, error)
	FindParticipationsByUser(ctx context.Context, userID uuid.UUID) ([]entity.ChallengeParticipation, error)
}

type challengeRepository struct {
	db *gorm.DB
}

func NewChallengeRepository(db *gorm.DB) ChallengeRepository {
	return &challengeRepository{db: db}
}

func (r *challengeRepository) Create(ctx context.Context, challenge *entity.Challenge) error {
	return r.db.WithContext(ctx).Create(challenge).Error
}

func (r *challengeRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Challenge, error) {
	var challenge entity.Challenge
	err := r.db.WithContext(ctx).First(&challenge, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (r *challengeRepository) FindAll(ctx context.Context, offset, limit int) ([]entity.Challenge, int64, error) {
	var challenges []entity.Challenge
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Challenge{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&challenges).Error
	return challenges, total, err
}

// CreateParticipation relies on the unique challenge/user index to reject
// duplicate joins; callers translate gorm.ErrDuplicatedKey to a conflict.
func (r *challengeRepository) CreateParticipation(ctx context.Context, p *entity.ChallengeParticipation) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *challengeRepository) FindParticipation(ctx context.Context, challengeID, userID uuid.UUID) (*entity.ChallengeParticipation, error) {
	var p entity.ChallengeParticipation
	err := r.db.WithContext(ctx).
		First(&p, "challenge_id = ? AND user_id = ?", challengeID, userID).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *challengeRepository) FindParticipationByID(ctx context.Context, id uuid.UUID) (*entity.ChallengeParticipation, error) {
	var p entity.ChallengeParticipation
	err := r.db.WithContext(ctx).
		Preload("Challenge").
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *challengeRepository) UpdateParticipation(ctx context.Context, p *entity.ChallengeParticipation) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *challengeRepository) FindParticipantsByChallenge(ctx context.Context, challengeID uuid.UUID, offset, limit int) ([]entity.ChallengeParticipation, int64, error) {
	var participants []entity.ChallengeParticipation
	var total int64

	query := r.db.WithContext(ctx).
		Model(&entity.ChallengeParticipation{}).
		Where("challenge_id = ?", challengeID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "avatar_url")
		}).
		Order("joined_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&participants).Error
	return participants, total, err
}

func (r *challengeRepository) FindParticipationsByUser(ctx context.Context, userID uuid.UUID) ([]entity.ChallengeParticipation, error) {
	var participations []entity.ChallengeParticipation
	err := r.db.WithContext(ctx).
		Preload("Challenge").
		Where("user_id = ?", userID).
		Order("joined_at DESC").
		Find(&participations).Error
	return participations, err
}
