package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"anoa.com/mentorhub/internal/entity"
	challengeDto "anoa.com/mentorhub/internal/modules/challenge/dto"
	challengeRepo "anoa.com/mentorhub/internal/modules/challenge/repository"
	notifService "anoa.com/mentorhub/internal/modules/notification/service"
	pointsService "anoa.com/mentorhub/internal/modules/points/service"
	"anoa.com/mentorhub/pkg/apperror"
	pkgDto "anoa.com/mentorhub/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChallengeService interface {
	Create(ctx context.Context, adminID uuid.UUID, req challengeDto.CreateChallengeRequest) (*challengeDto.ChallengeResponse, error)
	GetAll(ctx context.Context, page, limit int) (*challengeDto.PaginatedChallengeResponse, error)
	Get(ctx context.Context, challengeID uuid.UUID) (*challengeDto.ChallengeResponse, error)
	Join(ctx context.Context, challengeID, userID uuid.UUID) (*challengeDto.ParticipationResponse, error)
	Submit(ctx context.Context, challengeID, userID uuid.UUID, req challengeDto.SubmitChallengeRequest) (*challengeDto.ParticipationResponse, error)
	Approve(ctx context.Context, participationID uuid.UUID) (*challengeDto.ParticipationResponse, error)
	Reject(ctx context.Context, participationID uuid.UUID) (*challengeDto.ParticipationResponse, error)
	GetMyParticipations(ctx context.Context, userID uuid.UUID) ([]challengeDto.ParticipationResponse, error)
}

type challengeService struct {
	repo                challengeRepo.ChallengeRepository
	pointsService       pointsService.PointsService
	notificationService notifService.NotificationService
	now                 func() time.Time
}

func NewChallengeService(repo challengeRepo.ChallengeRepository, points pointsService.PointsService, notifications notifService.NotificationService) ChallengeService {
	return &challengeService{
		repo:                repo,
		pointsService:       points,
		notificationService: notifications,
		now:                 time.Now,
	}
}

func (s *challengeService) Create(ctx context.Context, adminID uuid.UUID, req challengeDto.CreateChallengeRequest) (*challengeDto.ChallengeResponse, error) {
	if req.Deadline != nil && req.Deadline.Before(s.now()) {
		return nil, apperror.New(400, "deadline must be in the future", apperror.ErrBadRequest)
	}

	challenge := &entity.Challenge{
		Title:       req.Title,
		Description: req.Description,
		PointReward: req.PointReward,
		Deadline:    req.Deadline,
		CreatedByID: adminID,
	}

	if err := s.repo.Create(ctx, challenge); err != nil {
		return nil, err
	}

	resp := challengeDto.ToChallengeResponse(challenge)
	return &resp, nil
}

func (s *challengeService) GetAll(ctx context.Context, page, limit int) (*challengeDto.PaginatedChallengeResponse, error) {
	challenges, total, err := s.repo.FindAll(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	data := make([]challengeDto.ChallengeResponse, 0, len(challenges))
	for i := range challenges {
		data = append(data, challengeDto.ToChallengeResponse(&challenges[i]))
	}

	return &challengeDto.PaginatedChallengeResponse{
		Data: data,
		Meta: pkgDto.NewPaginationMeta(page, limit, total),
	}, nil
}

func (s *challengeService) Get(ctx context.Context, challengeID uuid.UUID) (*challengeDto.ChallengeResponse, error) {
	challenge, err := s.findChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	resp := challengeDto.ToChallengeResponse(challenge)
	return &resp, nil
}

// Join enrolls the user and awards joining points subject to the sliding
// window cap. The unique participation index makes repeat joins a conflict,
// so the points side never double-fires.
func (s *challengeService) Join(ctx context.Context, challengeID, userID uuid.UUID) (*challengeDto.ParticipationResponse, error) {
	challenge, err := s.findChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if challenge.Deadline != nil && challenge.Deadline.Before(s.now()) {
		return nil, apperror.New(400, "challenge deadline has passed", apperror.ErrBadRequest)
	}

	participation := &entity.ChallengeParticipation{
		ChallengeID: challengeID,
		UserID:      userID,
		Status:      entity.ParticipationJoined,
		JoinedAt:    s.now(),
	}

	if err := s.repo.CreateParticipation(ctx, participation); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.New(409, "you already joined this challenge", apperror.ErrConflict)
		}
		return nil, err
	}

	awarded, err := s.pointsService.AwardForAction(ctx, userID, entity.ActionChallengeJoined, challengeID.String())
	if err != nil {
		log.Printf("Failed to award join points to user %s: %v", userID, err)
		awarded = 0
	}

	resp := challengeDto.ToParticipationResponse(participation, awarded)
	return &resp, nil
}

func (s *challengeService) Submit(ctx context.Context, challengeID, userID uuid.UUID, req challengeDto.SubmitChallengeRequest) (*challengeDto.ParticipationResponse, error) {
	participation, err := s.repo.FindParticipation(ctx, challengeID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(404, "you have not joined this challenge", apperror.ErrNotFound)
		}
		return nil, err
	}

	if participation.Status != entity.ParticipationJoined {
		return nil, apperror.New(400, fmt.Sprintf("cannot submit while participation is %s", participation.Status), apperror.ErrBadRequest)
	}

	now := s.now()
	participation.Status = entity.ParticipationSubmitted
	participation.SubmissionURL = &req.SubmissionURL
	participation.SubmittedAt = &now

	if err := s.repo.UpdateParticipation(ctx, participation); err != nil {
		return nil, err
	}

	awarded, err := s.pointsService.AwardForAction(ctx, userID, entity.ActionChallengeSubmitted, challengeID.String())
	if err != nil {
		log.Printf("Failed to award submission points to user %s: %v", userID, err)
		awarded = 0
	}

	resp := challengeDto.ToParticipationResponse(participation, awarded)
	return &resp, nil
}

// Approve pays out the challenge reward in full. Approval rewards bypass the
// diminishing-returns guard because an admin already reviewed the work.
func (s *challengeService) Approve(ctx context.Context, participationID uuid.UUID) (*challengeDto.ParticipationResponse, error) {
	participation, err := s.findSubmitted(ctx, participationID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	participation.Status = entity.ParticipationApproved
	participation.ReviewedAt = &now

	if err := s.repo.UpdateParticipation(ctx, participation); err != nil {
		return nil, err
	}

	reward := participation.Challenge.PointReward
	if err := s.pointsService.AwardFixed(ctx, participation.UserID, entity.ActionChallengeApproved, participation.ChallengeID.String(), reward); err != nil {
		log.Printf("Failed to award approval points to user %s: %v", participation.UserID, err)
		reward = 0
	}

	s.notifyReview(participation, "challenge_approved",
		fmt.Sprintf("Your submission for %q was approved, you earned %d points", participation.Challenge.Title, reward))

	resp := challengeDto.ToParticipationResponse(participation, reward)
	return &resp, nil
}

func (s *challengeService) Reject(ctx context.Context, participationID uuid.UUID) (*challengeDto.ParticipationResponse, error) {
	participation, err := s.findSubmitted(ctx, participationID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	participation.Status = entity.ParticipationRejected
	participation.ReviewedAt = &now

	if err := s.repo.UpdateParticipation(ctx, participation); err != nil {
		return nil, err
	}

	s.notifyReview(participation, "challenge_rejected",
		fmt.Sprintf("Your submission for %q was not approved", participation.Challenge.Title))

	resp := challengeDto.ToParticipationResponse(participation, 0)
	return &resp, nil
}

func (s *challengeService) GetMyParticipations(ctx context.Context, userID uuid.UUID) ([]challengeDto.ParticipationResponse, error) {
	participations, err := s.repo.FindParticipationsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	data := make([]challengeDto.ParticipationResponse, 0, len(participations))
	for i := range participations {
		data = append(data, challengeDto.ToParticipationResponse(&participations[i], 0))
	}
	return data, nil
}

func (s *challengeService) findChallenge(ctx context.Context, challengeID uuid.UUID) (*entity.Challenge, error) {
	challenge, err := s.repo.FindByID(ctx, challengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(404, "challenge not found", apperror.ErrNotFound)
		}
		return nil, err
	}
	return challenge, nil
}

func (s *challengeService) findSubmitted(ctx context.Context, participationID uuid.UUID) (*entity.ChallengeParticipation, error) {
	participation, err := s.repo.FindParticipationByID(ctx, participationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(404, "participation not found", apperror.ErrNotFound)
		}
		return nil, err
	}
	if participation.Status != entity.ParticipationSubmitted {
		return nil, apperror.New(400, fmt.Sprintf("participation is %s, expected submitted", participation.Status), apperror.ErrBadRequest)
	}
	return participation, nil
}

func (s *challengeService) notifyReview(p *entity.ChallengeParticipation, notifType, message string) {
	if s.notificationService == nil {
		return
	}
	go func() {
		notif := &entity.Notification{
			UserID:     p.UserID,
			ActorID:    p.Challenge.CreatedByID,
			EntityID:   p.ChallengeID,
			EntityType: "challenge",
			Type:       notifType,
			Message:    message,
		}
		if err := s.notificationService.CreateNotification(context.Background(), notif); err != nil {
			log.Printf("Failed to send %s notification to user %s: %v", notifType, p.UserID, err)
		}
	}()
}
