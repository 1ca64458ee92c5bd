package service

import (
	"context"
	"errors"
	"log"
	"time"

	"anoa.com/mentorhub/internal/entity"
	matchDto "anoa.com/mentorhub/internal/modules/match/dto"
	matchRepo "anoa.com/mentorhub/internal/modules/match/repository"
	userRepo "anoa.com/mentorhub/internal/modules/user/repository"
	"anoa.com/mentorhub/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"

	docRepo "anoa.com/mentorhub/internal/modules/document/repository"
	notifService "anoa.com/mentorhub/internal/modules/notification/service"
)

type MatchService interface {
	CreateMatch(ctx context.Context, menteeID uuid.UUID, req matchDto.CreateMatchRequest) (*matchDto.MatchResponse, error)
	Respond(ctx context.Context, mentorID, matchID uuid.UUID, action string) (*matchDto.MatchResponse, error)
	Complete(ctx context.Context, callerID, matchID uuid.UUID) (*matchDto.MatchResponse, error)
	Cancel(ctx context.Context, callerID, matchID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, filter matchDto.ListFilter) ([]matchDto.MatchResponse, error)
}

type matchService struct {
	repo                matchRepo.MatchRepository
	userRepo            userRepo.UserRepository
	documentRepo        docRepo.DocumentRepository
	notificationService notifService.NotificationService
}

func NewMatchService(repo matchRepo.MatchRepository, userRepo userRepo.UserRepository, documentRepo docRepo.DocumentRepository, notificationService notifService.NotificationService) MatchService {
	return &matchService{
		repo:                repo,
		userRepo:            userRepo,
		documentRepo:        documentRepo,
		notificationService: notificationService,
	}
}

func (s *matchService) CreateMatch(ctx context.Context, menteeID uuid.UUID, req matchDto.CreateMatchRequest) (*matchDto.MatchResponse, error) {
	mentorID, err := uuid.Parse(req.MentorID)
	if err != nil {
		return nil, apperror.New(400, "invalid mentor id", apperror.ErrBadRequest)
	}

	if mentorID == menteeID {
		return nil, apperror.New(400, "you cannot request a match with yourself", apperror.ErrBadRequest)
	}

	mentor, err := s.userRepo.FindByID(ctx, mentorID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(404, "mentor not found", apperror.ErrNotFound)
		}
		return nil, err
	}
	if mentor.Profile == nil || !mentor.Profile.IsMentor {
		return nil, apperror.New(400, "requested user is not a mentor", apperror.ErrBadRequest)
	}

	hasCV, err := s.documentRepo.HasDocument(ctx, menteeID, entity.DocTypeCV)
	if err != nil {
		return nil, err
	}
	if !hasCV {
		return nil, apperror.New(400, "upload your CV before requesting a match", apperror.ErrBadRequest)
	}

	// Friendly pre-check; the unique index on (mentor_id, mentee_id) is what
	// actually decides racing creates.
	exists, err := s.repo.ExistsForPair(ctx, mentorID, menteeID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.New(409, "a match request for this mentor already exists", apperror.ErrConflict)
	}

	match := &entity.MatchRequest{
		MentorID:      mentorID,
		MenteeID:      menteeID,
		Status:        entity.MatchPending,
		Introduction:  req.Introduction,
		PreferredTime: req.PreferredTime,
		RequestedAt:   time.Now(),
	}

	if err := s.repo.Create(ctx, match); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.New(409, "a match request for this mentor already exists", apperror.ErrConflict)
		}
		return nil, err
	}

	s.notifyAsync(mentorID, menteeID, match.ID, "match_requested", "You received a new mentorship request")

	created, err := s.repo.FindByID(ctx, match.ID)
	if err != nil {
		return nil, err
	}
	resp := toMatchResponse(created)
	return &resp, nil
}

func (s *matchService) Respond(ctx context.Context, mentorID, matchID uuid.UUID, action string) (*matchDto.MatchResponse, error) {
	match, err := s.findMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if match.MentorID != mentorID {
		return nil, apperror.New(403, "only the mentor can respond to this request", apperror.ErrForbidden)
	}

	next, err := Transition(match.Status, MatchAction(action))
	if err != nil {
		return nil, err
	}

	now := time.Now()
	match.Status = next
	match.RespondedAt = &now
	if err := s.repo.Update(ctx, match); err != nil {
		return nil, err
	}

	if next == entity.MatchActive {
		s.notifyAsync(match.MenteeID, mentorID, match.ID, "match_accepted", "Your mentorship request was accepted")
	} else {
		s.notifyAsync(match.MenteeID, mentorID, match.ID, "match_rejected", "Your mentorship request was declined")
	}

	resp := toMatchResponse(match)
	return &resp, nil
}

func (s *matchService) Complete(ctx context.Context, callerID, matchID uuid.UUID) (*matchDto.MatchResponse, error) {
	match, err := s.findMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if match.MentorID != callerID && match.MenteeID != callerID {
		return nil, apperror.New(403, "you are not part of this match", apperror.ErrForbidden)
	}

	next, err := Transition(match.Status, ActionComplete)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	match.Status = next
	match.CompletedAt = &now
	if err := s.repo.Update(ctx, match); err != nil {
		return nil, err
	}

	other := match.MentorID
	if callerID == match.MentorID {
		other = match.MenteeID
	}
	s.notifyAsync(other, callerID, match.ID, "match_completed", "Your mentorship has been marked as completed")

	resp := toMatchResponse(match)
	return &resp, nil
}

func (s *matchService) Cancel(ctx context.Context, callerID, matchID uuid.UUID) error {
	match, err := s.findMatch(ctx, matchID)
	if err != nil {
		return err
	}

	if match.MenteeID != callerID {
		return apperror.New(403, "only the mentee can cancel a request", apperror.ErrForbidden)
	}

	if _, err := Transition(match.Status, ActionCancel); err != nil {
		return err
	}

	return s.repo.Delete(ctx, match.ID)
}

func (s *matchService) List(ctx context.Context, userID uuid.UUID, filter matchDto.ListFilter) ([]matchDto.MatchResponse, error) {
	matches, err := s.repo.FindByUser(ctx, userID, entity.MatchStatus(filter.Status), filter.Role)
	if err != nil {
		return nil, err
	}

	responses := make([]matchDto.MatchResponse, 0, len(matches))
	for i := range matches {
		responses = append(responses, toMatchResponse(&matches[i]))
	}
	return responses, nil
}

func (s *matchService) findMatch(ctx context.Context, matchID uuid.UUID) (*entity.MatchRequest, error) {
	match, err := s.repo.FindByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(404, "match not found", apperror.ErrNotFound)
		}
		return nil, err
	}
	return match, nil
}

func (s *matchService) notifyAsync(userID, actorID, matchID uuid.UUID, notifType, message string) {
	if s.notificationService == nil {
		return
	}
	go func() {
		notif := &entity.Notification{
			UserID:     userID,
			ActorID:    actorID,
			EntityID:   matchID,
			EntityType: "match",
			Type:       notifType,
			Message:    message,
		}
		if err := s.notificationService.CreateNotification(context.Background(), notif); err != nil {
			log.Printf("Failed to send %s notification to user %s: %v", notifType, userID, err)
		}
	}()
}

// toMatchResponse projects a match into its view-model. Contact fields are
// only filled in when ContactVisible allows it for the current status.
func toMatchResponse(m *entity.MatchRequest) matchDto.MatchResponse {
	resp := matchDto.MatchResponse{
		ID:             m.ID,
		MentorID:       m.MentorID,
		MentorUsername: m.Mentor.Username,
		MenteeID:       m.MenteeID,
		MenteeUsername: m.Mentee.Username,
		Status:         string(m.Status),
		Introduction:   m.Introduction,
		PreferredTime:  m.PreferredTime,
		RequestedAt:    m.RequestedAt,
		RespondedAt:    m.RespondedAt,
		CompletedAt:    m.CompletedAt,
	}

	if ContactVisible(m.Status) {
		if m.Mentor.Email != "" {
			email := m.Mentor.Email
			resp.MentorEmail = &email
		}
		if m.Mentee.Email != "" {
			email := m.Mentee.Email
			resp.MenteeEmail = &email
		}
		if m.Mentor.Profile != nil && m.Mentor.Profile.LinkedinURL != nil {
			resp.MentorLinkedinURL = m.Mentor.Profile.LinkedinURL
		}
	}

	return resp
}
