package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"anoa.com/mentorhub/internal/entity"
	pointsDto "anoa.com/mentorhub/internal/modules/points/dto"
	pointsRepo "anoa.com/mentorhub/internal/modules/points/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// AwardPolicy is the diminishing-returns policy for one action type: the
// first MaxFreePerWindow actions inside Window earn BasePoints each, every
// action past the cap is still logged but earns nothing.
type AwardPolicy struct {
	BasePoints       int
	Window           time.Duration
	MaxFreePerWindow int
}

var policies = map[string]AwardPolicy{
	entity.ActionChallengeJoined:    {BasePoints: 5, Window: 24 * time.Hour, MaxFreePerWindow: 5},
	entity.ActionChallengeSubmitted: {BasePoints: 10, Window: 24 * time.Hour, MaxFreePerWindow: 3},
}

const (
	leaderboardCacheKey = "leaderboard:points"
	leaderboardCacheTTL = time.Minute
)

type PointsService interface {
	// AwardForAction runs the anti-abuse guard for a policy-covered action
	// and returns how many points were actually awarded (possibly 0). The
	// action itself never fails because of the guard.
	AwardForAction(ctx context.Context, userID uuid.UUID, actionType, referenceID string) (int, error)
	// AwardFixed bypasses the sliding-window cap. Used for human-gated
	// rewards such as an approved challenge submission.
	AwardFixed(ctx context.Context, userID uuid.UUID, actionType, referenceID string, points int) error
	GetBalance(ctx context.Context, userID uuid.UUID) (*entity.PointsBalance, error)
	GetHistory(ctx context.Context, userID uuid.UUID, page, limit int) ([]entity.PointActionLog, int64, error)
	// RecomputeBalance rebuilds the stored balance from the audit log, which
	// is authoritative. Admin repair operation for drift after a partial
	// failure.
	RecomputeBalance(ctx context.Context, userID uuid.UUID) (*entity.PointsBalance, error)
	GetLeaderboard(ctx context.Context, limit int) ([]pointsDto.LeaderboardEntry, error)
}

type pointsService struct {
	repo        pointsRepo.PointsRepository
	redisClient *redis.Client
	now         func() time.Time
}

func NewPointsService(repo pointsRepo.PointsRepository, redisClient *redis.Client) PointsService {
	return &pointsService{
		repo:        repo,
		redisClient: redisClient,
		now:         time.Now,
	}
}

func (s *pointsService) AwardForAction(ctx context.Context, userID uuid.UUID, actionType, referenceID string) (int, error) {
	policy, ok := policies[actionType]
	if !ok {
		log.Printf("No award policy for action type %q, logging with 0 points", actionType)
		return 0, s.appendLog(ctx, userID, actionType, referenceID, 0)
	}

	since := s.now().Add(-policy.Window)
	count, err := s.repo.CountActionsSince(ctx, userID, actionType, since)
	if err != nil {
		return 0, err
	}

	awarded := policy.BasePoints
	if count >= int64(policy.MaxFreePerWindow) {
		// Over the cap: the action still succeeds and is recorded for audit,
		// it just earns nothing.
		awarded = 0
	}

	return awarded, s.appendLog(ctx, userID, actionType, referenceID, awarded)
}

func (s *pointsService) AwardFixed(ctx context.Context, userID uuid.UUID, actionType, referenceID string, points int) error {
	return s.appendLog(ctx, userID, actionType, referenceID, points)
}

func (s *pointsService) appendLog(ctx context.Context, userID uuid.UUID, actionType, referenceID string, points int) error {
	entry := &entity.PointActionLog{
		UserID:        userID,
		ActionType:    actionType,
		ReferenceID:   referenceID,
		PointsAwarded: points,
		CreatedAt:     s.now(),
	}
	if err := s.repo.Award(ctx, entry); err != nil {
		return err
	}

	if points > 0 {
		s.invalidateLeaderboard(ctx)
	}
	return nil
}

func (s *pointsService) GetBalance(ctx context.Context, userID uuid.UUID) (*entity.PointsBalance, error) {
	return s.repo.GetBalance(ctx, userID)
}

func (s *pointsService) GetHistory(ctx context.Context, userID uuid.UUID, page, limit int) ([]entity.PointActionLog, int64, error) {
	offset := (page - 1) * limit
	return s.repo.GetHistory(ctx, userID, offset, limit)
}

func (s *pointsService) RecomputeBalance(ctx context.Context, userID uuid.UUID) (*entity.PointsBalance, error) {
	sum, err := s.repo.SumAwarded(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetBalance(ctx, userID, sum); err != nil {
		return nil, err
	}

	s.invalidateLeaderboard(ctx)
	return &entity.PointsBalance{UserID: userID, Points: sum}, nil
}

func (s *pointsService) GetLeaderboard(ctx context.Context, limit int) ([]pointsDto.LeaderboardEntry, error) {
	// Serve from cache when possible; the leaderboard tolerates a minute of
	// staleness.
	if s.redisClient != nil {
		if raw, err := s.redisClient.Get(ctx, leaderboardCacheKey).Result(); err == nil {
			var cached []pointsDto.LeaderboardEntry
			if json.Unmarshal([]byte(raw), &cached) == nil && len(cached) >= limit {
				return cached[:limit], nil
			}
		}
	}

	balances, err := s.repo.TopBalances(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]pointsDto.LeaderboardEntry, 0, len(balances))
	for i, b := range balances {
		entries = append(entries, pointsDto.LeaderboardEntry{
			Position:  i + 1,
			Username:  b.User.Username,
			AvatarURL: b.User.AvatarURL,
			Points:    b.Points,
		})
	}

	if s.redisClient != nil {
		if payload, err := json.Marshal(entries); err == nil {
			if err := s.redisClient.Set(ctx, leaderboardCacheKey, payload, leaderboardCacheTTL).Err(); err != nil {
				log.Printf("Failed to cache leaderboard: %v", err)
			}
		}
	}

	return entries, nil
}

func (s *pointsService) invalidateLeaderboard(ctx context.Context) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Del(ctx, leaderboardCacheKey).Err(); err != nil {
		log.Printf("Failed to invalidate leaderboard cache: %v", err)
	}
}
