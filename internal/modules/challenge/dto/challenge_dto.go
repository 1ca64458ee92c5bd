package dto

import (
	"time"

	"anoa.com/mentorhub/internal/entity"
	pkgDto "anoa.com/mentorhub/pkg/dto"
	"github.com/google/uuid"
)

type CreateChallengeRequest struct {
	Title       string     `json:"title" binding:"required,max=255"`
	Description string     `json:"description" binding:"max=10000"`
	PointReward int        `json:"point_reward" binding:"required,min=1,max=1000"`
	Deadline    *time.Time `json:"deadline" binding:"omitempty"`
}

type SubmitChallengeRequest struct {
	SubmissionURL string `json:"submission_url" binding:"required,url,max=2048"`
}

type ChallengeResponse struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	PointReward int        `json:"point_reward"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type ParticipationResponse struct {
	ID            uuid.UUID  `json:"id"`
	ChallengeID   uuid.UUID  `json:"challenge_id"`
	Status        string     `json:"status"`
	SubmissionURL *string    `json:"submission_url,omitempty"`
	JoinedAt      time.Time  `json:"joined_at"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`

	// PointsAwarded reports what the action just earned, zero when the
	// diminishing-returns cap already applied.
	PointsAwarded int `json:"points_awarded"`
}

type PaginatedChallengeResponse struct {
	Data []ChallengeResponse   `json:"data"`
	Meta pkgDto.PaginationMeta `json:"meta"`
}

func ToChallengeResponse(c *entity.Challenge) ChallengeResponse {
	return ChallengeResponse{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		PointReward: c.PointReward,
		Deadline:    c.Deadline,
		CreatedAt:   c.CreatedAt,
	}
}

func ToParticipationResponse(p *entity.ChallengeParticipation, pointsAwarded int) ParticipationResponse {
	return ParticipationResponse{
		ID:            p.ID,
		ChallengeID:   p.ChallengeID,
		Status:        string(p.Status),
		SubmissionURL: p.SubmissionURL,
		JoinedAt:      p.JoinedAt,
		SubmittedAt:   p.SubmittedAt,
		ReviewedAt:    p.ReviewedAt,
		PointsAwarded: pointsAwarded,
	}
}
