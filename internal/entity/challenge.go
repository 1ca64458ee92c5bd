package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ParticipationStatus string

const (
	ParticipationJoined    ParticipationStatus = "joined"
	ParticipationSubmitted ParticipationStatus = "submitted"
	ParticipationApproved  ParticipationStatus = "approved"
	ParticipationRejected  ParticipationStatus = "rejected"
)

type Challenge struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	PointReward int        `gorm:"not null" json:"point_reward"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	CreatedByID uuid.UUID  `gorm:"type:uuid;not null" json:"created_by_id"`
	CreatedBy   User       `gorm:"foreignKey:CreatedByID" json:"-"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (c *Challenge) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

// ChallengeParticipation tracks one user's progress through a challenge; the
// unique index keeps retried joins idempotent at the database.
type ChallengeParticipation struct {
	ID            uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	ChallengeID   uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_challenge_user,priority:1" json:"challenge_id"`
	Challenge     Challenge           `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	UserID        uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_challenge_user,priority:2" json:"user_id"`
	User          User                `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Status        ParticipationStatus `gorm:"size:20;not null;default:'joined'" json:"status"`
	SubmissionURL *string             `gorm:"type:text" json:"submission_url,omitempty"`
	JoinedAt      time.Time           `gorm:"not null" json:"joined_at"`
	SubmittedAt   *time.Time          `json:"submitted_at,omitempty"`
	ReviewedAt    *time.Time          `json:"reviewed_at,omitempty"`
}

func (p *ChallengeParticipation) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}
