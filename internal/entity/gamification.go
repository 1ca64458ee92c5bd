package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionChallengeJoined    = "challenge_joined"
	ActionChallengeSubmitted = "challenge_submitted"
	ActionChallengeApproved  = "challenge_approved"
)

// PointActionLog is the append-only audit trail of point-earning actions.
// Rows are never mutated or deleted; the balance is reconstructable as
// SUM(points_awarded) per user. PointsAwarded may be 0 when the sliding
// window cap zeroed the reward.
type PointActionLog struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index:idx_points_window,priority:1" json:"user_id"`
	User          User      `gorm:"foreignKey:UserID" json:"-"`
	ActionType    string    `gorm:"size:50;not null;index:idx_points_window,priority:2" json:"action_type"`
	ReferenceID   string    `gorm:"size:36" json:"reference_id"`
	PointsAwarded int       `gorm:"not null" json:"points_awarded"`
	CreatedAt     time.Time `gorm:"index:idx_points_window,priority:3" json:"created_at"`
}

type PointsBalance struct {
	UserID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	User          User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	Points        int       `gorm:"default:0;not null" json:"points"`
	LastUpdatedAt time.Time `gorm:"autoUpdateTime" json:"last_updated_at"`
}
