package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MatchStatus string

const (
	MatchPending   MatchStatus = "pending"
	MatchActive    MatchStatus = "active"
	MatchRejected  MatchStatus = "rejected"
	MatchCompleted MatchStatus = "completed"
)

// MatchRequest pairs a mentee with a mentor. The unique index on
// (mentor_id, mentee_id) holds across every status: a pair gets exactly one
// request, ever, and racing creates resolve first-writer-wins at the database.
type MatchRequest struct {
	ID            uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	MentorID      uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_match_pair,priority:1" json:"mentor_id"`
	Mentor        User        `gorm:"foreignKey:MentorID;constraint:OnDelete:CASCADE" json:"-"`
	MenteeID      uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_match_pair,priority:2;index" json:"mentee_id"`
	Mentee        User        `gorm:"foreignKey:MenteeID;constraint:OnDelete:CASCADE" json:"-"`
	Status        MatchStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Introduction  string      `gorm:"type:text" json:"introduction"`
	PreferredTime string      `gorm:"size:100" json:"preferred_time"`
	RequestedAt   time.Time   `gorm:"not null" json:"requested_at"`
	RespondedAt   *time.Time  `json:"responded_at,omitempty"`
	CompletedAt   *time.Time  `json:"completed_at,omitempty"`
}

func (m *MatchRequest) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID, err = uuid.NewV7()
	}
	return
}
