package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateMatchRequest struct {
	MentorID      string `json:"mentor_id" binding:"required,uuid"`
	Introduction  string `json:"introduction" binding:"required,max=2000"`
	PreferredTime string `json:"preferred_time" binding:"max=100"`
}

type RespondRequest struct {
	Action string `json:"action" binding:"required,oneof=accept reject"`
}

type ListFilter struct {
	Status string `form:"status" binding:"omitempty,oneof=pending active rejected completed"`
	Role   string `form:"role" binding:"omitempty,oneof=mentor mentee"`
}

// MatchResponse is the enriched view-model returned to callers. Contact
// fields are pointers and stay nil unless the relationship state allows
// disclosure.
type MatchResponse struct {
	ID             uuid.UUID  `json:"id"`
	MentorID       uuid.UUID  `json:"mentor_id"`
	MentorUsername string     `json:"mentor_username"`
	MenteeID       uuid.UUID  `json:"mentee_id"`
	MenteeUsername string     `json:"mentee_username"`
	Status         string     `json:"status"`
	Introduction   string     `json:"introduction"`
	PreferredTime  string     `json:"preferred_time"`
	RequestedAt    time.Time  `json:"requested_at"`
	RespondedAt    *time.Time `json:"responded_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`

	MentorEmail       *string `json:"mentor_email,omitempty"`
	MenteeEmail       *string `json:"mentee_email,omitempty"`
	MentorLinkedinURL *string `json:"mentor_linkedin_url,omitempty"`
}
