package dto

import (
	"time"

	pkgDto "anoa.com/mentorhub/pkg/dto"
	"github.com/google/uuid"
)

type CreateThreadRequest struct {
	CategoryID string `json:"category_id" binding:"omitempty,uuid"`
	Title      string `json:"title" binding:"required,max=255"`
	Content    string `json:"content" binding:"required,max=10000"`
}

type CreateReplyRequest struct {
	Content string `json:"content" binding:"required,max=10000"`
}

type VoteRequest struct {
	VoteType string `json:"vote_type" binding:"required,oneof=upvote downvote"`
}

type ThreadFilter struct {
	CategoryID string `form:"category_id"`
	Status     string `form:"status" binding:"omitempty,oneof=open solved closed"`
	SortBy     string `form:"sort_by" binding:"omitempty,oneof=newest hot"`
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
}

type ThreadResponse struct {
	ID             uuid.UUID             `json:"id"`
	CategoryID     *uuid.UUID            `json:"category_id"`
	CategoryName   string                `json:"category_name,omitempty"`
	Author         pkgDto.AuthorResponse `json:"author"`
	Title          string                `json:"title"`
	Content        string                `json:"content"`
	Status         string                `json:"status"`
	IsPinned       bool                  `json:"is_pinned"`
	ViewCount      int                   `json:"view_count"`
	ReplyCount     int                   `json:"reply_count"`
	UpvoteCount    int                   `json:"upvote_count"`
	DownvoteCount  int                   `json:"downvote_count"`
	HotScore       float64               `json:"hot_score"`
	LastActivityAt time.Time             `json:"last_activity_at"`
	CreatedAt      time.Time             `json:"created_at"`
}

type PaginatedThreadResponse struct {
	Data []ThreadResponse      `json:"data"`
	Meta pkgDto.PaginationMeta `json:"meta"`
}

// VoteResult is the state after a toggle: the fresh counters and the
// caller's current vote (null when the toggle removed it).
type VoteResult struct {
	UpvoteCount   int     `json:"upvote_count"`
	DownvoteCount int     `json:"downvote_count"`
	UserVote      *string `json:"user_vote"`
}

type ViewResult struct {
	ViewCount int  `json:"view_count"`
	NewView   bool `json:"new_view"`
}
