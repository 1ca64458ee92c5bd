package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Slug        string    `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

type ThreadStatus string

const (
	ThreadOpen   ThreadStatus = "open"
	ThreadSolved ThreadStatus = "solved"
	ThreadClosed ThreadStatus = "closed"
)

const (
	VotableThread = "thread"
	VotableReply  = "reply"

	VoteUp   = "upvote"
	VoteDown = "downvote"
)

// ForumThread carries denormalized counters (views, replies, votes) and the
// decaying hot score. Every counter is recomputable from the vote/view/reply
// tables; mutations happen inside the same transaction as the backing row.
type ForumThread struct {
	ID             uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	CategoryID     *uuid.UUID   `gorm:"type:uuid;index" json:"category_id"`
	Category       Category     `gorm:"constraint:OnDelete:SET NULL" json:"category"`
	UserID         uuid.UUID    `gorm:"type:uuid;not null" json:"user_id"`
	User           User         `gorm:"constraint:OnDelete:CASCADE" json:"user"`
	Title          string       `gorm:"size:255;not null" json:"title"`
	Content        string       `gorm:"type:text;not null" json:"content"`
	Status         ThreadStatus `gorm:"size:20;not null;default:'open'" json:"status"`
	IsPinned       bool         `gorm:"default:false" json:"is_pinned"`
	ViewCount      int          `gorm:"default:0;not null" json:"view_count"`
	ReplyCount     int          `gorm:"default:0;not null" json:"reply_count"`
	UpvoteCount    int          `gorm:"default:0;not null" json:"upvote_count"`
	DownvoteCount  int          `gorm:"default:0;not null" json:"downvote_count"`
	HotScore       float64      `gorm:"default:0;not null;index" json:"hot_score"`
	LastActivityAt time.Time    `json:"last_activity_at"`
	CreatedAt      time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t *ForumThread) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID, err = uuid.NewV7()
	}
	return
}

type ForumReply struct {
	ID            uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	ThreadID      uuid.UUID   `gorm:"type:uuid;not null;index" json:"thread_id"`
	Thread        ForumThread `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	UserID        uuid.UUID   `gorm:"type:uuid;not null" json:"user_id"`
	User          User        `gorm:"constraint:OnDelete:CASCADE" json:"user"`
	Content       string      `gorm:"type:text;not null" json:"content"`
	UpvoteCount   int         `gorm:"default:0;not null" json:"upvote_count"`
	DownvoteCount int         `gorm:"default:0;not null" json:"downvote_count"`
	CreatedAt     time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *ForumReply) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}

// ForumVote holds at most one row per (votable, user); absence means "no
// vote". The unique index is what makes double-voting impossible under racing
// requests.
type ForumVote struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	VotableType string    `gorm:"size:20;not null;uniqueIndex:idx_votes_unique,priority:1" json:"votable_type"`
	VotableID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_votes_unique,priority:2" json:"votable_id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_votes_unique,priority:3" json:"user_id"`
	User        User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	VoteType    string    `gorm:"size:10;not null" json:"vote_type"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (v *ForumVote) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == uuid.Nil {
		v.ID, err = uuid.NewV7()
	}
	return
}

// ForumThreadView deduplicates view counting per viewer identity. ViewerKey
// is "u:<user id>" for authenticated callers, "ip:<addr>" for anonymous
// ones; presence of a row means the view was already counted.
type ForumThreadView struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ThreadID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_thread_viewer,priority:1" json:"thread_id"`
	ViewerKey string    `gorm:"size:100;not null;uniqueIndex:idx_thread_viewer,priority:2" json:"viewer_key"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
