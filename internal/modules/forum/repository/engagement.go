package repository

import (
	"context"
	"errors"

	"anoa.com/mentorhub/internal/entity"
	"anoa.com/mentorhub/internal/modules/forum/voting"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ToggleVote applies one three-state toggle inside a single transaction: the
// vote row mutation and the parent's counter deltas commit together. A
// racing duplicate insert trips the unique index and surfaces as
// gorm.ErrDuplicatedKey. Returns the caller's resulting vote ("" when the
// toggle removed it).
func (r *forumRepository) ToggleVote(ctx context.Context, votableType string, votableID, userID uuid.UUID, voteType string) (string, error) {
	var next string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Find with a slice to avoid "record not found" log noise from First().
		var existing []entity.ForumVote
		if err := tx.
			Where("votable_type = ? AND votable_id = ? AND user_id = ?", votableType, votableID, userID).
			Limit(1).
			Find(&existing).Error; err != nil {
			return err
		}

		current := voting.None
		if len(existing) > 0 {
			current = existing[0].VoteType
		}

		out := voting.Apply(current, voteType)
		next = out.Next

		switch {
		case current == voting.None:
			vote := &entity.ForumVote{
				VotableType: votableType,
				VotableID:   votableID,
				UserID:      userID,
				VoteType:    voteType,
			}
			if err := tx.Create(vote).Error; err != nil {
				return err
			}
		case out.Next == voting.None:
			if err := tx.Delete(&existing[0]).Error; err != nil {
				return err
			}
		default:
			existing[0].VoteType = out.Next
			if err := tx.Save(&existing[0]).Error; err != nil {
				return err
			}
		}

		return applyVoteDeltas(tx, votableType, votableID, out.UpDelta, out.DownDelta)
	})

	return next, err
}

func applyVoteDeltas(tx *gorm.DB, votableType string, votableID uuid.UUID, upDelta, downDelta int) error {
	updates := map[string]interface{}{}
	if upDelta != 0 {
		updates["upvote_count"] = gorm.Expr("upvote_count + ?", upDelta)
	}
	if downDelta != 0 {
		updates["downvote_count"] = gorm.Expr("downvote_count + ?", downDelta)
	}
	if len(updates) == 0 {
		return nil
	}

	query := tx.Model(votableModel(votableType)).Where("id = ?", votableID)
	res := query.Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func votableModel(votableType string) interface{} {
	if votableType == entity.VotableReply {
		return &entity.ForumReply{}
	}
	return &entity.ForumThread{}
}

func (r *forumRepository) GetVote(ctx context.Context, votableType string, votableID, userID uuid.UUID) (*entity.ForumVote, error) {
	var votes []entity.ForumVote
	err := r.db.WithContext(ctx).
		Where("votable_type = ? AND votable_id = ? AND user_id = ?", votableType, votableID, userID).
		Limit(1).
		Find(&votes).Error
	if err != nil {
		return nil, err
	}
	if len(votes) == 0 {
		return nil, nil
	}
	return &votes[0], nil
}

func (r *forumRepository) VoteCounts(ctx context.Context, votableType string, votableID uuid.UUID) (int, int, error) {
	if votableType == entity.VotableReply {
		var reply entity.ForumReply
		if err := r.db.WithContext(ctx).Select("upvote_count", "downvote_count").
			Where("id = ?", votableID).First(&reply).Error; err != nil {
			return 0, 0, err
		}
		return reply.UpvoteCount, reply.DownvoteCount, nil
	}

	var thread entity.ForumThread
	if err := r.db.WithContext(ctx).Select("upvote_count", "downvote_count").
		Where("id = ?", votableID).First(&thread).Error; err != nil {
		return 0, 0, err
	}
	return thread.UpvoteCount, thread.DownvoteCount, nil
}

// RecordView counts a view at most once per (thread, viewer) identity. The
// dedup row insert and the counter increment share a transaction; a
// concurrent duplicate loses on the unique index and counts as already seen.
func (r *forumRepository) RecordView(ctx context.Context, threadID uuid.UUID, viewerKey string) (bool, error) {
	var seen []entity.ForumThreadView
	if err := r.db.WithContext(ctx).
		Where("thread_id = ? AND viewer_key = ?", threadID, viewerKey).
		Limit(1).
		Find(&seen).Error; err != nil {
		return false, err
	}
	if len(seen) > 0 {
		return false, nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		view := &entity.ForumThreadView{
			ThreadID:  threadID,
			ViewerKey: viewerKey,
		}
		if err := tx.Create(view).Error; err != nil {
			return err
		}

		res := tx.Model(&entity.ForumThread{}).
			Where("id = ?", threadID).
			Update("view_count", gorm.Expr("view_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race to another request from the same identity; the
			// view is already counted.
			return false, nil
		}
		return false, err
	}

	return true, nil
}
