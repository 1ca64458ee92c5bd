package repository

import (
	"context"
	"time"

	"anoa.com/mentorhub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ForumRepository interface {
	CreateThread(ctx context.Context, thread *entity.ForumThread) error
	FindThreadByID(ctx context.Context, id uuid.UUID) (*entity.ForumThread, error)
	FindAllThreads(ctx context.Context, categoryID *uuid.UUID, status string, sortBy string, offset, limit int) ([]entity.ForumThread, int64, error)
	DeleteThread(ctx context.Context, id uuid.UUID) error
	CreateReply(ctx context.Context, reply *entity.ForumReply) error
	DeleteReply(ctx context.Context, id uuid.UUID) error
	FindReplyByID(ctx context.Context, id uuid.UUID) (*entity.ForumReply, error)
	FindRepliesByThread(ctx context.Context, threadID uuid.UUID, offset, limit int) ([]entity.ForumReply, int64, error)
	UpdateHotScore(ctx context.Context, threadID uuid.UUID, score float64) error
	FindCategoryByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)

	ToggleVote(ctx context.Context, votableType string, votableID, userID uuid.UUID, voteType string) (userVote string, err error)
	GetVote(ctx context.Context, votableType string, votableID, userID uuid.UUID) (*entity.ForumVote, error)
	VoteCounts(ctx context.Context, votableType string, votableID uuid.UUID) (up int, down int, err error)
	RecordView(ctx context.Context, threadID uuid.UUID, viewerKey string) (newView bool, err error)
}

type forumRepository struct {
	db *gorm.DB
}

func NewForumRepository(db *gorm.DB) ForumRepository {
	return &forumRepository{db: db}
}

func (r *forumRepository) CreateThread(ctx context.Context, thread *entity.ForumThread) error {
	return r.db.WithContext(ctx).Create(thread).Error
}

func (r *forumRepository) FindThreadByID(ctx context.Context, id uuid.UUID) (*entity.ForumThread, error) {
	var thread entity.ForumThread
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("User").
		Where("id = ?", id).
		First(&thread).Error; err != nil {
		return nil, err
	}
	return &thread, nil
}

func (r *forumRepository) FindAllThreads(ctx context.Context, categoryID *uuid.UUID, status string, sortBy string, offset, limit int) ([]entity.ForumThread, int64, error) {
	var threads []entity.ForumThread
	var total int64

	query := r.db.WithContext(ctx).
		Preload("Category").
		Preload("User")

	if categoryID != nil {
		query = query.Where("category_id = ?", categoryID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Model(&entity.ForumThread{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Pinned threads float to the top in every sort order.
	if sortBy == "newest" {
		query = query.Order("is_pinned DESC").Order("created_at DESC")
	} else {
		query = query.Order("is_pinned DESC").Order("hot_score DESC").Order("created_at DESC")
	}

	if err := query.Offset(offset).Limit(limit).Find(&threads).Error; err != nil {
		return nil, 0, err
	}

	return threads, total, nil
}

func (r *forumRepository) CreateReply(ctx context.Context, reply *entity.ForumReply) error {
	// Reply insert and the thread's reply_count/last_activity_at move
	// together or not at all.
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reply).Error; err != nil {
			return err
		}

		res := tx.Model(&entity.ForumThread{}).
			Where("id = ?", reply.ThreadID).
			Updates(map[string]interface{}{
				"reply_count":      gorm.Expr("reply_count + 1"),
				"last_activity_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// DeleteThread removes the thread row together with its replies, votes and
// view records. Votes are polymorphic (no foreign key on votable_id), so the
// cleanup is explicit rather than left to cascades.
func (r *forumRepository) DeleteThread(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var replyIDs []uuid.UUID
		if err := tx.Model(&entity.ForumReply{}).
			Where("thread_id = ?", id).
			Pluck("id", &replyIDs).Error; err != nil {
			return err
		}
		if len(replyIDs) > 0 {
			if err := tx.Where("votable_type = ? AND votable_id IN ?", entity.VotableReply, replyIDs).
				Delete(&entity.ForumVote{}).Error; err != nil {
				return err
			}
			if err := tx.Where("thread_id = ?", id).Delete(&entity.ForumReply{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("votable_type = ? AND votable_id = ?", entity.VotableThread, id).
			Delete(&entity.ForumVote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("thread_id = ?", id).Delete(&entity.ForumThreadView{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&entity.ForumThread{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *forumRepository) DeleteReply(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reply entity.ForumReply
		if err := tx.Where("id = ?", id).First(&reply).Error; err != nil {
			return err
		}

		if err := tx.Where("votable_type = ? AND votable_id = ?", entity.VotableReply, id).
			Delete(&entity.ForumVote{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&entity.ForumReply{}, "id = ?", id).Error; err != nil {
			return err
		}

		return tx.Model(&entity.ForumThread{}).
			Where("id = ? AND reply_count > 0", reply.ThreadID).
			Update("reply_count", gorm.Expr("reply_count - 1")).Error
	})
}

func (r *forumRepository) FindReplyByID(ctx context.Context, id uuid.UUID) (*entity.ForumReply, error) {
	var reply entity.ForumReply
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ?", id).
		First(&reply).Error; err != nil {
		return nil, err
	}
	return &reply, nil
}

func (r *forumRepository) FindRepliesByThread(ctx context.Context, threadID uuid.UUID, offset, limit int) ([]entity.ForumReply, int64, error) {
	var replies []entity.ForumReply
	var total int64

	query := r.db.WithContext(ctx).Where("thread_id = ?", threadID)

	if err := query.Model(&entity.ForumReply{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("User").
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&replies).Error
	return replies, total, err
}

func (r *forumRepository) UpdateHotScore(ctx context.Context, threadID uuid.UUID, score float64) error {
	res := r.db.WithContext(ctx).Model(&entity.ForumThread{}).
		Where("id = ?", threadID).
		Update("hot_score", score)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *forumRepository) FindCategoryByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	var category entity.Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}
