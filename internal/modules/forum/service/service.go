package service

import (
	"context"
	"errors"
	"log"
	"time"

	"anoa.com/mentorhub/internal/entity"
	forumDto "anoa.com/mentorhub/internal/modules/forum/dto"
	forumRepo "anoa.com/mentorhub/internal/modules/forum/repository"
	search "anoa.com/mentorhub/internal/modules/search/service"
	userRepo "anoa.com/mentorhub/internal/modules/user/repository"
	"anoa.com/mentorhub/pkg/apperror"
	pkgDto "anoa.com/mentorhub/pkg/dto"
	"anoa.com/mentorhub/pkg/ratelimiter"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const threadCreateAction = "create_thread"

type ForumService interface {
	CreateThread(ctx context.Context, userID uuid.UUID, req forumDto.CreateThreadRequest) (*forumDto.ThreadResponse, error)
	GetAllThreads(ctx context.Context, filter forumDto.ThreadFilter) (*forumDto.PaginatedThreadResponse, error)
	GetThread(ctx context.Context, threadID uuid.UUID) (*forumDto.ThreadResponse, error)
	DeleteThread(ctx context.Context, userID, threadID uuid.UUID) error
	CreateReply(ctx context.Context, userID, threadID uuid.UUID, req forumDto.CreateReplyRequest) (*entity.ForumReply, error)
	GetReplies(ctx context.Context, threadID uuid.UUID, page, limit int) ([]entity.ForumReply, int64, error)
	DeleteReply(ctx context.Context, userID, replyID uuid.UUID) error

	VoteOn(ctx context.Context, userID uuid.UUID, votableType string, votableID uuid.UUID, voteType string) (*forumDto.VoteResult, error)
	GetVote(ctx context.Context, userID *uuid.UUID, votableType string, votableID uuid.UUID) (*forumDto.VoteResult, error)
	RecordView(ctx context.Context, threadID uuid.UUID, userID *uuid.UUID, remoteAddr string) (*forumDto.ViewResult, error)
	CalculateHotScore(ctx context.Context, threadID uuid.UUID) (float64, error)
}

type forumService struct {
	repo          forumRepo.ForumRepository
	userRepo      userRepo.UserRepository
	redisClient   *redis.Client
	searchService search.SearchService
	sanitizer     *bluemonday.Policy
	rateLimit     time.Duration
	now           func() time.Time
}

func NewForumService(repo forumRepo.ForumRepository, users userRepo.UserRepository, redisClient *redis.Client, searchService search.SearchService, rateLimit time.Duration) ForumService {
	return &forumService{
		repo:          repo,
		userRepo:      users,
		redisClient:   redisClient,
		searchService: searchService,
		sanitizer:     bluemonday.UGCPolicy(),
		rateLimit:     rateLimit,
		now:           time.Now,
	}
}

func (s *forumService) CreateThread(ctx context.Context, userID uuid.UUID, req forumDto.CreateThreadRequest) (*forumDto.ThreadResponse, error) {
	allowed, err := ratelimiter.CheckAndSet(ctx, s.redisClient, userID, threadCreateAction, s.rateLimit)
	if err != nil {
		log.Printf("Rate limit check failed, allowing request: %v", err)
	} else if !allowed {
		ttl, _ := ratelimiter.GetTTL(ctx, s.redisClient, userID, threadCreateAction)
		return nil, &ratelimiter.RateLimitError{
			Message:    "you are posting too fast, try again later",
			RetryAfter: ttl,
		}
	}

	var categoryID *uuid.UUID
	if req.CategoryID != "" {
		id, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return nil, apperror.New(400, "invalid category id", apperror.ErrBadRequest)
		}
		if _, err := s.repo.FindCategoryByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.New(400, "category not found", apperror.ErrBadRequest)
			}
			return nil, err
		}
		categoryID = &id
	}

	now := s.now()
	thread := &entity.ForumThread{
		CategoryID:     categoryID,
		UserID:         userID,
		Title:          s.sanitizer.Sanitize(req.Title),
		Content:        s.sanitizer.Sanitize(req.Content),
		Status:         entity.ThreadOpen,
		LastActivityAt: now,
	}

	if err := s.repo.CreateThread(ctx, thread); err != nil {
		return nil, err
	}

	if s.searchService != nil {
		go func() {
			if err := s.searchService.IndexThread(thread); err != nil {
				log.Printf("Failed to index thread %s: %v", thread.ID, err)
			}
		}()
	}

	created, err := s.repo.FindThreadByID(ctx, thread.ID)
	if err != nil {
		return nil, err
	}
	resp := toThreadResponse(created)
	return &resp, nil
}

func (s *forumService) GetAllThreads(ctx context.Context, filter forumDto.ThreadFilter) (*forumDto.PaginatedThreadResponse, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 50 {
		limit = 10
	}

	var categoryID *uuid.UUID
	if filter.CategoryID != "" {
		id, err := uuid.Parse(filter.CategoryID)
		if err != nil {
			return nil, apperror.New(400, "invalid category id", apperror.ErrBadRequest)
		}
		categoryID = &id
	}

	threads, total, err := s.repo.FindAllThreads(ctx, categoryID, filter.Status, filter.SortBy, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	data := make([]forumDto.ThreadResponse, 0, len(threads))
	for i := range threads {
		data = append(data, toThreadResponse(&threads[i]))
	}

	return &forumDto.PaginatedThreadResponse{
		Data: data,
		Meta: pkgDto.NewPaginationMeta(page, limit, total),
	}, nil
}

func (s *forumService) GetThread(ctx context.Context, threadID uuid.UUID) (*forumDto.ThreadResponse, error) {
	thread, err := s.findThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	resp := toThreadResponse(thread)
	return &resp, nil
}

func (s *forumService) CreateReply(ctx context.Context, userID, threadID uuid.UUID, req forumDto.CreateReplyRequest) (*entity.ForumReply, error) {
	thread, err := s.findThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if thread.Status == entity.ThreadClosed {
		return nil, apperror.New(400, "thread is closed", apperror.ErrBadRequest)
	}

	reply := &entity.ForumReply{
		ThreadID: threadID,
		UserID:   userID,
		Content:  s.sanitizer.Sanitize(req.Content),
	}

	if err := s.repo.CreateReply(ctx, reply); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(404, "thread not found", apperror.ErrNotFound)
		}
		return nil, err
	}

	if s.searchService != nil {
		go func() {
			if err := s.searchService.IndexReply(reply); err != nil {
				log.Printf("Failed to index reply %s: %v", reply.ID, err)
			}
		}()
	}

	return reply, nil
}

// DeleteThread removes a thread with its replies, votes and view records.
// Only the author or an admin may delete.
func (s *forumService) DeleteThread(ctx context.Context, userID, threadID uuid.UUID) error {
	thread, err := s.findThread(ctx, threadID)
	if err != nil {
		return err
	}

	if thread.UserID != userID && !s.isAdmin(ctx, userID) {
		return apperror.New(403, "you can only delete your own threads", apperror.ErrForbidden)
	}

	if err := s.repo.DeleteThread(ctx, threadID); err != nil {
		return err
	}

	if s.searchService != nil {
		go func() {
			if err := s.searchService.DeleteThread(threadID.String()); err != nil {
				log.Printf("Failed to remove thread %s from search index: %v", threadID, err)
			}
		}()
	}

	return nil
}

func (s *forumService) DeleteReply(ctx context.Context, userID, replyID uuid.UUID) error {
	reply, err := s.repo.FindReplyByID(ctx, replyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.New(404, "reply not found", apperror.ErrNotFound)
		}
		return err
	}

	if reply.UserID != userID && !s.isAdmin(ctx, userID) {
		return apperror.New(403, "you can only delete your own replies", apperror.ErrForbidden)
	}

	if err := s.repo.DeleteReply(ctx, replyID); err != nil {
		return err
	}

	if s.searchService != nil {
		go func() {
			if err := s.searchService.DeleteReply(replyID.String()); err != nil {
				log.Printf("Failed to remove reply %s from search index: %v", replyID, err)
			}
		}()
	}

	return nil
}

func (s *forumService) isAdmin(ctx context.Context, userID uuid.UUID) bool {
	if s.userRepo == nil {
		return false
	}
	user, err := s.userRepo.FindByID(ctx, userID.String())
	if err != nil {
		return false
	}
	return user.Role.Name == entity.RoleAdmin
}

func (s *forumService) GetReplies(ctx context.Context, threadID uuid.UUID, page, limit int) ([]entity.ForumReply, int64, error) {
	if _, err := s.findThread(ctx, threadID); err != nil {
		return nil, 0, err
	}
	return s.repo.FindRepliesByThread(ctx, threadID, (page-1)*limit, limit)
}

func (s *forumService) findThread(ctx context.Context, threadID uuid.UUID) (*entity.ForumThread, error) {
	thread, err := s.repo.FindThreadByID(ctx, threadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(404, "thread not found", apperror.ErrNotFound)
		}
		return nil, err
	}
	return thread, nil
}

func toThreadResponse(t *entity.ForumThread) forumDto.ThreadResponse {
	resp := forumDto.ThreadResponse{
		ID:         t.ID,
		CategoryID: t.CategoryID,
		Author: pkgDto.AuthorResponse{
			Username:  t.User.Username,
			AvatarURL: t.User.AvatarURL,
		},
		Title:          t.Title,
		Content:        t.Content,
		Status:         string(t.Status),
		IsPinned:       t.IsPinned,
		ViewCount:      t.ViewCount,
		ReplyCount:     t.ReplyCount,
		UpvoteCount:    t.UpvoteCount,
		DownvoteCount:  t.DownvoteCount,
		HotScore:       t.HotScore,
		LastActivityAt: t.LastActivityAt,
		CreatedAt:      t.CreatedAt,
	}
	if t.CategoryID != nil {
		resp.CategoryName = t.Category.Name
	}
	return resp
}
