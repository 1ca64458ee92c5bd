package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"anoa.com/mentorhub/internal/entity"
	forumDto "anoa.com/mentorhub/internal/modules/forum/dto"
	forum "anoa.com/mentorhub/internal/modules/forum/service"
	"anoa.com/mentorhub/pkg/dto"
	"anoa.com/mentorhub/pkg/ratelimiter"
	"anoa.com/mentorhub/pkg/response"
	"anoa.com/mentorhub/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ForumHandler struct {
	service forum.ForumService
}

func NewForumHandler(service forum.ForumService) *ForumHandler {
	return &ForumHandler{service: service}
}

func (h *ForumHandler) CreateThread(c *gin.Context) {
	var req forumDto.CreateThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	thread, err := h.service.CreateThread(c.Request.Context(), userID, req)
	if err != nil {
		if rateLimitErr, ok := err.(*ratelimiter.RateLimitError); ok {
			c.Header("Retry-After", fmt.Sprintf("%.0f", rateLimitErr.RetryAfter.Seconds()))
			c.JSON(http.StatusTooManyRequests, gin.H{"error": rateLimitErr.Message})
			return
		}
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, thread)
}

func (h *ForumHandler) GetAllThreads(c *gin.Context) {
	var filter forumDto.ThreadFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	threads, err := h.service.GetAllThreads(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, threads)
}

func (h *ForumHandler) GetThread(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("thread_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid thread id"})
		return
	}

	thread, err := h.service.GetThread(c.Request.Context(), threadID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, thread)
}

func (h *ForumHandler) CreateReply(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("thread_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid thread id"})
		return
	}

	var req forumDto.CreateReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	reply, err := h.service.CreateReply(c.Request.Context(), userID, threadID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reply)
}

func (h *ForumHandler) DeleteThread(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("thread_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid thread id"})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteThread(c.Request.Context(), userID, threadID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "thread deleted successfully"})
}

func (h *ForumHandler) DeleteReply(c *gin.Context) {
	replyID, err := uuid.Parse(c.Param("reply_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reply id"})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteReply(c.Request.Context(), userID, replyID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "reply deleted successfully"})
}

func (h *ForumHandler) GetReplies(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("thread_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid thread id"})
		return
	}

	page, limit := paginationParams(c)

	replies, total, err := h.service.GetReplies(c.Request.Context(), threadID, page, limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": replies,
		"meta": dto.NewPaginationMeta(page, limit, total),
	})
}

func (h *ForumHandler) VoteOnThread(c *gin.Context) {
	h.voteOn(c, entity.VotableThread, "thread_id")
}

func (h *ForumHandler) VoteOnReply(c *gin.Context) {
	h.voteOn(c, entity.VotableReply, "reply_id")
}

func (h *ForumHandler) voteOn(c *gin.Context, votableType, param string) {
	votableID, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid %s", param)})
		return
	}

	var req forumDto.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	result, err := h.service.VoteOn(c.Request.Context(), userID, votableType, votableID, req.VoteType)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ForumHandler) GetThreadVote(c *gin.Context) {
	h.getVote(c, entity.VotableThread, "thread_id")
}

func (h *ForumHandler) GetReplyVote(c *gin.Context) {
	h.getVote(c, entity.VotableReply, "reply_id")
}

func (h *ForumHandler) getVote(c *gin.Context, votableType, param string) {
	votableID, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid %s", param)})
		return
	}

	userID := response.GetOptionalUserID(c)

	result, err := h.service.GetVote(c.Request.Context(), userID, votableType, votableID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ForumHandler) RecordView(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("thread_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid thread id"})
		return
	}

	userID := response.GetOptionalUserID(c)

	result, err := h.service.RecordView(c.Request.Context(), threadID, userID, c.ClientIP())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ForumHandler) CalculateHotScore(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("thread_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid thread id"})
		return
	}

	score, err := h.service.CalculateHotScore(c.Request.Context(), threadID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"hot_score": score})
}

func paginationParams(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 || limit > 50 {
		limit = 10
	}
	return page, limit
}
