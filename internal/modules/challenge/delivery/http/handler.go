package handler

import (
	"net/http"
	"strconv"

	challengeDto "anoa.com/mentorhub/internal/modules/challenge/dto"
	challenge "anoa.com/mentorhub/internal/modules/challenge/service"
	"anoa.com/mentorhub/pkg/response"
	"anoa.com/mentorhub/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ChallengeHandler struct {
	service challenge.ChallengeService
}

func NewChallengeHandler(service challenge.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{service: service}
}

// CreateChallenge is admin only, enforced by route middleware.
func (h *ChallengeHandler) CreateChallenge(c *gin.Context) {
	var req challengeDto.CreateChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	adminID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	created, err := h.service.Create(c.Request.Context(), adminID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *ChallengeHandler) GetAllChallenges(c *gin.Context) {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 || limit > 50 {
		limit = 10
	}

	challenges, err := h.service.GetAll(c.Request.Context(), page, limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, challenges)
}

func (h *ChallengeHandler) GetChallenge(c *gin.Context) {
	challengeID, err := uuid.Parse(c.Param("challenge_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid challenge id"})
		return
	}

	result, err := h.service.Get(c.Request.Context(), challengeID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ChallengeHandler) JoinChallenge(c *gin.Context) {
	challengeID, err := uuid.Parse(c.Param("challenge_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid challenge id"})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	result, err := h.service.Join(c.Request.Context(), challengeID, userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *ChallengeHandler) SubmitChallenge(c *gin.Context) {
	challengeID, err := uuid.Parse(c.Param("challenge_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid challenge id"})
		return
	}

	var req challengeDto.SubmitChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	result, err := h.service.Submit(c.Request.Context(), challengeID, userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ChallengeHandler) ApproveSubmission(c *gin.Context) {
	participationID, err := uuid.Parse(c.Param("participation_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid participation id"})
		return
	}

	result, err := h.service.Approve(c.Request.Context(), participationID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ChallengeHandler) RejectSubmission(c *gin.Context) {
	participationID, err := uuid.Parse(c.Param("participation_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid participation id"})
		return
	}

	result, err := h.service.Reject(c.Request.Context(), participationID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ChallengeHandler) GetMyParticipations(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	data, err := h.service.GetMyParticipations(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": data})
}
