package handler

import (
	"net/http"
	"strconv"

	points "anoa.com/mentorhub/internal/modules/points/service"
	pkgDto "anoa.com/mentorhub/pkg/dto"
	"anoa.com/mentorhub/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PointsHandler struct {
	service points.PointsService
}

func NewPointsHandler(service points.PointsService) *PointsHandler {
	return &PointsHandler{service: service}
}

func (h *PointsHandler) GetMyBalance(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	balance, err := h.service.GetBalance(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": balance.UserID, "points": balance.Points})
}

func (h *PointsHandler) GetMyHistory(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	page := 1
	limit := 20
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}

	entries, total, err := h.service.GetHistory(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": entries,
		"meta": pkgDto.NewPaginationMeta(page, limit, total),
	})
}

// RecomputeBalance is an admin repair endpoint: rebuilds the stored balance
// from the audit log.
func (h *PointsHandler) RecomputeBalance(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	balance, err := h.service.RecomputeBalance(c.Request.Context(), targetID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": balance.UserID, "points": balance.Points})
}

func (h *PointsHandler) GetLeaderboard(c *gin.Context) {
	limit := 10
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= 50 {
		limit = l
	}

	entries, err := h.service.GetLeaderboard(c.Request.Context(), limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}
