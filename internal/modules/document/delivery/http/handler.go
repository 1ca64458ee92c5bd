package handler

import (
	"net/http"

	document "anoa.com/mentorhub/internal/modules/document/service"
	"anoa.com/mentorhub/pkg/response"
	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	service document.DocumentService
}

func NewDocumentHandler(service document.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

func (h *DocumentHandler) UploadDocument(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	docType := c.PostForm("doc_type")
	if docType == "" {
		docType = "cv"
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	doc, err := h.service.Upload(c.Request.Context(), userID, docType, file)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, doc)
}

func (h *DocumentHandler) GetMyDocuments(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	docs, err := h.service.ListByUser(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": docs})
}
