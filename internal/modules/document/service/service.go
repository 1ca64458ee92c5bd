package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"anoa.com/mentorhub/internal/entity"
	"anoa.com/mentorhub/internal/modules/document/repository"
	"anoa.com/mentorhub/pkg/apperror"
	"anoa.com/mentorhub/pkg/storage"
	"github.com/google/uuid"
)

const maxDocumentSize = 5 << 20 // 5 MB

var allowedDocExts = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

type DocumentService interface {
	Upload(ctx context.Context, userID uuid.UUID, docType string, file *multipart.FileHeader) (*entity.Document, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Document, error)
}

type documentService struct {
	repo        repository.DocumentRepository
	fileStorage storage.FileStorage
}

func NewDocumentService(repo repository.DocumentRepository, fileStorage storage.FileStorage) DocumentService {
	return &documentService{
		repo:        repo,
		fileStorage: fileStorage,
	}
}

func (s *documentService) Upload(ctx context.Context, userID uuid.UUID, docType string, file *multipart.FileHeader) (*entity.Document, error) {
	if docType != entity.DocTypeCV {
		return nil, apperror.New(400, fmt.Sprintf("unsupported document type %q", docType), apperror.ErrBadRequest)
	}

	if file.Size > maxDocumentSize {
		return nil, apperror.New(400, "file exceeds 5MB limit", apperror.ErrBadRequest)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedDocExts[ext] {
		return nil, apperror.New(400, "only pdf, doc and docx files are accepted", apperror.ErrBadRequest)
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	url, err := s.fileStorage.UploadFile(ctx, src, docType, file.Filename)
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	doc := &entity.Document{
		UserID:   userID,
		DocType:  docType,
		FileName: file.Filename,
		FileURL:  url,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, err
	}

	return doc, nil
}

func (s *documentService) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Document, error) {
	return s.repo.FindByUser(ctx, userID)
}
