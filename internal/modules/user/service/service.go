package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"anoa.com/mentorhub/internal/entity"
	"anoa.com/mentorhub/internal/modules/user/dto"
	"anoa.com/mentorhub/internal/modules/user/repository"
	"anoa.com/mentorhub/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
}

type authService struct {
	repo     repository.UserRepository
	secret   string
	tokenTTL time.Duration
}

func NewAuthService(repo repository.UserRepository) AuthService {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "change-me"
	}

	ttl := 24 * time.Hour
	if ttlStr := os.Getenv("JWT_TTL_MINUTES"); ttlStr != "" {
		if minutes, err := strconv.Atoi(ttlStr); err == nil {
			ttl = time.Duration(minutes) * time.Minute
		}
	}

	return &authService{
		repo:     repo,
		secret:   secret,
		tokenTTL: ttl,
	}
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(401, "invalid credentials", apperror.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperror.New(401, "invalid credentials", apperror.ErrUnauthorized)
	}

	return s.buildAuthResponse(user)
}

func (s *authService) buildAuthResponse(user *entity.User) (*dto.AuthResponse, error) {
	token, expiresAt, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt,
		User:        user,
		Role:        &user.Role,
		Profile:     user.Profile,
	}, nil
}

func (s *authService) generateToken(user *entity.User) (string, int64, error) {
	expiresAt := time.Now().Add(s.tokenTTL)

	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", 0, err
	}

	return signed, expiresAt.Unix(), nil
}

type AdminService interface {
	CreateUser(ctx context.Context, req dto.CreateUserRequest) (*entity.User, error)
	GetAllUsers(ctx context.Context, page, limit int) ([]entity.User, int64, error)
}

type adminService struct {
	repo repository.UserRepository
}

func NewAdminService(repo repository.UserRepository) AdminService {
	return &adminService{repo: repo}
}

func (s *adminService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*entity.User, error) {
	role, err := s.repo.FindRoleByName(ctx, req.Role)
	if err != nil {
		return nil, apperror.New(400, fmt.Sprintf("role %q not found", req.Role), apperror.ErrBadRequest)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hashed),
		RoleID:       &role.ID,
		Role:         *role,
	}
	profile := &entity.Profile{
		FullName:  req.FullName,
		IsMentor:  req.IsMentor,
		Expertise: req.Expertise,
	}

	if err := s.repo.Create(ctx, user, profile); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.New(409, "username or email already taken", apperror.ErrConflict)
		}
		return nil, err
	}

	user.PasswordHash = ""
	user.Profile = profile
	return user, nil
}

func (s *adminService) GetAllUsers(ctx context.Context, page, limit int) ([]entity.User, int64, error) {
	offset := (page - 1) * limit
	return s.repo.FindAll(ctx, offset, limit)
}
