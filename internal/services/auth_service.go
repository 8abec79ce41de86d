package services

import (
	"errors"
	"strings"
	"time"

	"jobboard_backend/internal/auth"
	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/repositories"
	"jobboard_backend/internal/services/dto"
	"jobboard_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type AuthService interface {
	Obtain(db *gorm.DB, req *dto.TokenObtainRequest) (*dto.TokenPairResponse, error)
	Refresh(db *gorm.DB, req *dto.TokenRefreshRequest) (*dto.TokenPairResponse, error)
	Verify(req *dto.TokenVerifyRequest) error
	Logout(db *gorm.DB, req *dto.LogoutRequest) error
	// Authenticate resolves an access token to an active user.
	Authenticate(db *gorm.DB, accessToken string) (*models.User, error)
	RevokeAll(db *gorm.DB, userID string) error
}

type authService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	refreshTTL       time.Duration
	now              func() time.Time
}

func NewAuthService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	refreshTTL time.Duration,
) AuthService {
	if refreshTTL <= 0 {
		refreshTTL = 24 * time.Hour
	}
	return &authService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		refreshTTL:       refreshTTL,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *authService) Obtain(db *gorm.DB, req *dto.TokenObtainRequest) (*dto.TokenPairResponse, error) {
	user, err := s.userRepo.FindByEmail(db, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !user.IsActive || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	pair, err := s.issuePair(tx, user)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateLastLogin(tx, user.ID, s.now()); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(contextOf(db), "user logged in", "user_id", user.ID)
	return pair, nil
}

// Refresh rotates the refresh token: the presented token is revoked and a
// new pair is issued.
func (s *authService) Refresh(db *gorm.DB, req *dto.TokenRefreshRequest) (*dto.TokenPairResponse, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	stored, err := s.refreshTokenRepo.FindByToken(tx, req.Refresh)
	if err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.InternalError(err)
	}

	if err := s.refreshTokenRepo.DeleteByToken(tx, req.Refresh); err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.InternalError(err)
	}

	if s.now().After(stored.ExpiresAt) {
		// The expired token is still removed.
		if err := tx.Commit().Error; err != nil {
			return nil, apperrors.InternalError(err)
		}
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(tx, stored.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.InternalError(err)
	}
	if !user.IsActive {
		return nil, apperrors.ErrUserInactive
	}

	pair, err := s.issuePair(tx, user)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	return pair, nil
}

func (s *authService) Verify(req *dto.TokenVerifyRequest) error {
	if _, err := auth.ParseToken(req.Token); err != nil {
		return apperrors.ErrInvalidToken
	}
	return nil
}

func (s *authService) Logout(db *gorm.DB, req *dto.LogoutRequest) error {
	if err := s.refreshTokenRepo.DeleteByToken(db, req.Refresh); err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return apperrors.ErrInvalidToken
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *authService) Authenticate(db *gorm.DB, accessToken string) (*models.User, error) {
	claims, err := auth.ParseToken(accessToken)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(db, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.InternalError(err)
	}
	if !user.IsActive {
		return nil, apperrors.ErrUserInactive
	}
	return user, nil
}

func (s *authService) RevokeAll(db *gorm.DB, userID string) error {
	if err := s.refreshTokenRepo.DeleteByUserID(db, userID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *authService) issuePair(tx *gorm.DB, user *models.User) (*dto.TokenPairResponse, error) {
	access, err := auth.GenerateToken(user.ID, string(user.UserType), user.IsStaff)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	refresh, err := auth.NewRefreshToken()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.refreshTokenRepo.Create(tx, &models.RefreshToken{
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: s.now().Add(s.refreshTTL),
	}); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.TokenPairResponse{Access: access, Refresh: refresh}, nil
}
