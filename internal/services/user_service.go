package services

import (
	"context"
	"errors"
	"strings"

	"jobboard_backend/internal/auth"
	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/repositories"
	"jobboard_backend/internal/services/dto"
	"jobboard_backend/internal/storage"
	"jobboard_backend/pkg/apperrors"

	"gorm.io/gorm"
)

const msgEmailTaken = "A user with this email already exists."

type UserService interface {
	Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	List(db *gorm.DB, actor *auth.Actor, filter dto.UserListFilter) (*dto.Page[dto.UserResponse], error)
	Get(db *gorm.DB, actor *auth.Actor, userID string) (*dto.UserResponse, error)
	Update(db *gorm.DB, actor *auth.Actor, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	// Delete deactivates the account, its jobs and its refresh tokens.
	Delete(db *gorm.DB, actor *auth.Actor, userID string) error
	UploadResume(ctx context.Context, db *gorm.DB, actor *auth.Actor, file *FileUpload) (*dto.UserResponse, error)
	EnsureAdmin(db *gorm.DB, email, password string) error
}

type userService struct {
	userRepo         repositories.UserRepository
	jobRepo          repositories.JobRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	storage          storage.Storage
	uploads          UploadPolicy
	pageSize         int
}

func NewUserService(
	userRepo repositories.UserRepository,
	jobRepo repositories.JobRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	store storage.Storage,
	uploads UploadPolicy,
	pageSize int,
) UserService {
	return &userService{
		userRepo:         userRepo,
		jobRepo:          jobRepo,
		refreshTokenRepo: refreshTokenRepo,
		storage:          store,
		uploads:          uploads,
		pageSize:         pageSize,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	email := normalizeEmail(req.Email)

	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.FieldError("password", err.Error())
	}

	exists, err := s.userRepo.EmailExists(db, email)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if exists {
		return nil, apperrors.FieldError("email", msgEmailTaken)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		UserType:     req.UserType,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        strings.TrimSpace(req.Phone),
		IsActive:     true,
	}

	if err := s.userRepo.Create(db, user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.FieldError("email", msgEmailTaken)
		}
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(contextOf(db), "user registered", "user_id", user.ID, "user_type", user.UserType)
	return dto.NewRegisterResponse(user), nil
}

func (s *userService) List(db *gorm.DB, actor *auth.Actor, filter dto.UserListFilter) (*dto.Page[dto.UserResponse], error) {
	page := pageOf(filter.Page, s.pageSize)
	repoFilter := repositories.UserFilter{
		IncludeInactive: filter.IncludeInactive && auth.IsAdmin(actor),
	}

	users, total, err := s.userRepo.List(db, repoFilter, page)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	urls := fileURLs(contextOf(db), s.storage)
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, *dto.NewUserResponse(&users[i], urls))
	}
	return newPage(items, total, page), nil
}

// load applies the visibility rules shared by the per-user endpoints:
// inactive users exist only for admins, other users are forbidden.
func (s *userService) load(db *gorm.DB, actor *auth.Actor, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	if !user.IsActive && !auth.IsAdmin(actor) {
		return nil, apperrors.ErrNotFound(repositories.ErrUserNotFound)
	}
	if !auth.IsSelfOrAdmin(actor, user.ID) {
		return nil, apperrors.ErrInsufficientPermissions
	}
	return user, nil
}

func (s *userService) Get(db *gorm.DB, actor *auth.Actor, userID string) (*dto.UserResponse, error) {
	user, err := s.load(db, actor, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponse(user, fileURLs(contextOf(db), s.storage)), nil
}

func (s *userService) Update(db *gorm.DB, actor *auth.Actor, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.load(db, actor, userID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.FirstName != nil {
		fields["first_name"] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		fields["last_name"] = strings.TrimSpace(*req.LastName)
	}
	if req.Phone != nil {
		fields["phone"] = strings.TrimSpace(*req.Phone)
	}

	if len(fields) > 0 {
		if err := s.userRepo.UpdateFields(db, user.ID, fields); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}

	return s.Get(db, actor, user.ID)
}

func (s *userService) Delete(db *gorm.DB, actor *auth.Actor, userID string) error {
	user, err := s.load(db, actor, userID)
	if err != nil {
		return err
	}

	tx := db.Begin()
	if tx.Error != nil {
		return apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if err := s.userRepo.Deactivate(tx, user.ID); err != nil {
		return apperrors.InternalError(err)
	}

	deactivated, err := s.jobRepo.DeactivateByPoster(tx, user.ID)
	if err != nil {
		return apperrors.InternalError(err)
	}

	if err := s.refreshTokenRepo.DeleteByUserID(tx, user.ID); err != nil {
		return apperrors.InternalError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(contextOf(db), "user deactivated",
		"user_id", user.ID,
		"by", actor.ID,
		"jobs_deactivated", deactivated,
	)
	return nil
}

func (s *userService) UploadResume(ctx context.Context, db *gorm.DB, actor *auth.Actor, file *FileUpload) (*dto.UserResponse, error) {
	user, err := s.load(db, actor, actor.ID)
	if err != nil {
		return nil, err
	}

	contentType, err := s.uploads.sniff(file, s.uploads.ResumeTypes)
	if err != nil {
		return nil, err
	}

	key := storage.NewKey("resumes", file.Filename)
	if err := s.storage.Save(ctx, key, file.Reader, contentType); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.userRepo.UpdateFields(db, user.ID, map[string]interface{}{"resume": key}); err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			logger.CtxWarn(ctx, "failed to remove orphaned resume", "key", key, "error", delErr)
		}
		return nil, apperrors.InternalError(err)
	}

	if user.Resume != nil && *user.Resume != "" {
		if err := s.storage.Delete(ctx, *user.Resume); err != nil {
			logger.CtxWarn(ctx, "failed to remove previous resume", "key", *user.Resume, "error", err)
		}
	}

	user.Resume = &key
	return dto.NewUserResponse(user, fileURLs(ctx, s.storage)), nil
}

// EnsureAdmin creates the bootstrap staff account, or promotes an
// existing account with that email. Running it again is a no-op.
func (s *userService) EnsureAdmin(db *gorm.DB, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}

	existing, err := s.userRepo.FindByEmail(db, email)
	if err == nil {
		if existing.IsStaff && existing.IsActive {
			return nil
		}
		return s.userRepo.UpdateFields(db, existing.ID, map[string]interface{}{
			"is_staff":  true,
			"is_active": true,
		})
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:        email,
		PasswordHash: hash,
		UserType:     models.UserTypeEmployer,
		FirstName:    "Admin",
		IsActive:     true,
		IsStaff:      true,
	}
	if err := s.userRepo.Create(db, admin); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil
		}
		return err
	}

	logger.Info("admin account created", "email", email)
	return nil
}
