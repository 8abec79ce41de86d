package services

import (
	"time"

	"jobboard_backend/internal/imageprocessor"
	"jobboard_backend/internal/notifications"
	"jobboard_backend/internal/repositories"
	"jobboard_backend/internal/storage"
)

// Dependencies are the shared pieces every service is built from.
type Dependencies struct {
	Broker     notifications.Broker
	Storage    storage.Storage
	Images     *imageprocessor.Processor
	Uploads    UploadPolicy
	RefreshTTL time.Duration
	PageSize   int
}

// ServiceContainer holds all application services.
type ServiceContainer struct {
	AuthService         AuthService
	UserService         UserService
	CompanyService      CompanyService
	JobService          JobService
	ApplicationService  ApplicationService
	NotificationService NotificationService
}

func NewServiceContainer(deps Dependencies) *ServiceContainer {
	if deps.Images == nil {
		deps.Images = imageprocessor.NewProcessor(0, 0)
	}

	userRepo := repositories.NewUserRepository()
	refreshTokenRepo := repositories.NewRefreshTokenRepository()
	companyRepo := repositories.NewCompanyRepository()
	jobRepo := repositories.NewJobRepository()
	applicationRepo := repositories.NewApplicationRepository()
	emailTaskRepo := repositories.NewEmailTaskRepository()

	notificationService := NewNotificationService(deps.Broker, emailTaskRepo, applicationRepo)

	return &ServiceContainer{
		AuthService:         NewAuthService(userRepo, refreshTokenRepo, deps.RefreshTTL),
		UserService:         NewUserService(userRepo, jobRepo, refreshTokenRepo, deps.Storage, deps.Uploads, deps.PageSize),
		CompanyService:      NewCompanyService(companyRepo, userRepo, jobRepo, applicationRepo, deps.Storage, deps.Images, deps.Uploads, deps.PageSize),
		JobService:          NewJobService(jobRepo, companyRepo, applicationRepo, deps.Storage),
		ApplicationService:  NewApplicationService(applicationRepo, jobRepo, notificationService, deps.Storage, deps.PageSize),
		NotificationService: notificationService,
	}
}
