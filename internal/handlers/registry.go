package handlers

// AppHandlers holds every HTTP handler of the application.
type AppHandlers struct {
	AuthHandler        *AuthHandler
	UserHandler        *UserHandler
	CompanyHandler     *CompanyHandler
	JobHandler         *JobHandler
	ApplicationHandler *ApplicationHandler
	HealthHandler      *HealthHandler
}
