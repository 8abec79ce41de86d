package dto

type TokenObtainRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type TokenRefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type TokenVerifyRequest struct {
	Token string `json:"token" validate:"required"`
}

type LogoutRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type TokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}
