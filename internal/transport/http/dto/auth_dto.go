package dto

type RegisterRequest struct {
	Email       string `json:"email"`
	TgID        string `json:"tg_id"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	BirthDate   string `json:"birth_date"`
	City        string `json:"city,omitempty"`
	About       string `json:"about,omitempty"`
	Profession  string `json:"profession,omitempty"`
}

type LoginRequest struct {
	TgID     string `json:"tg_id"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type AuthTokensResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresInSec int64           `json:"expires_in_sec"`
	User         AccountResponse `json:"user"`
}

type LogoutResponse struct {
	OK bool `json:"ok"`
}
