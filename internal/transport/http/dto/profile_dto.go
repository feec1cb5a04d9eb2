package dto

type AccountResponse struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	TgID        string `json:"tg_id"`
	DisplayName string `json:"display_name"`
	BirthDate   string `json:"birth_date"`
	Age         int    `json:"age"`
	City        string `json:"city"`
	About       string `json:"about"`
	Profession  string `json:"profession"`
	AvatarURL   string `json:"avatar_url"`
}

type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	City        *string `json:"city,omitempty"`
	About       *string `json:"about,omitempty"`
	Profession  *string `json:"profession,omitempty"`
}

// ProfileCardResponse is the public directory card, what other users see.
type ProfileCardResponse struct {
	UserID      int64  `json:"user_id"`
	DisplayName string `json:"display_name"`
	City        string `json:"city"`
	About       string `json:"about"`
	Profession  string `json:"profession"`
	AvatarURL   string `json:"avatar_url"`
}

type DirectoryResponse struct {
	Users []ProfileCardResponse `json:"users"`
}
