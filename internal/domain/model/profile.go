package model

import "time"

// Profile is the directory snapshot of a user as other users see it.
// The full account record (credentials, birth date) lives in the users
// table and never leaves the auth/profiles services.
type Profile struct {
	UserID      int64  `json:"user_id"`
	DisplayName string `json:"display_name"`
	AvatarKey   string `json:"avatar_key"`
	City        string `json:"city"`
	About       string `json:"about"`
	Profession  string `json:"profession"`
}

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	TgID         string    `json:"tg_id"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	BirthDate    time.Time `json:"birth_date"`
	City         string    `json:"city"`
	About        string    `json:"about"`
	Profession   string    `json:"profession"`
	AvatarKey    string    `json:"avatar_key"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u User) Profile() Profile {
	return Profile{
		UserID:      u.ID,
		DisplayName: u.DisplayName,
		AvatarKey:   u.AvatarKey,
		City:        u.City,
		About:       u.About,
		Profession:  u.Profession,
	}
}
