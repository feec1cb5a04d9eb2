package dto

import "time"

type CreatePostRequest struct {
	Kind string `json:"kind"`
	Body string `json:"body"`
}

type PostResponse struct {
	ID           int64     `json:"id"`
	AuthorUserID int64     `json:"author_user_id"`
	AuthorName   string    `json:"author_name,omitempty"`
	Kind         string    `json:"kind"`
	Body         string    `json:"body"`
	CreatedAt    time.Time `json:"created_at"`
}

type PostsFeedResponse struct {
	JobPosts     []PostResponse `json:"job_posts"`
	RegularPosts []PostResponse `json:"regular_posts"`
}

type AuthorPostsResponse struct {
	Posts []PostResponse `json:"posts"`
}
