package dto

type FeedNextResponse struct {
	Empty     bool                 `json:"empty"`
	Candidate *ProfileCardResponse `json:"candidate,omitempty"`
}
