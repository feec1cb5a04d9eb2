package dto

type SwipeRequest struct {
	TargetID int64  `json:"target_id"`
	Action   string `json:"action"`
}

type SwipeResponse struct {
	OK           bool `json:"ok"`
	Updated      bool `json:"updated"`
	MatchCreated bool `json:"match_created"`
}
