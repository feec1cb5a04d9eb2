package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/skipdm/edworking/internal/services/auth"
	feedsvc "github.com/skipdm/edworking/internal/services/feed"
	"github.com/skipdm/edworking/internal/transport/http/dto"
	httperrors "github.com/skipdm/edworking/internal/transport/http/errors"
)

type FeedHandler struct {
	service *feedsvc.Service
}

func NewFeedHandler(service *feedsvc.Service) *FeedHandler {
	return &FeedHandler{service: service}
}

// Next returns the viewer's current candidate. An exhausted deck is a
// regular 200 with an explicit empty flag, never an error status.
func (h *FeedHandler) Next(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "FEED_SERVICE_UNAVAILABLE", "feed service is unavailable")
		return
	}

	candidate, found, err := h.service.Next(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, feedsvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "request validation failed")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load next candidate")
		return
	}

	if !found {
		httperrors.Write(w, http.StatusOK, dto.FeedNextResponse{Empty: true})
		return
	}

	card := mapProfileCard(candidate.UserID, candidate.DisplayName, candidate.City, candidate.About, candidate.Profession, candidate.AvatarURL)
	httperrors.Write(w, http.StatusOK, dto.FeedNextResponse{Candidate: &card})
}
