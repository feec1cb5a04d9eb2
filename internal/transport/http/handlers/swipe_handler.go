package handlers

import (
	"errors"
	"net/http"

	"github.com/skipdm/edworking/internal/domain/enums"
	authsvc "github.com/skipdm/edworking/internal/services/auth"
	swipesvc "github.com/skipdm/edworking/internal/services/swipes"
	"github.com/skipdm/edworking/internal/transport/http/dto"
	httperrors "github.com/skipdm/edworking/internal/transport/http/errors"
)

type SwipeHandler struct {
	service *swipesvc.Service
}

func NewSwipeHandler(service *swipesvc.Service) *SwipeHandler {
	return &SwipeHandler{service: service}
}

func (h *SwipeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	var req dto.SwipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	action, err := enums.ParseSwipeAction(req.Action)
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "action must be LIKE or DISLIKE")
		return
	}

	result, err := h.service.Record(r.Context(), identity.UserID, req.TargetID, action)
	if err != nil {
		switch {
		case errors.Is(err, swipesvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid swipe request")
		case errors.Is(err, swipesvc.ErrTargetNotFound):
			writeNotFound(w, "TARGET_NOT_FOUND", "swipe target does not exist")
		default:
			if retryAfter, ok := swipesvc.IsTooFast(err); ok {
				httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
					Code:          "TOO_FAST",
					Message:       "too many swipes, slow down",
					RetryAfterSec: retryAfter,
				})
				return
			}
			// The write failed and the candidate went back to the deck;
			// the client may retry the same action.
			httperrors.Write(w, http.StatusServiceUnavailable, httperrors.APIError{
				Code:    "TEMP_UNAVAILABLE",
				Message: "failed to record swipe, retry",
			})
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SwipeResponse{
		OK:           true,
		Updated:      result.Updated,
		MatchCreated: result.MatchCreated,
	})
}
