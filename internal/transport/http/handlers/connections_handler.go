package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/skipdm/edworking/internal/services/auth"
	connsvc "github.com/skipdm/edworking/internal/services/connections"
	"github.com/skipdm/edworking/internal/transport/http/dto"
	httperrors "github.com/skipdm/edworking/internal/transport/http/errors"
)

type ConnectionsHandler struct {
	service *connsvc.Service
}

func NewConnectionsHandler(service *connsvc.Service) *ConnectionsHandler {
	return &ConnectionsHandler{service: service}
}

func (h *ConnectionsHandler) Chats(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CONNECTIONS_SERVICE_UNAVAILABLE", "connections service is unavailable")
		return
	}

	entries, err := h.service.ChatList(r.Context(), identity.UserID)
	if err != nil {
		handleConnectionsError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ChatListResponse{Chats: mapEntries(entries)})
}

func (h *ConnectionsHandler) Admirers(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CONNECTIONS_SERVICE_UNAVAILABLE", "connections service is unavailable")
		return
	}

	entries, err := h.service.Admirers(r.Context(), identity.UserID)
	if err != nil {
		handleConnectionsError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.AdmirersResponse{Admirers: mapEntries(entries)})
}

func handleConnectionsError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, connsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "request validation failed")
	case errors.Is(err, connsvc.ErrNotFound):
		writeNotFound(w, "PROFILE_NOT_FOUND", "viewer profile not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

func mapEntries(entries []connsvc.Entry) []dto.ProfileCardResponse {
	cards := make([]dto.ProfileCardResponse, 0, len(entries))
	for _, e := range entries {
		cards = append(cards, mapProfileCard(e.UserID, e.DisplayName, e.City, e.About, e.Profession, e.AvatarURL))
	}
	return cards
}
