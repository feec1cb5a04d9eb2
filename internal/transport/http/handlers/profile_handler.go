package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/skipdm/edworking/internal/services/auth"
	profilessvc "github.com/skipdm/edworking/internal/services/profiles"
	"github.com/skipdm/edworking/internal/transport/http/dto"
	httperrors "github.com/skipdm/edworking/internal/transport/http/errors"
)

const maxAvatarUpload = 8 << 20

type ProfileHandler struct {
	service *profilessvc.Service
}

func NewProfileHandler(service *profilessvc.Service) *ProfileHandler {
	return &ProfileHandler{service: service}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	account, err := h.service.Get(r.Context(), identity.UserID)
	if err != nil {
		handleProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, mapAccount(account.User, account.AvatarURL))
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	var req dto.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	account, err := h.service.Update(r.Context(), identity.UserID, profilessvc.UpdateInput{
		DisplayName: req.DisplayName,
		City:        req.City,
		About:       req.About,
		Profession:  req.Profession,
	})
	if err != nil {
		handleProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, mapAccount(account.User, account.AvatarURL))
}

func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	if err := r.ParseMultipartForm(maxAvatarUpload); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "multipart form is required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	account, err := h.service.UploadAvatar(
		r.Context(),
		identity.UserID,
		header.Filename,
		header.Header.Get("Content-Type"),
		file,
		header.Size,
	)
	if err != nil {
		handleProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, mapAccount(account.User, account.AvatarURL))
}

// Directory serves the swipeable user list: everyone except the caller.
func (h *ProfileHandler) Directory(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	views, err := h.service.Directory(r.Context(), identity.UserID)
	if err != nil {
		handleProfileError(w, err)
		return
	}

	cards := make([]dto.ProfileCardResponse, 0, len(views))
	for _, v := range views {
		cards = append(cards, mapProfileCard(v.Profile.UserID, v.DisplayName, v.City, v.About, v.Profession, v.AvatarURL))
	}

	httperrors.Write(w, http.StatusOK, dto.DirectoryResponse{Users: cards})
}

func handleProfileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, profilessvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "request validation failed")
	case errors.Is(err, profilessvc.ErrNotFound):
		writeNotFound(w, "PROFILE_NOT_FOUND", "profile not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

func mapProfileCard(userID int64, displayName, city, about, profession, avatarURL string) dto.ProfileCardResponse {
	return dto.ProfileCardResponse{
		UserID:      userID,
		DisplayName: displayName,
		City:        city,
		About:       about,
		Profession:  profession,
		AvatarURL:   avatarURL,
	}
}
