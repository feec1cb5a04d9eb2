package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/skipdm/edworking/internal/domain/model"
	authsvc "github.com/skipdm/edworking/internal/services/auth"
	"github.com/skipdm/edworking/internal/services/profiles"
	"github.com/skipdm/edworking/internal/transport/http/dto"
	httperrors "github.com/skipdm/edworking/internal/transport/http/errors"
)

const birthDateLayout = "2006-01-02"

type AvatarSigner interface {
	AvatarURL(ctx context.Context, objectKey string) (string, error)
}

type AuthHandler struct {
	service *authsvc.Service
	avatars AvatarSigner
}

func NewAuthHandler(service *authsvc.Service, avatars AvatarSigner) *AuthHandler {
	return &AuthHandler{service: service, avatars: avatars}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	var req dto.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	birthDate, err := time.Parse(birthDateLayout, req.BirthDate)
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "birth_date must be YYYY-MM-DD")
		return
	}

	user, err := h.service.Register(r.Context(), authsvc.RegisterInput{
		Email:       req.Email,
		TgID:        req.TgID,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		BirthDate:   birthDate,
		City:        req.City,
		About:       req.About,
		Profession:  req.Profession,
	})
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrInvalidInput):
			writeBadRequest(w, "VALIDATION_ERROR", "request validation failed")
		case errors.Is(err, authsvc.ErrAccountExists):
			httperrors.Write(w, http.StatusConflict, httperrors.APIError{
				Code:    "ACCOUNT_EXISTS",
				Message: "an account with this tg_id or email already exists",
			})
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to register")
		}
		return
	}

	httperrors.Write(w, http.StatusCreated, h.mapAccount(r.Context(), user))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	res, err := h.service.Login(r.Context(), req.TgID, req.Password)
	if err != nil {
		handleAuthError(w, err)
		return
	}

	h.writeTokens(w, r, res)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	var req dto.RefreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	res, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		handleAuthError(w, err)
		return
	}

	h.writeTokens(w, r, res)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	if err := h.service.Logout(r.Context(), identity.SID); err != nil {
		handleAuthError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.LogoutResponse{OK: true})
}

func (h *AuthHandler) writeTokens(w http.ResponseWriter, r *http.Request, res authsvc.AuthResult) {
	httperrors.Write(w, http.StatusOK, dto.AuthTokensResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresInSec: maxInt64(0, int64(time.Until(res.AccessExpires).Seconds())),
		User:         h.mapAccount(r.Context(), res.User),
	})
}

func (h *AuthHandler) mapAccount(ctx context.Context, user model.User) dto.AccountResponse {
	avatarURL := ""
	if h.avatars != nil {
		if url, err := h.avatars.AvatarURL(ctx, user.AvatarKey); err == nil {
			avatarURL = url
		}
	}
	return mapAccount(user, avatarURL)
}

func handleAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authsvc.ErrInvalidInput):
		writeBadRequest(w, "INVALID_REQUEST", "request validation failed")
	case errors.Is(err, authsvc.ErrUnauthorized):
		writeUnauthorized(w, "UNAUTHORIZED", "authentication failed")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

func mapAccount(user model.User, avatarURL string) dto.AccountResponse {
	return dto.AccountResponse{
		ID:          user.ID,
		Email:       user.Email,
		TgID:        user.TgID,
		DisplayName: user.DisplayName,
		BirthDate:   user.BirthDate.Format(birthDateLayout),
		Age:         profiles.Age(user.BirthDate, time.Now()),
		City:        user.City,
		About:       user.About,
		Profession:  user.Profession,
		AvatarURL:   avatarURL,
	}
}

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeNotFound(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
