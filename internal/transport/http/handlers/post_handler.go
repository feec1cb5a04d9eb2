package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/skipdm/edworking/internal/domain/enums"
	"github.com/skipdm/edworking/internal/domain/model"
	authsvc "github.com/skipdm/edworking/internal/services/auth"
	postssvc "github.com/skipdm/edworking/internal/services/posts"
	"github.com/skipdm/edworking/internal/transport/http/dto"
	httperrors "github.com/skipdm/edworking/internal/transport/http/errors"
)

type PostHandler struct {
	service *postssvc.Service
}

func NewPostHandler(service *postssvc.Service) *PostHandler {
	return &PostHandler{service: service}
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "POST_SERVICE_UNAVAILABLE", "post service is unavailable")
		return
	}

	var req dto.CreatePostRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	kind, err := enums.ParsePostKind(req.Kind)
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "kind must be UPDATE or JOB_OFFER")
		return
	}

	post, err := h.service.Create(r.Context(), identity.UserID, kind, req.Body)
	if err != nil {
		handlePostError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, mapPost(post, ""))
}

func (h *PostHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	if _, ok := authsvc.IdentityFromContext(r.Context()); !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "POST_SERVICE_UNAVAILABLE", "post service is unavailable")
		return
	}

	feed, err := h.service.ListAll(r.Context())
	if err != nil {
		handlePostError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.PostsFeedResponse{
		JobPosts:     mapPostViews(feed.JobPosts),
		RegularPosts: mapPostViews(feed.RegularPosts),
	})
}

func (h *PostHandler) ListByAuthor(w http.ResponseWriter, r *http.Request) {
	if _, ok := authsvc.IdentityFromContext(r.Context()); !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "POST_SERVICE_UNAVAILABLE", "post service is unavailable")
		return
	}

	authorID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || authorID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid author id")
		return
	}

	posts, err := h.service.ListByAuthor(r.Context(), authorID)
	if err != nil {
		handlePostError(w, err)
		return
	}

	out := make([]dto.PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, mapPost(p, ""))
	}

	httperrors.Write(w, http.StatusOK, dto.AuthorPostsResponse{Posts: out})
}

func handlePostError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, postssvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "request validation failed")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

func mapPost(post model.Post, authorName string) dto.PostResponse {
	return dto.PostResponse{
		ID:           post.ID,
		AuthorUserID: post.AuthorUserID,
		AuthorName:   authorName,
		Kind:         string(post.Kind),
		Body:         post.Body,
		CreatedAt:    post.CreatedAt,
	}
}

func mapPostViews(views []postssvc.PostView) []dto.PostResponse {
	out := make([]dto.PostResponse, 0, len(views))
	for _, v := range views {
		out = append(out, mapPost(v.Post, v.AuthorName))
	}
	return out
}
