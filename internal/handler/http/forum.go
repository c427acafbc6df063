package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/shopfront/internal/service"
	"github.com/utafrali/shopfront/internal/upstream"
	"github.com/utafrali/shopfront/pkg/httputil"
	"github.com/utafrali/shopfront/pkg/validator"
)

// ForumHandler serves message-board endpoints backed by the upstream
// storefront API.
type ForumHandler struct {
	service *service.StorefrontService
	logger  *slog.Logger
}

func NewForumHandler(svc *service.StorefrontService, logger *slog.Logger) *ForumHandler {
	return &ForumHandler{
		service: svc,
		logger:  logger,
	}
}

// CreatePostRequest is the JSON request body for creating a board post.
type CreatePostRequest struct {
	Title string `json:"title" validate:"required,min=1,max=300"`
	Body  string `json:"body" validate:"required,min=1,max=10000"`
}

// VoteRequest is the JSON request body for voting on a post.
type VoteRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

// ListBoards handles GET /api/v1/boards
func (h *ForumHandler) ListBoards(w http.ResponseWriter, r *http.Request) {
	boards, err := h.service.Boards(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: boards})
}

// ListPosts handles GET /api/v1/boards/{boardId}/posts
func (h *ForumHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	boardID := chi.URLParam(r, "boardId")

	posts, err := h.service.Posts(r.Context(), boardID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: posts})
}

// CreatePost handles POST /api/v1/boards/{boardId}/posts
func (h *ForumHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "authentication required"},
		})
		return
	}

	boardID := chi.URLParam(r, "boardId")

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	post, err := h.service.CreatePost(r.Context(), boardID, upstream.PostInput{
		UserID: userID,
		Title:  req.Title,
		Body:   req.Body,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: post})
}

// RecordVote handles POST /api/v1/boards/{boardId}/posts/{postId}/votes.
// The response carries the refreshed post list for the board so the client
// sees the updated tally without a second round trip.
func (h *ForumHandler) RecordVote(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "authentication required"},
		})
		return
	}

	boardID := chi.URLParam(r, "boardId")
	postID := chi.URLParam(r, "postId")

	var req VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	posts, err := h.service.RecordVote(r.Context(), boardID, postID, userID, req.Direction)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: posts})
}
