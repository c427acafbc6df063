package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/internal/service"
	"github.com/utafrali/shopfront/internal/upstream"
	apperrors "github.com/utafrali/shopfront/pkg/errors"
	"github.com/utafrali/shopfront/pkg/httputil"
	"github.com/utafrali/shopfront/pkg/validator"
)

// UserHandler serves sign-in and profile endpoints.
type UserHandler struct {
	service *service.StorefrontService
	logger  *slog.Logger
}

func NewUserHandler(svc *service.StorefrontService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		service: svc,
		logger:  logger,
	}
}

// SignInRequest is the JSON request body for signing in.
type SignInRequest struct {
	Username string `json:"username" validate:"required,min=1,max=100"`
	Password string `json:"password" validate:"required,min=1,max=200"`
}

// SignIn handles POST /api/v1/auth/signin
func (h *UserHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
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

	session, err := h.service.SignIn(r.Context(), upstream.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: session})
}

// Me handles GET /api/v1/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "authentication required"},
		})
		return
	}

	user, err := h.service.User(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: user})
}

// GetUser handles GET /api/v1/users/{userId}. Members may only look up
// their own profile; admins may look up anyone.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := userIDFromContext(r.Context())
	if !ok {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "authentication required"},
		})
		return
	}

	targetID := chi.URLParam(r, "userId")
	if targetID != requesterID && userRoleFromContext(r.Context()) != domain.RoleAdmin {
		httputil.WriteError(w, r, apperrors.Forbidden("admin role required to view other profiles"), h.logger)
		return
	}

	user, err := h.service.User(r.Context(), targetID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: user})
}
