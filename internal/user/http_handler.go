package user

import (
	"errors"
	"net/http"
	"strings"

	"lendingapi/internal/httpx"
	"lendingapi/internal/platform/crypto"
)

// CallerFrom builds the caller identity placed in the request by the auth middleware.
func CallerFrom(r *http.Request) Caller {
	return Caller{ID: httpx.UserIDFrom(r), Role: Role(httpx.RoleFrom(r))}
}

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type registerReq struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,password_strength"`
}

// RegisterUser handles POST /auth/register
// @Summary Register a new user
// @Tags users
// @Accept json
// @Produce json
// @Param request body registerReq true "Registration request"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /auth/register [post]
func (h *HTTPHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)

	hashedPassword, err := crypto.HashPassword(req.Password)
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	newUser, err := h.service.Register(r.Context(), req.Email, req.Username, hashedPassword)
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			httpx.JSONError(w, r, http.StatusConflict, "ALREADY_EXISTS", "Username already exists", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccessCreated(w, r, newUser)
}

// GetCurrentUser handles GET /me
// @Summary Current user with lending counters
// @Tags users
// @Produce json
// @Security Bearer
// @Success 200 {object} httpx.SuccessResponse
// @Router /me [get]
func (h *HTTPHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.GetByID(r.Context(), httpx.UserIDFrom(r))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccess(w, r, u, nil)
}

// Lock handles POST /users/{id}/lock
// @Summary Lock an account
// @Tags users
// @Security Bearer
// @Param id path string true "User ID"
// @Success 204 "No Content"
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /users/{id}/lock [post]
func (h *HTTPHandler) Lock(w http.ResponseWriter, r *http.Request) {
	h.writeStatus(w, r, h.service.Lock(r.Context(), CallerFrom(r), r.PathValue("id")))
}

// Unlock handles POST /users/{id}/unlock
// @Summary Unlock an account
// @Tags users
// @Security Bearer
// @Param id path string true "User ID"
// @Success 204 "No Content"
// @Router /users/{id}/unlock [post]
func (h *HTTPHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	h.writeStatus(w, r, h.service.Unlock(r.Context(), CallerFrom(r), r.PathValue("id")))
}

func (h *HTTPHandler) writeStatus(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case err == nil:
		httpx.JSONSuccessNoContent(w)
	case errors.Is(err, ErrForbidden):
		httpx.JSONError(w, r, http.StatusForbidden, "FORBIDDEN", "Administrator role required", nil)
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
	default:
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}
