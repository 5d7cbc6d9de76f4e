package fine

import (
	"errors"
	"net/http"

	"lendingapi/internal/httpx"
	"lendingapi/internal/user"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// ListMine handles GET /me/fines
// @Summary List the caller's fines
// @Tags fines
// @Produce json
// @Security Bearer
// @Success 200 {object} httpx.SuccessResponse
// @Router /me/fines [get]
func (h *HTTPHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	fines, err := h.service.ListByUser(r.Context(), httpx.UserIDFrom(r))
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccess(w, r, fines, map[string]any{"total": len(fines)})
}

// Pay handles POST /fines/{id}/pay
// @Summary Mark a fine as paid
// @Tags fines
// @Produce json
// @Security Bearer
// @Param id path string true "Fine ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /fines/{id}/pay [post]
func (h *HTTPHandler) Pay(w http.ResponseWriter, r *http.Request) {
	f, err := h.service.Pay(r.Context(), user.CallerFrom(r), r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Fine not found", nil)
		case errors.Is(err, ErrAlreadyPaid):
			httpx.JSONError(w, r, http.StatusConflict, "ALREADY_PAID", "Fine already paid", nil)
		default:
			httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		}
		return
	}
	httpx.JSONSuccess(w, r, f, nil)
}
