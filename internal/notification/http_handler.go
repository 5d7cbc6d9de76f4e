package notification

import (
	"errors"
	"net/http"

	"lendingapi/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// ListMine handles GET /me/notifications
// @Summary List the caller's notifications
// @Tags notifications
// @Produce json
// @Security Bearer
// @Success 200 {object} httpx.SuccessResponse
// @Router /me/notifications [get]
func (h *HTTPHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListByUser(r.Context(), httpx.UserIDFrom(r))
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	unread := 0
	for _, n := range items {
		if !n.Read {
			unread++
		}
	}
	httpx.JSONSuccess(w, r, items, map[string]any{"total": len(items), "unread": unread})
}

// MarkRead handles POST /notifications/{id}/read
// @Summary Mark a notification as read
// @Tags notifications
// @Security Bearer
// @Param id path string true "Notification ID"
// @Success 204 "No Content"
// @Failure 404 {object} httpx.ErrorResponse
// @Router /notifications/{id}/read [post]
func (h *HTTPHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	err := h.service.MarkRead(r.Context(), httpx.UserIDFrom(r), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Notification not found", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccessNoContent(w)
}
