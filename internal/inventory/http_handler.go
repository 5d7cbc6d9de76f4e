package inventory

import (
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"lendingapi/internal/httpx"
	"lendingapi/internal/user"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type createBookReq struct {
	ISBN      string `json:"isbn" validate:"required,isbn"`
	Title     string `json:"title" validate:"required,min=1,max=300"`
	Author    string `json:"author" validate:"required,max=200"`
	Publisher string `json:"publisher" validate:"max=200"`
	Category  string `json:"category" validate:"max=100"`
	Price     string `json:"price" validate:"required,money"`
}

type addCopyReq struct {
	Status   string `json:"status" validate:"omitempty,oneof=AVAILABLE BORROWED"`
	Location string `json:"location" validate:"max=200"`
	Notes    string `json:"notes" validate:"max=1000"`
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrForbidden):
		httpx.JSONError(w, r, http.StatusForbidden, "FORBIDDEN", "Administrator role required", nil)
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "BOOK_NOT_FOUND", "Book not found", nil)
	case errors.Is(err, ErrCopyNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Copy not found", nil)
	case errors.Is(err, ErrCopyInUse):
		httpx.JSONError(w, r, http.StatusConflict, "COPY_IN_USE", "Copy is borrowed; use force=true to remove it", nil)
	case errors.Is(err, ErrInvalidStatus):
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid copy status", nil)
	default:
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}

// CreateBook handles POST /books
// @Summary Create a book
// @Tags books
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body createBookReq true "Book"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Router /books [post]
func (h *HTTPHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var req createBookReq
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	b, err := h.service.CreateBook(r.Context(), user.CallerFrom(r), Book{
		ISBN:      strings.ReplaceAll(req.ISBN, "-", ""),
		Title:     strings.TrimSpace(req.Title),
		Author:    strings.TrimSpace(req.Author),
		Publisher: req.Publisher,
		Category:  req.Category,
		Price:     decimal.RequireFromString(req.Price),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, r, b)
}

// GetBook handles GET /books/{id}
// @Summary Get a book with its copy counters
// @Tags books
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id} [get]
func (h *HTTPHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.GetBook(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, b, nil)
}

// AddCopy handles POST /books/{id}/copies
// @Summary Add a physical copy
// @Tags copies
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Book ID"
// @Param request body addCopyReq true "Copy"
// @Success 201 {object} httpx.SuccessResponse
// @Router /books/{id}/copies [post]
func (h *HTTPHandler) AddCopy(w http.ResponseWriter, r *http.Request) {
	var req addCopyReq
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	c, err := h.service.AddCopy(r.Context(), user.CallerFrom(r), r.PathValue("id"), CopyStatus(req.Status), req.Location, req.Notes)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, r, c)
}

// ListCopies handles GET /books/{id}/copies
// @Summary List copies of a book
// @Tags copies
// @Produce json
// @Security Bearer
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Router /books/{id}/copies [get]
func (h *HTTPHandler) ListCopies(w http.ResponseWriter, r *http.Request) {
	copies, err := h.service.CopiesForBook(r.Context(), user.CallerFrom(r), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, copies, map[string]any{"total": len(copies)})
}

// RemoveCopy handles DELETE /copies/{id}
// @Summary Remove a copy
// @Tags copies
// @Security Bearer
// @Param id path string true "Copy ID"
// @Param force query bool false "Remove even if borrowed"
// @Success 204 "No Content"
// @Failure 409 {object} httpx.ErrorResponse
// @Router /copies/{id} [delete]
func (h *HTTPHandler) RemoveCopy(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"
	if err := h.service.RemoveCopy(r.Context(), user.CallerFrom(r), r.PathValue("id"), force); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccessNoContent(w)
}
