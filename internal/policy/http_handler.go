package policy

import (
	"errors"
	"net/http"

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

type updateReq struct {
	MaxBorrowBooks     int    `json:"max_borrow_books" validate:"gte=1,lte=100"`
	MaxBorrowDays      int    `json:"max_borrow_days" validate:"gte=1,lte=365"`
	RenewalDays        int    `json:"renewal_days" validate:"gte=1,lte=365"`
	OverdueFinePerDay  string `json:"overdue_fine_per_day" validate:"required,money"`
	LostBookFine       string `json:"lost_book_fine" validate:"required,money"`
	DamagedBookFine    string `json:"damaged_book_fine" validate:"required,money"`
	AutoCheckOverdue   bool   `json:"auto_check_overdue"`
	ReminderDaysBefore int    `json:"reminder_days_before" validate:"gte=0,lte=30"`
}

func (req updateReq) settings() Settings {
	return Settings{
		MaxBorrowBooks:     req.MaxBorrowBooks,
		MaxBorrowDays:      req.MaxBorrowDays,
		RenewalDays:        req.RenewalDays,
		OverdueFinePerDay:  decimal.RequireFromString(req.OverdueFinePerDay),
		LostBookFine:       decimal.RequireFromString(req.LostBookFine),
		DamagedBookFine:    decimal.RequireFromString(req.DamagedBookFine),
		AutoCheckOverdue:   req.AutoCheckOverdue,
		ReminderDaysBefore: req.ReminderDaysBefore,
	}
}

// Get handles GET /settings
// @Summary Current lending policy
// @Tags settings
// @Produce json
// @Security Bearer
// @Success 200 {object} httpx.SuccessResponse
// @Router /settings [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.Get(r.Context())
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccess(w, r, settings, nil)
}

// Update handles PUT /settings
// @Summary Replace the lending policy
// @Tags settings
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body updateReq true "Policy"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Router /settings [put]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateReq
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	settings, err := h.service.Update(r.Context(), user.CallerFrom(r), req.settings())
	if err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			httpx.JSONError(w, r, http.StatusForbidden, "FORBIDDEN", "Administrator role required", nil)
		case errors.Is(err, ErrInvalid):
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid settings", nil)
		default:
			httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		}
		return
	}
	httpx.JSONSuccess(w, r, settings, nil)
}
