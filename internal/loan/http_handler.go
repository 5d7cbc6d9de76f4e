package loan

import (
	"net/http"
	"strconv"

	"lendingapi/internal/httpx"
	"lendingapi/internal/user"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

var outcomes = map[string]struct {
	status  int
	message string
}{
	"USER_INACTIVE":  {http.StatusForbidden, "Account is not active"},
	"QUOTA_EXCEEDED": {http.StatusConflict, "Borrowing limit reached"},
	"BOOK_NOT_FOUND": {http.StatusNotFound, "Book not found"},
	"NO_COPIES":      {http.StatusConflict, "No copies available"},
	"NOT_FOUND":      {http.StatusNotFound, "Borrow record not found"},
	"NOT_RENEWABLE":  {http.StatusConflict, "Loan cannot be renewed"},
	"NOT_OPEN":       {http.StatusConflict, "Loan is already closed"},
	"FORBIDDEN":      {http.StatusForbidden, "Administrator role required"},
}

func writeOutcome(w http.ResponseWriter, r *http.Request, err error) {
	code := Code(err)
	if o, ok := outcomes[code]; ok {
		httpx.JSONError(w, r, o.status, code, o.message, nil)
		return
	}
	httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
}

type issueReq struct {
	BookID string `json:"book_id" validate:"required"`
}

// Issue handles POST /loans
// @Summary Borrow a book
// @Tags loans
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body issueReq true "Book to borrow"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /loans [post]
func (h *HTTPHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req issueReq
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	rec, err := h.service.IssueLoan(r.Context(), user.CallerFrom(r), req.BookID)
	if err != nil {
		writeOutcome(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, r, rec)
}

// Return handles POST /loans/{id}/return
// @Summary Return a borrowed book
// @Tags loans
// @Produce json
// @Security Bearer
// @Param id path string true "Record ID"
// @Success 200 {object} httpx.SuccessResponse
// @Router /loans/{id}/return [post]
func (h *HTTPHandler) Return(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.ReturnLoan(r.Context(), user.CallerFrom(r), r.PathValue("id"))
	if err != nil {
		writeOutcome(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, res, nil)
}

// Renew handles POST /loans/{id}/renew
// @Summary Extend the due date
// @Tags loans
// @Produce json
// @Security Bearer
// @Param id path string true "Record ID"
// @Success 200 {object} httpx.SuccessResponse
// @Router /loans/{id}/renew [post]
func (h *HTTPHandler) Renew(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.RenewLoan(r.Context(), user.CallerFrom(r), r.PathValue("id"))
	if err != nil {
		writeOutcome(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, res, nil)
}

// ReportLost handles POST /loans/{id}/lost
// @Summary Report a borrowed copy as lost
// @Tags loans
// @Produce json
// @Security Bearer
// @Param id path string true "Record ID"
// @Success 200 {object} httpx.SuccessResponse
// @Router /loans/{id}/lost [post]
func (h *HTTPHandler) ReportLost(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.ReportLost(r.Context(), user.CallerFrom(r), r.PathValue("id"))
	if err != nil {
		writeOutcome(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, res, nil)
}

// ReportDamaged handles POST /loans/{id}/damaged
// @Summary Report a borrowed copy as damaged
// @Tags loans
// @Produce json
// @Security Bearer
// @Param id path string true "Record ID"
// @Success 200 {object} httpx.SuccessResponse
// @Router /loans/{id}/damaged [post]
func (h *HTTPHandler) ReportDamaged(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.ReportDamaged(r.Context(), user.CallerFrom(r), r.PathValue("id"))
	if err != nil {
		writeOutcome(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, res, nil)
}

// ForceReturn handles POST /loans/{id}/force-return
// @Summary Ask the borrower to return the book
// @Tags loans
// @Produce json
// @Security Bearer
// @Param id path string true "Record ID"
// @Success 200 {object} httpx.SuccessResponse
// @Router /loans/{id}/force-return [post]
func (h *HTTPHandler) ForceReturn(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.ForceReturnRequest(r.Context(), user.CallerFrom(r), r.PathValue("id"))
	if err != nil {
		writeOutcome(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, n, nil)
}

// ListMine handles GET /me/loans
// @Summary List the caller's loans
// @Tags loans
// @Produce json
// @Security Bearer
// @Param status query string false "BORROWING, RETURNED, LOST or DAMAGED"
// @Param limit query int false "Page size (1-200)"
// @Param cursor query string false "next_cursor from the previous page"
// @Success 200 {object} httpx.SuccessResponse
// @Router /me/loans [get]
func (h *HTTPHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	caller := user.CallerFrom(r)
	h.list(w, r, caller, Filter{UserID: caller.ID, Status: Status(r.URL.Query().Get("status"))})
}

// List handles GET /loans
// @Summary List loans (admin)
// @Tags loans
// @Produce json
// @Security Bearer
// @Param user_id query string false "User ID"
// @Param status query string false "Status"
// @Param limit query int false "Page size (1-200)"
// @Param cursor query string false "next_cursor from the previous page"
// @Success 200 {object} httpx.SuccessResponse
// @Router /loans [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.list(w, r, user.CallerFrom(r), Filter{UserID: q.Get("user_id"), Status: Status(q.Get("status"))})
}

func (h *HTTPHandler) list(w http.ResponseWriter, r *http.Request, caller user.Caller, f Filter) {
	switch f.Status {
	case "", StatusBorrowing, StatusReturned, StatusLost, StatusDamaged:
	default:
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown status", nil)
		return
	}

	q := r.URL.Query()
	cursor, err := DecodeCursor(q.Get("cursor"))
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid cursor", nil)
		return
	}
	f = cursor.Apply(f)
	f.Limit = defaultPageSize
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxPageSize {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be between 1 and 200", nil)
			return
		}
		f.Limit = n
	}

	records, err := h.service.List(r.Context(), caller, f)
	if err != nil {
		writeOutcome(w, r, err)
		return
	}

	meta := map[string]any{"count": len(records)}
	if len(records) == f.Limit {
		if next := EncodeCursor(records[len(records)-1].Seq); next != "" {
			meta["next_cursor"] = next
		}
	}
	httpx.JSONSuccess(w, r, records, meta)
}
