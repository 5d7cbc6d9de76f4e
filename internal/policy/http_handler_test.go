package policy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"lendingapi/internal/httpx"
)

const validBody = `{
	"max_borrow_books": 3,
	"max_borrow_days": 21,
	"renewal_days": 7,
	"overdue_fine_per_day": "2500",
	"lost_book_fine": "50000",
	"damaged_book_fine": "20000",
	"auto_check_overdue": false,
	"reminder_days_before": 1
}`

func withCaller(r *http.Request, id, role string) *http.Request {
	return r.WithContext(httpx.ContextWithUser(r.Context(), id, role))
}

func TestHTTPHandler_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo))

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().Get(gomock.Any()).Return(Defaults(), nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/settings", nil)

		handler.Get(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"max_borrow_books":5`)
	})

	t.Run("error", func(t *testing.T) {
		mockRepo.EXPECT().Get(gomock.Any()).Return(Settings{}, context.DeadlineExceeded)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/settings", nil)

		handler.Get(w, r)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHTTPHandler_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo))

	t.Run("admin", func(t *testing.T) {
		mockRepo.EXPECT().Get(gomock.Any()).Return(Defaults(), nil)
		mockRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
		updated := Defaults()
		updated.MaxBorrowBooks = 3
		mockRepo.EXPECT().Get(gomock.Any()).Return(updated, nil)

		w := httptest.NewRecorder()
		r := withCaller(httptest.NewRequest(http.MethodPut, "/settings", strings.NewReader(validBody)), "a1", "ADMIN")

		handler.Update(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"max_borrow_books":3`)
	})

	t.Run("user", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := withCaller(httptest.NewRequest(http.MethodPut, "/settings", strings.NewReader(validBody)), "u1", "USER")

		handler.Update(w, r)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("validation", func(t *testing.T) {
		w := httptest.NewRecorder()
		body := strings.Replace(validBody, `"2500"`, `"-1"`, 1)
		r := withCaller(httptest.NewRequest(http.MethodPut, "/settings", strings.NewReader(body)), "a1", "ADMIN")

		handler.Update(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	})
}
