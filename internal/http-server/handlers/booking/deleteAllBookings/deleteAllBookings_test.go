package deleteAllBookings

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"roomBooker/internal/http-server/handlers/booking/deleteAllBookings/mocks"
	"roomBooker/internal/lib/logger/handlers/slogdiscard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestDeleteAllBookingsHandler(t *testing.T) {
	t.Parallel()

	logger := slogdiscard.NewDiscardLogger()

	t.Run("Success", func(t *testing.T) {
		t.Parallel()

		clearer := mocks.NewBookingsClearer(t)
		clearer.On("DeleteAllBookings", mock.Anything).Return(nil)

		rr := httptest.NewRecorder()
		New(logger, clearer).ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/bookings", nil))

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Empty(t, rr.Body.String())
	})

	t.Run("Storage failure", func(t *testing.T) {
		t.Parallel()

		clearer := mocks.NewBookingsClearer(t)
		clearer.On("DeleteAllBookings", mock.Anything).Return(errors.New("database error"))

		rr := httptest.NewRecorder()
		New(logger, clearer).ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/bookings", nil))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.JSONEq(t, `{"status":"Error","message":"failed to delete bookings"}`, rr.Body.String())
	})
}
