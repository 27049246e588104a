package deleteAllBookings

import (
	"context"
	"log/slog"
	"net/http"

	"roomBooker/internal/lib/api/response"
	"roomBooker/internal/lib/logger/sl"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=BookingsClearer
type BookingsClearer interface {
	DeleteAllBookings(ctx context.Context) error
}

func New(log *slog.Logger, clearer BookingsClearer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.booking.deleteAllBookings.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if err := clearer.DeleteAllBookings(r.Context()); err != nil {
			log.Error("failed to delete bookings", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to delete bookings"))
			return
		}

		log.Warn("all bookings deleted")

		render.NoContent(w, r)
	}
}
