package checkBooking

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"roomBooker/internal/booking"
	"roomBooker/internal/lib/api/response"
	"roomBooker/internal/lib/logger/sl"
	"roomBooker/internal/models"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type CheckRequest struct {
	TeamName  string      `json:"teamName"`
	Date      string      `json:"date"`
	StartTime string      `json:"startTime"`
	Duration  json.Number `json:"duration"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=BookingChecker
type BookingChecker interface {
	CheckBooking(ctx context.Context, p booking.Proposal) (models.Booking, error)
}

// New answers whether a proposal would be accepted right now, using the same
// rules as creation. Nothing is stored.
func New(log *slog.Logger, checker BookingChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.booking.checkBooking.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req CheckRequest

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))
			return
		}

		preview, err := checker.CheckBooking(r.Context(), booking.Proposal{
			TeamName:  req.TeamName,
			Date:      req.Date,
			StartTime: req.StartTime,
			Duration:  req.Duration.String(),
		})
		if err != nil {
			switch {
			case errors.Is(err, booking.ErrConflict):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.Error(err.Error()))
			case booking.IsValidation(err):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(err.Error()))
			default:
				log.Error("failed to check booking", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("failed to check booking"))
			}
			return
		}

		log.Debug("booking would be accepted", slog.String("date", preview.Date), slog.String("start_time", preview.StartTime))

		render.JSON(w, r, preview)
	}
}
