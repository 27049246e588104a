package createBooking

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"roomBooker/internal/booking"
	"roomBooker/internal/lib/api/response"
	"roomBooker/internal/lib/logger/sl"
	"roomBooker/internal/lib/password"
	"roomBooker/internal/models"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type BookingRequest struct {
	TeamName  string      `json:"teamName"`
	Date      string      `json:"date"`
	StartTime string      `json:"startTime"`
	Duration  json.Number `json:"duration"`
	Password  string      `json:"password" validate:"required,min=4,max=20"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=BookingCreator
type BookingCreator interface {
	CreateBooking(ctx context.Context, p booking.Proposal) (models.Booking, error)
}

func New(log *slog.Logger, creator BookingCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.booking.createBooking.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req BookingRequest

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))
			return
		}

		req.Password = strings.TrimSpace(req.Password)

		log.Info("request body decoded",
			slog.String("team_name", req.TeamName),
			slog.String("date", req.Date),
			slog.String("start_time", req.StartTime),
			slog.String("duration", req.Duration.String()),
		)

		if err = validator.New().Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			errors.As(err, &validateErr)

			log.Error("invalid request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))
			return
		}

		if len(req.Password) > password.MaxBytes {
			log.Error("password exceeds bcrypt input limit", slog.Int("bytes", len(req.Password)))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("field Password is too long"))
			return
		}

		b, err := creator.CreateBooking(r.Context(), booking.Proposal{
			TeamName:  req.TeamName,
			Date:      req.Date,
			StartTime: req.StartTime,
			Duration:  req.Duration.String(),
			Password:  req.Password,
		})
		if err != nil {
			switch {
			case errors.Is(err, booking.ErrConflict):
				log.Info("booking conflicts with an existing one", sl.Err(err))
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.Error(err.Error()))
			case booking.IsValidation(err):
				log.Info("booking rejected", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(err.Error()))
			default:
				log.Error("failed to create booking", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("failed to create booking"))
			}
			return
		}

		log.Info("booking created", slog.String("id", b.ID))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, b)
	}
}
