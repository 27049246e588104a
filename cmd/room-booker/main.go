package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roomBooker/internal/booking"
	"roomBooker/internal/config"
	"roomBooker/internal/http-server/handlers/booking/checkBooking"
	"roomBooker/internal/http-server/handlers/booking/createBooking"
	"roomBooker/internal/http-server/handlers/booking/deleteAllBookings"
	"roomBooker/internal/http-server/handlers/booking/deleteBooking"
	"roomBooker/internal/http-server/handlers/booking/listBookings"
	"roomBooker/internal/http-server/middleware/mwlogger"
	"roomBooker/internal/http-server/middleware/mwmetrics"
	"roomBooker/internal/http-server/middleware/mwratelimit"
	"roomBooker/internal/lib/logger/handlers/slogpretty"
	"roomBooker/internal/lib/logger/sl"
	"roomBooker/internal/storage/memory"
	"roomBooker/internal/storage/postgres"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

const (
	storagePostgres = "postgres"
	storageMemory   = "memory"
)

type bookingStore interface {
	listBookings.BookingsLister
	createBooking.BookingCreator
	checkBooking.BookingChecker
	deleteBooking.BookingDeleter
	deleteAllBookings.BookingsClearer
	PurgeBookingsBefore(ctx context.Context, date string) (int64, error)
	Close() error
}

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("starting room booker", slog.String("env", cfg.Env), slog.String("storage", cfg.Storage))
	log.Debug("debug messages are enabled")

	store, err := setupStorage(cfg, log)
	if err != nil {
		log.Error("failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	router := newRouter(log, store, cfg, prometheus.DefaultRegisterer)

	log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT, os.Interrupt)

	done := make(chan struct{})

	if cfg.Retention.Days > 0 {
		go runRetention(log, store, cfg.Retention, done)
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", sl.Err(err))
			stop <- syscall.SIGTERM
		}
	}()

	sign := <-stop

	log.Info("application stopping", slog.String("signal", sign.String()))

	close(done)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err = srv.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server", sl.Err(err))
	}

	log.Info("application stopped")

	if err = store.Close(); err != nil {
		log.Error("failed to close storage", sl.Err(err))
	}

	log.Info("storage closed")
}

func setupStorage(cfg *config.Config, log *slog.Logger) (bookingStore, error) {
	switch cfg.Storage {
	case storageMemory:
		log.Warn("using in-memory storage, bookings are lost on restart")
		return memory.New(time.Now), nil
	case storagePostgres:
		storage, err := postgres.InitDB(&cfg.Database)
		if err != nil {
			return nil, err
		}

		if cfg.Database.AutoMigrate {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			if err = storage.Migrate(ctx); err != nil {
				_ = storage.Close()
				return nil, err
			}
			log.Info("migrations applied")
		}

		return storage, nil
	default:
		return nil, errors.New("unknown storage: " + cfg.Storage)
	}
}

func newRouter(log *slog.Logger, store bookingStore, cfg *config.Config, reg prometheus.Registerer) http.Handler {
	metrics := mwmetrics.New(reg)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(mwlogger.New(log))
	router.Use(metrics.Handler)
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	fs := http.FileServer(http.Dir(cfg.HTTPServer.StaticDir))
	router.Handle("/static/*", http.StripPrefix("/static/", fs))

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/static/index.html", http.StatusFound)
	})

	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api/bookings", func(r chi.Router) {
		r.Get("/", listBookings.New(log, store))

		r.Group(func(r chi.Router) {
			if cfg.RateLimit.RPS > 0 {
				r.Use(mwratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst).Middleware(log))
			}

			r.Post("/", createBooking.New(log, store))
			r.Post("/check", checkBooking.New(log, store))
			r.Delete("/{id}", deleteBooking.New(log, store))
			r.Delete("/", deleteAllBookings.New(log, store))
		})
	})

	return router
}

// runRetention periodically purges bookings older than the retention window
// until done is closed.
func runRetention(log *slog.Logger, store bookingStore, cfg config.Retention, done <-chan struct{}) {
	log = log.With(slog.String("component", "retention"))

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().AddDate(0, 0, -cfg.Days).Format(booking.DateLayout)

			removed, err := store.PurgeBookingsBefore(context.Background(), cutoff)
			if err != nil {
				log.Error("failed to purge old bookings", sl.Err(err))
				continue
			}
			if removed > 0 {
				log.Info("purged old bookings", slog.Int64("count", removed), slog.String("before", cutoff))
			}
		case <-done:
			return
		}
	}
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	h := opts.NewPrettyHandler(os.Stdout)

	return slog.New(h)
}
