// Package server wires the stores, engine, and HTTP API together.
package server

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/okantomi/chorewheel/internal/config"
	"github.com/okantomi/chorewheel/internal/email"
	"github.com/okantomi/chorewheel/internal/handler"
	"github.com/okantomi/chorewheel/internal/middleware"
	"github.com/okantomi/chorewheel/internal/notify"
	"github.com/okantomi/chorewheel/internal/push"
	"github.com/okantomi/chorewheel/internal/rotation"
	"github.com/okantomi/chorewheel/internal/store"
	"github.com/okantomi/chorewheel/internal/websocket"
)

const (
	swapRateLimit  = 10
	swapRateWindow = time.Minute
)

type Server struct {
	logger *slog.Logger
	hub    *websocket.Hub
	jobs   *rotation.Jobs

	choreHandler    *handler.ChoreHandler
	scheduleHandler *handler.ScheduleHandler
	swapHandler     *handler.SwapHandler
	tenancyHandler  *handler.TenancyHandler
	pushHandler     *handler.PushHandler

	rateLimiter *middleware.RateLimiter
}

func New(db *sql.DB, cfg *config.Config, logger *slog.Logger) *Server {
	registry := store.NewRegistryStore(db)
	schedules := store.NewScheduleStore(db)
	swaps := store.NewSwapStore(db)
	reassignments := store.NewReassignmentStore(db)
	subs := store.NewPushStore(db)

	emailClient := email.NewClient(cfg.PostmarkToken, cfg.FromEmail)
	pushSvc := push.NewService(push.Config{
		VAPIDPublicKey:  cfg.VAPIDPublicKey,
		VAPIDPrivateKey: cfg.VAPIDPrivateKey,
		Subscriber:      cfg.VAPIDSubscriber,
	})
	notifier := notify.NewDispatcher(registry, emailClient, pushSvc, subs, logger)

	materializer := rotation.NewMaterializer(registry, schedules)
	tracker := rotation.NewTracker(registry, schedules, materializer)
	swapSvc := rotation.NewSwapService(registry, schedules, swaps, notifier, logger)
	jobs := rotation.NewJobs(registry, materializer, schedules, swaps, notifier, logger)
	vacancies := rotation.NewVacancies(registry, registry, reassignments, logger)

	hub := websocket.NewHub(logger)

	return &Server{
		logger:          logger,
		hub:             hub,
		jobs:            jobs,
		choreHandler:    handler.NewChoreHandler(tracker, hub, logger),
		scheduleHandler: handler.NewScheduleHandler(registry, materializer, schedules, logger),
		swapHandler:     handler.NewSwapHandler(swapSvc, hub, logger),
		tenancyHandler:  handler.NewTenancyHandler(vacancies, logger),
		pushHandler:     handler.NewPushHandler(subs, cfg.VAPIDPublicKey, logger),
		rateLimiter:     middleware.NewRateLimiter(),
	}
}

// Jobs exposes the job set for the scheduler.
func (s *Server) Jobs() *rotation.Jobs {
	return s.jobs
}

// Shutdown disconnects all websocket clients.
func (s *Server) Shutdown() {
	s.hub.Shutdown()
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	mux.HandleFunc("GET /api/chores/today", s.choreHandler.Today)
	mux.HandleFunc("POST /api/completions/{id}/complete", s.choreHandler.Complete)
	mux.HandleFunc("GET /api/occupants/{id}/stats", s.choreHandler.Stats)

	mux.HandleFunc("GET /api/schedule/current", s.scheduleHandler.Current)
	mux.HandleFunc("GET /api/schedule/{weekID}", s.scheduleHandler.ByWeek)

	// Swap creation is rate limited per client IP to keep one flaky
	// phone from flooding housemates with proposals.
	createSwap := middleware.RateLimit(s.rateLimiter, middleware.RealIP, swapRateLimit, swapRateWindow)(
		http.HandlerFunc(s.swapHandler.Create),
	)
	mux.Handle("POST /api/swaps", createSwap)
	mux.HandleFunc("GET /api/swaps", s.swapHandler.List)
	mux.HandleFunc("POST /api/swaps/{id}/approve", s.swapHandler.Approve)
	mux.HandleFunc("POST /api/swaps/{id}/reject", s.swapHandler.Reject)
	mux.HandleFunc("POST /api/swaps/{id}/cancel", s.swapHandler.Cancel)

	mux.HandleFunc("POST /api/tenants/{id}/end", s.tenancyHandler.End)

	mux.HandleFunc("GET /api/push/public-key", s.pushHandler.PublicKey)
	mux.HandleFunc("POST /api/push/subscribe", s.pushHandler.Subscribe)
	mux.HandleFunc("POST /api/push/unsubscribe", s.pushHandler.Unsubscribe)

	mux.Handle("GET /ws", websocket.Handler(s.hub, s.logger))

	return middleware.RequestLogger(s.logger)(mux)
}
