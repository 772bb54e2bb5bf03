package app

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"chargebook/internal/booking"
	"chargebook/internal/cache"
	"chargebook/internal/config"
	"chargebook/internal/db"
	httpserver "chargebook/internal/http"
	"chargebook/internal/http/handlers"
	"chargebook/internal/http/middleware"
	"chargebook/internal/password"
	"chargebook/internal/repository"
	"chargebook/internal/service"
	"chargebook/internal/watch"
	"chargebook/internal/ws"
)

// App wires chargebook dependencies.
type App struct {
	server      *httpserver.Server
	watcher     *watch.Watcher
	hub         *ws.Hub
	pool        *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	pool, err := db.NewPostgres(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(pool); err != nil {
		pool.Close()
		return nil, err
	}

	// Redis is optional: without it every availability read recomputes.
	var redisClient *redis.Client
	var availCache service.AvailabilityCache
	if cfg.Redis.Addr != "" {
		redisClient, err = cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			pool.Close()
			return nil, err
		}
		availCache = cache.NewAvailabilityCache(redisClient, cfg.CacheTTL())
	}

	stationRepo := repository.NewStationRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	tokens := service.NewTokenService(cfg.Auth.JWTSecret, cfg.TokenTTL())
	hasher := password.NewBcryptHasher(0)
	authService := service.NewAuthService(userRepo, hasher, tokens, decimal.NewFromFloat(cfg.Auth.SignupBalance), logger)

	bookingService := service.NewBookingService(
		stationRepo,
		bookingRepo,
		userRepo,
		availCache,
		booking.Policy(cfg.Availability.Policy),
		logger,
	)
	stationService := service.NewStationService(stationRepo, bookingService, logger)

	watcher := watch.NewWatcher(stationService, cfg.WatchInterval(), logger)
	hub := ws.NewHub(watcher, logger)

	authHandler := handlers.NewAuthHandler(authService)
	stationsHandler := handlers.NewStationsHandler(stationService, bookingService)
	bookingsHandler := handlers.NewBookingsHandler(bookingService)

	authed := middleware.Auth(tokens)
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return wrap(authed, middleware.RequireAdmin(h))
	}

	routes := httpserver.Routes{
		Signup:              authHandler.Signup,
		Login:               authHandler.Login,
		Me:                  wrap(authed, http.HandlerFunc(authHandler.Me)),
		Stations:            stationsHandler.List,
		StationAvailability: stationsHandler.Availability,
		CreateStation:       admin(stationsHandler.Create),
		UpdateStation:       admin(stationsHandler.Update),
		DeleteStation:       admin(stationsHandler.Delete),
		StationBookings:     admin(stationsHandler.Bookings),
		CreateBooking:       wrap(authed, http.HandlerFunc(bookingsHandler.Create)),
		ConfirmBooking:      wrap(authed, http.HandlerFunc(bookingsHandler.Confirm)),
		CancelBooking:       wrap(authed, http.HandlerFunc(bookingsHandler.Cancel)),
		MyBookings:          wrap(authed, http.HandlerFunc(bookingsHandler.Mine)),
		StationsFeed:        hub.HandleWS,
		Health:              handlers.NewHealthHandler(),
	}

	router := httpserver.NewRouter(routes)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server:      server,
		watcher:     watcher,
		hub:         hub,
		pool:        pool,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run starts the live feed and the HTTP server.
func (a *App) Run(ctx context.Context) error {
	go a.watcher.Run(ctx)
	go a.hub.Run(ctx)
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.pool != nil {
		if err := a.pool.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}

func wrap(mw func(http.Handler) http.Handler, h http.Handler) http.HandlerFunc {
	return mw(h).ServeHTTP
}
