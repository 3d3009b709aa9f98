// Package devserver is a stand-in for the screening backend. It serves the
// same six endpoints backed by SQLite (in-memory unless a file is configured)
// with cookie sessions and a deterministic stub classifier, for local
// development and end-to-end tests.
package devserver

import (
	"context"
	"crypto/sha256"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/tphakala/retinascan/internal/errors"
	"github.com/tphakala/retinascan/internal/logger"
	"github.com/tphakala/retinascan/internal/observability/metrics"
)

const (
	sessionName     = "session"
	historyLimit    = 10
	shutdownTimeout = 5 * time.Second

	classifyCacheTTL     = 10 * time.Minute
	classifyCacheCleanup = 20 * time.Minute

	// DefaultAuthRate is the per-client request rate allowed on login and register.
	DefaultAuthRate  = rate.Limit(5)
	DefaultAuthBurst = 10
)

// Config configures a Server. Zero values select the defaults.
type Config struct {
	SessionKey string // seed for the cookie signing key; random when empty
	Database   string // sqlite file path; in-memory when empty
	Classifier Classifier
	Metrics    *metrics.DevServerMetrics
	// MetricsHandler is mounted on /metrics when set.
	MetricsHandler http.Handler

	BcryptCost int
	AuthRate   rate.Limit // negative disables rate limiting
	AuthBurst  int
	Now        func() time.Time
}

// Server is the stand-in backend.
type Server struct {
	echo       *echo.Echo
	store      *Store
	sessions   *sessions.CookieStore
	classifier Classifier
	// classified holds grade distributions keyed by upload digest
	classified *cache.Cache
	metrics    *metrics.DevServerMetrics
	logger     logger.Logger
}

// New opens the store, builds the server and registers its routes. Close
// releases the store.
func New(cfg Config) (*Server, error) {
	log := GetLogger()

	store, err := NewStore(cfg.Database, cfg.BcryptCost, cfg.Now)
	if err != nil {
		return nil, err
	}

	seed := cfg.SessionKey
	if seed == "" {
		seed = uuid.NewString()
		log.Warn("no session key configured, sessions will not survive a restart")
	}
	sum := sha256.Sum256([]byte(seed))
	cookieStore := sessions.NewCookieStore(sum[:])
	cookieStore.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	classifier := cfg.Classifier
	if classifier == nil {
		classifier = StubClassifier{}
	}

	s := &Server{
		echo:       echo.New(),
		store:      store,
		sessions:   cookieStore,
		classifier: classifier,
		classified: cache.New(classifyCacheTTL, classifyCacheCleanup),
		metrics:    cfg.Metrics,
		logger:     log,
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.HTTPErrorHandler = s.handleError
	s.echo.Logger = logger.NewEchoLoggerAdapter(log.Module("echo"))

	s.echo.Use(middleware.Recover())
	s.echo.Use(s.observe)
	s.echo.Use(middleware.BodyLimit("16M"))

	s.initRoutes(cfg)
	return s, nil
}

// Close releases the backing store.
func (s *Server) Close() error {
	return s.store.Close()
}

func (s *Server) initRoutes(cfg Config) {
	s.echo.GET("/", s.handleIndex)
	s.echo.GET("/check-auth", s.handleCheckAuth)
	s.echo.POST("/logout", s.handleLogout)

	auth := s.echo.Group("")
	if cfg.AuthRate >= 0 {
		r, burst := cfg.AuthRate, cfg.AuthBurst
		if r == 0 {
			r = DefaultAuthRate
		}
		if burst <= 0 {
			burst = DefaultAuthBurst
		}
		auth.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
				Rate:      r,
				Burst:     burst,
				ExpiresIn: 3 * time.Minute,
			}),
			DenyHandler: func(c echo.Context, identifier string, err error) error {
				if s.metrics != nil {
					s.metrics.RateLimited.Inc()
				}
				s.logger.Warn("auth request rate limited", logger.String("client", identifier))
				return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "Too many requests"})
			},
		}))
	}
	auth.POST("/login", s.handleLogin)
	auth.POST("/register", s.handleRegister)

	protected := s.echo.Group("", s.requireSession)
	protected.POST("/predict", s.handlePredict)
	protected.GET("/history", s.handleHistory)

	if cfg.MetricsHandler != nil {
		s.echo.GET("/metrics", echo.WrapHandler(cfg.MetricsHandler))
	}
}

// Handler returns the HTTP handler, for httptest and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Store exposes the backing store.
func (s *Server) Store() *Store {
	return s.store
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(addr)
	}()
	s.logger.Info("development backend listening", logger.String("address", addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.New(err).
			Component("devserver").
			Category(errors.CategoryNetwork).
			Context("address", addr).
			Build()
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return errors.New(err).
			Component("devserver").
			Category(errors.CategoryNetwork).
			Context("operation", "shutdown").
			Build()
	}
	<-errCh
	s.logger.Info("development backend stopped")
	return nil
}

// observe records request metrics and a debug log line per request.
func (s *Server) observe(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		if err := next(c); err != nil {
			c.Error(err)
		}

		status := c.Response().Status
		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		if s.metrics != nil {
			s.metrics.Requests.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()
		}
		s.logger.Debug("request served",
			logger.String("method", c.Request().Method),
			logger.String("route", route),
			logger.Int("status", status),
			logger.Duration("elapsed", time.Since(start)))
		return nil
	}
}

// handleError writes every error as {"error": message}.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	} else {
		s.logger.Error("unhandled request error", logger.Error(err))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, errorResponse{Error: msg})
	}
	if err != nil {
		s.logger.Warn("failed to write error response", logger.Error(err))
	}
}
