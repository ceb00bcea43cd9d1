package echoapi

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/challenge"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/consumption"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/enrollment"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/leaderboard"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/profile"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/score"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/user"
	metricsvc "github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/services/metrics"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator
		Auth       *Authenticator
		Metrics    *metricsvc.EcoMetrics

		UserSvc        *user.Service
		ProfileSvc     *profile.Service
		ConsumptionSvc *consumption.Service
		ScoreSvc       *score.Service
		ChallengeSvc   *challenge.Service
		EnrollmentSvc  *enrollment.Service
		LeaderboardSvc *leaderboard.Service
	}

	Server struct {
		*http.Server
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	app := echo.New()
	s := &Server{
		Server: &http.Server{
			Addr:    deps.Conf.Server.Address,
			Handler: app,
		},
		deps:     deps,
		app:      app,
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)
	s.app.GET("/metrics", echo.WrapHandler(metricsvc.Handler()))

	v1 := s.app.Group("/v1")
	jwt := s.deps.Auth.Middleware()

	registerUserAPI(v1, jwt, s.deps)
	registerProfileAPI(v1, jwt, s.deps)
	registerConsumptionAPI(v1, jwt, s.deps)
	registerChallengeAPI(v1, jwt, s.deps)
	registerLeaderboardAPI(v1, jwt, s.deps)
}

// Start blocks serving requests; a failure is reported on Errors.
func (s *Server) Start() {
	if err := s.app.StartServer(s.Server); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Eco Plus API!")
}
