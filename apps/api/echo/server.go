package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/assignment"
	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/enrollment"
	"github.com/trezcool/academia/core/grading"
	"github.com/trezcool/academia/core/report"
	"github.com/trezcool/academia/core/user"
)

type (
	Deps struct {
		Users       *user.Service
		Courses     *course.Service
		Directory   *enrollment.Directory
		Assignments *assignment.Service
		Grading     *grading.Service
		Reports     *report.Service
	}

	Server struct {
		conf     *core.Config
		logger   core.Logger
		deps     *Deps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(conf *core.Config, logger core.Logger, deps *Deps) *Server {
	s := &Server{
		conf:     conf,
		logger:   logger,
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	if !s.conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.conf.Debug || s.conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.logger)
	s.app.Debug = s.conf.Debug

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	jwt := jwtMiddleware(s.conf)

	registerAuthAPI(v1, s.conf, s.deps.Users)
	registerUserAPI(v1, jwt, s.deps)
	registerCourseAPI(v1, jwt, s.deps)
	registerAssignmentAPI(v1, jwt, s.deps)
	registerReportAPI(v1, jwt, s.deps.Reports)
}

// Start listens on the configured address; failures are sent to Errors().
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errors }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.conf.AppName+" API!")
}
