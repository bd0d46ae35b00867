package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/alrowad/institute/core"
	"github.com/alrowad/institute/core/payment"
	"github.com/alrowad/institute/core/settings"
	"github.com/alrowad/institute/core/student"
	"github.com/alrowad/institute/core/subject"
	"github.com/alrowad/institute/core/teacher"
	"github.com/alrowad/institute/core/user"
	"github.com/alrowad/institute/core/withdrawal"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool
		Logger         core.Logger

		UserSvc       *user.Service
		StudentSvc    *student.Service
		PaymentSvc    *payment.Service
		SubjectSvc    *subject.Service
		TeacherSvc    *teacher.Service
		WithdrawalSvc *withdrawal.Service
		SettingsSvc   *settings.Service
	}

	Server interface {
		http.Handler
		Start()
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		Shutdown(context.Context) error
		Close() error
	}

	server struct {
		opts       *Options
		app        *echo.Echo
		errCh      chan error
		shutdownCh chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:       opts,
		app:        echo.New(),
		errCh:      make(chan error, 1),
		shutdownCh: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdownCh, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.signalShutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.opts.UserSvc, s.opts.SettingsSvc)
	registerStudentAPI(v1, jwt, s.opts.StudentSvc, s.opts.PaymentSvc)
	registerPaymentAPI(v1, jwt, s.opts.PaymentSvc)
	registerSubjectAPI(v1, jwt, s.opts.SubjectSvc)
	registerTeacherAPI(v1, jwt, s.opts.TeacherSvc)
	registerWithdrawalAPI(v1, jwt, s.opts.WithdrawalSvc)
	registerReportAPI(v1, jwt, s.opts.StudentSvc, s.opts.PaymentSvc, s.opts.WithdrawalSvc)
	registerSettingsAPI(v1, jwt, s.opts.SettingsSvc)
}

func (s *server) Start() {
	if err := s.app.Start(s.opts.Address); err != nil && err != http.ErrServerClosed {
		s.errCh <- err
	}
}

func (s *server) Errors() <-chan error { return s.errCh }

func (s *server) ShutdownSignal() <-chan os.Signal { return s.shutdownCh }

// signalShutdown is called by the error handler when an unrecoverable
// error is caught.
func (s *server) signalShutdown() {
	s.shutdownCh <- syscall.SIGTERM
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+core.Conf.AppName+" API!")
}
