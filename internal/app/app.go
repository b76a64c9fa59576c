package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/coursecal/coursecal/internal/apperrors"
	"github.com/coursecal/coursecal/internal/auth"
	"github.com/coursecal/coursecal/internal/config"
	"github.com/coursecal/coursecal/internal/courseville"
	"github.com/coursecal/coursecal/internal/database"
	"github.com/coursecal/coursecal/internal/handler"
	"github.com/coursecal/coursecal/internal/logger"
	"github.com/coursecal/coursecal/internal/notify"
	"github.com/coursecal/coursecal/internal/repository"
	"github.com/coursecal/coursecal/internal/service"
	"github.com/coursecal/coursecal/internal/session"
)

type App struct {
	cfg        *config.Config
	logger     *logger.Logger
	db         *database.DynamoDBClient
	sessions   *session.Store
	natsClient *notify.Client
	notifier   service.Notifier
	echo       *echo.Echo

	cleanup []func() error
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{
		cfg:     cfg,
		cleanup: make([]func() error, 0),
	}

	app.initLogger()

	if err := app.initDatabase(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalServer, "failed to init database")
	}

	if err := app.initSessions(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalServer, "failed to init session store")
	}

	if err := app.initNATS(ctx); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalServer, "failed to init nats client")
	}

	app.initHTTP()

	return app, nil
}

func (a *App) initLogger() {
	if a.cfg.Server.Environment == "development" {
		a.logger = logger.Development("coursecal")
	} else {
		a.logger = logger.Default("coursecal")
	}
}

func (a *App) initDatabase() error {
	db, err := database.NewDynamoDBClient(a.cfg)
	if err != nil {
		return err
	}
	a.db = db
	return nil
}

func (a *App) initSessions() error {
	store, err := session.NewStore(a.cfg.Redis)
	if err != nil {
		return err
	}
	a.sessions = store
	a.cleanup = append(a.cleanup, store.Close)
	return nil
}

func (a *App) initNATS(ctx context.Context) error {
	if !a.cfg.NATS.Enabled {
		a.logger.Info("notifications disabled, skipping NATS")
		return nil
	}

	client, err := notify.NewClient(&notify.ClientConfig{
		URL:           a.cfg.NATS.URL,
		MaxReconnect:  a.cfg.NATS.MaxReconnect,
		ReconnectWait: time.Duration(a.cfg.NATS.ReconnectWaitSeconds) * time.Second,
		Timeout:       time.Duration(a.cfg.NATS.TimeoutSeconds) * time.Second,
	}, a.logger)
	if err != nil {
		return err
	}

	a.natsClient = client
	a.cleanup = append(a.cleanup, client.Close)

	stream := notify.StreamConfig()
	if _, err := client.JetStream().CreateOrUpdateStream(ctx, stream); err != nil {
		a.logger.Error("failed to create stream", "error", err, "stream", stream.Name)
		return err
	}
	a.logger.Info("stream ready", "stream", stream.Name)

	a.notifier = notify.NewPublisher(client, a.logger)
	return nil
}

func (a *App) initHTTP() {
	txRepo := database.NewTransactionRepository(a.db)
	userRepo := repository.NewUserRepository(a.db, txRepo)
	eventRepo := repository.NewEventRepository(a.db)
	membershipRepo := repository.NewMembershipRepository(a.db, txRepo)
	invitationRepo := repository.NewInvitationRepository(a.db)

	userSvc := service.NewUserService(userRepo, a.logger)
	eventSvc := service.NewEventService(eventRepo, membershipRepo, invitationRepo, userRepo, a.notifier, a.logger)

	lms := courseville.NewClient(
		a.cfg.Courseville.BaseURL,
		time.Duration(a.cfg.Courseville.TimeoutSeconds)*time.Second,
		a.logger,
	)
	syncSvc := service.NewSyncService(lms, eventSvc, a.cfg.Sync, a.logger)

	authSvc := auth.NewService(a.cfg.OAuth)

	h := handler.NewCalendarHandler(
		authSvc, a.sessions, lms,
		userSvc, eventSvc, syncSvc,
		a.cfg.Server.FrontendURL, a.logger,
	)

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{a.cfg.Server.FrontendURL},
		AllowCredentials: true,
	}))
	e.HTTPErrorHandler = a.httpErrorHandler

	h.Register(e)
	a.echo = e
}

// httpErrorHandler maps AppError codes onto HTTP statuses; everything else is
// a 500 with the detail kept out of the response body.
func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		_ = c.JSON(httpErr.Code, map[string]interface{}{"error": httpErr.Message})
		return
	}

	status := apperrors.StatusOf(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error("request failed", "path", c.Path(), "error", err)
		_ = c.JSON(status, map[string]string{"error": "internal server error"})
		return
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		_ = c.JSON(status, map[string]string{"error": appErr.Message})
		return
	}

	_ = c.JSON(status, map[string]string{"error": err.Error()})
}

func (a *App) Start() {
	go func() {
		addr := fmt.Sprintf(":%d", a.cfg.Server.HTTPPort)
		if err := a.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("failed to serve", "error", err)
		}
	}()

	a.logger.Info("http server started", "port", a.cfg.Server.HTTPPort)
}

func (a *App) Stop(ctx context.Context) {
	a.logger.Info("stopping application...")

	if a.echo != nil {
		if err := a.echo.Shutdown(ctx); err != nil {
			a.logger.Error("http shutdown error", "error", err)
		}
	}

	for _, cleanup := range a.cleanup {
		if err := cleanup(); err != nil {
			a.logger.Error("cleanup error", "error", err)
		}
	}

	a.logger.Info("application stopped")
}
