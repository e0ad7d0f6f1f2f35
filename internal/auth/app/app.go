// Package app assembles the auth service: configuration, logging, storage,
// the revocation ledger, mail and media providers, and the HTTP server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/phase1912/contacts-auth/internal/auth/http"
	"github.com/phase1912/contacts-auth/internal/auth/ledger"
	"github.com/phase1912/contacts-auth/internal/auth/mail"
	"github.com/phase1912/contacts-auth/internal/auth/media"
	"github.com/phase1912/contacts-auth/internal/auth/service"
	"github.com/phase1912/contacts-auth/internal/auth/store"
	"github.com/phase1912/contacts-auth/internal/auth/store/drivers/sqlite"
	"github.com/phase1912/contacts-auth/pkg/cryptox"
	"github.com/phase1912/contacts-auth/pkg/jwtx"
	"github.com/phase1912/contacts-auth/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	ledger ledger.Ledger
	codec  *jwtx.Codec

	authService         *service.AuthService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "contacts-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing. Loading eagerly surfaces a bad
	// path here instead of on the first login.
	cryptox.SetPepperPath(app.cfg.PepperFile)
	if err := cryptox.LoadPepper(); err != nil {
		return nil, fmt.Errorf("failed to load password pepper: %w", err)
	}

	codec, err := jwtx.NewCodec([]byte(cfg.TokenSecret), cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}
	app.codec = codec

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	app.initLedger()

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.ledger.Close(); err != nil {
		app.logger.Error("error closing ledger", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initLedger picks the revocation ledger backend. The sqlite backend shares
// the credential database so revocations survive restarts.
func (app *Application) initLedger() {
	switch app.cfg.LedgerBackend {
	case "memory":
		app.ledger = ledger.NewMemory()
		app.logger.Info("revocation ledger: in-memory (revocations lost on restart)")
	default:
		app.ledger = ledger.NewStoreLedger(app.db.Revocations())
		app.logger.Info("revocation ledger: sqlite")
	}
}

// initServices initializes the business logic services.
func (app *Application) initServices() error {
	mailer := app.buildMailer()
	uploader, err := app.buildUploader()
	if err != nil {
		return err
	}

	app.authService = &service.AuthService{
		Store:  app.db,
		Ledger: app.ledger,
		Codec:  app.codec,
		Mailer: mailer,
		Media:  uploader,

		AccessTTL:  app.cfg.AccessTokenTTL,
		RefreshTTL: app.cfg.RefreshTokenTTL,
		VerifyTTL:  app.cfg.VerifyTokenTTL,
		ResetTTL:   app.cfg.ResetTokenTTL,

		TOTPIssuer:      app.cfg.Issuer,
		RequireVerified: app.cfg.RequireVerified,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)

	return nil
}

func (app *Application) buildMailer() mail.Mailer {
	if app.cfg.SMTPHost == "" {
		app.logger.Info("no SMTP host configured, emails go to the log")
		return mail.NewLogMailer(app.logger)
	}
	return mail.NewSMTPMailer(mail.SMTPConfig{
		Host:     app.cfg.SMTPHost,
		Port:     app.cfg.SMTPPort,
		Username: app.cfg.SMTPUsername,
		Password: app.cfg.SMTPPassword,
		From:     app.cfg.MailFrom,
		BaseURL:  app.cfg.FrontendURL,
	})
}

func (app *Application) buildUploader() (media.Uploader, error) {
	if app.cfg.S3Bucket == "" {
		app.logger.Info("no S3 bucket configured, avatar uploads are stubbed")
		return &media.StubUploader{}, nil
	}

	uploader, err := media.NewS3Uploader(context.Background(), media.S3Config{
		Bucket:        app.cfg.S3Bucket,
		Region:        app.cfg.S3Region,
		BaseEndpoint:  app.cfg.S3BaseEndpoint,
		AccessKey:     app.cfg.S3AccessKey,
		SecretKey:     app.cfg.S3SecretKey,
		PublicBaseURL: app.cfg.MediaPublicURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 uploader: %w", err)
	}
	return uploader, nil
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.authService, app.db, BuildVersion, app.logger)
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
