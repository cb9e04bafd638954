package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"axiapac.com/personnel/app"
	"axiapac.com/personnel/config"
	"axiapac.com/personnel/core"
	"axiapac.com/personnel/infrastructure/logging"
	"axiapac.com/personnel/security"
	"axiapac.com/personnel/utils"
	"axiapac.com/personnel/web/handlers/attendance"
	"axiapac.com/personnel/web/handlers/dashboard"
	"axiapac.com/personnel/web/handlers/display"
	"axiapac.com/personnel/web/handlers/leave"
	"axiapac.com/personnel/web/handlers/notification"
	"axiapac.com/personnel/web/handlers/personnel"
	"axiapac.com/personnel/web/handlers/preference"
	"axiapac.com/personnel/web/handlers/qrcode"
	"axiapac.com/personnel/web/handlers/report"
	"axiapac.com/personnel/web/handlers/screen"
	"axiapac.com/personnel/web/handlers/sms"
	"axiapac.com/personnel/web/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// NewRouter mounts the kiosk API without authentication and everything else
// behind the bearer middleware.
func NewRouter(dm *core.DatabaseManager, verifier *security.Verifier, svc *app.Services, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.RequestLogger(log))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	kiosk := r.Group("/api/v1")
	display.Register(kiosk, dm, svc.Pairing)

	protected := r.Group("/api/v1")
	protected.Use(middlewares.Authentication(verifier))
	{
		protected.GET("/me", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"data": principalDTO(c)})
		})
		qrcode.Register(protected, dm, svc.Issuer, cfg.TokenTTL(), svc.Alerter)
		screen.Register(protected, dm, svc.Registry, svc.Alerter)
		attendance.Register(protected, dm, svc.Recorder)
		leave.Register(protected, dm, svc.Workflow)
		notification.Register(protected, dm, svc.Broadcaster)
		sms.Register(protected, dm, svc.SMS)
		dashboard.Register(protected, dm, svc.Aggregator)
		report.Register(protected, dm, svc.Recorder, svc.Archiver)
		preference.Register(protected, dm, svc.Clock)
		personnel.Register(protected, dm)
	}

	return r
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logging.New("info", "console")
		boot.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	secret, err := cfg.Secret()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid signing secret")
	}
	verifier := security.NewVerifier(secret)
	verifier.OnUnknownPermission = func(subject string, unknown []string) {
		log.Warn().Str("subject", subject).Strs("permissions", unknown).Msg("dropped unknown permissions")
	}

	dm, err := app.OpenDatabase(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer dm.Close()

	collab, err := app.NewCollaborators(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure integrations")
	}
	svc := app.NewServices(cfg, utils.SystemClock(), collab, log)

	if cfg.QRRotationEnabled {
		go svc.Rotator.Run(ctx, dm.DB)
	}

	if cfg.LogFormat != "console" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(dm, verifier, svc, cfg, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
