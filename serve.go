package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/princinho/climaquote/config"
	"github.com/princinho/climaquote/controllers"
	"github.com/princinho/climaquote/extract"
	"github.com/princinho/climaquote/metrics"
	"github.com/princinho/climaquote/middleware"
	"github.com/princinho/climaquote/notify"
	"github.com/princinho/climaquote/quote"
	"github.com/princinho/climaquote/render"
	"github.com/princinho/climaquote/storage"
	"github.com/princinho/climaquote/utils"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	log := config.NewLogger(cfg.Logging)
	log.Info().Str("addr", cfg.Server.Addr()).Msg("starting climaquote")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("close record store")
		}
	}()

	if err := utils.SeedCompany(ctx, st.company, log); err != nil {
		return err
	}

	blobs, err := storage.Open(ctx, cfg.Storage.Blob())
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}
	if c, ok := blobs.(io.Closer); ok {
		defer c.Close()
	}

	var extractor extract.Extractor = extract.Disabled{}
	if cfg.OpenAI.APIKey != "" {
		extractor = extract.NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.Timeout, log)
	} else {
		log.Info().Msg("openai.api_key not set, product extraction disabled")
	}

	smtp := cfg.SMTP.Notify()
	if !smtp.Enabled() {
		log.Warn().Msg("smtp not configured, quotes will not be emailed")
	}

	jwtSecret := []byte(cfg.Auth.JWTSecret)
	if len(jwtSecret) == 0 {
		log.Warn().Msg("auth.jwt_secret not set, operator sessions end on restart")
		jwtSecret = []byte(uuid.NewString() + uuid.NewString())
	}
	if cfg.Auth.AdminSecret == "" && cfg.Auth.AdminSecretHash == "" {
		log.Warn().Msg("no operator secret configured, the admin API rejects every login")
	}

	app := &controllers.App{
		Products: st.products,
		Company:  st.company,
		Quotes: quote.NewService(quote.Deps{
			Quotes:        st.quotes,
			Products:      st.products,
			Company:       st.company,
			Blobs:         blobs,
			Renderer:      render.NewPDF(),
			Notifier:      notify.New(smtp, log),
			Images:        render.NewHTTPImages(cfg.Server.ImageTimeout),
			PublicBaseURL: cfg.Server.PublicBaseURL,
			Log:           log,
		}),
		Blobs:     blobs,
		Extractor: extractor,
		Uploads:   utils.NewFileValidator(cfg.Uploads.MaxSizeMB, cfg.Uploads.AllowedExtensions, cfg.Uploads.AllowedMimeTypes),
		Auth: controllers.AuthSettings{
			SecretHash: cfg.Auth.AdminSecretHash,
			Secret:     cfg.Auth.AdminSecret,
			JWTSecret:  jwtSecret,
			TokenTTL:   cfg.Auth.TokenTTL,
		},
		Log: log,
	}

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.MaxMultipartMemory = int64(cfg.Uploads.MaxSizeMB) << 21

	allowedOrigins := map[string]bool{}
	for _, origin := range cfg.Server.AllowedOrigins {
		if origin != "" {
			allowedOrigins[origin] = true
		}
	}
	log.Info().Strs("origins", cfg.Server.AllowedOrigins).Msg("allowed origins")
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowedOrigins[origin]
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept-Language"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RequestLogger(log))
	r.Use(metrics.Middleware())
	r.Use(gin.Recovery())

	if local, ok := blobs.(*storage.Local); ok {
		r.Static("/files", local.Dir())
	}

	limiter := middleware.NewIPRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	controllers.Register(r, app, middleware.RateLimit(limiter))

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}
