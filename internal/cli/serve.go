package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"driver_dashboard/internal/config"
	"driver_dashboard/internal/handler"
	"driver_dashboard/internal/logger"
	"driver_dashboard/internal/repository"
	"driver_dashboard/internal/service"
	"driver_dashboard/internal/session"
	"driver_dashboard/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), rootOpts, port)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "override SERVER_PORT")
	return cmd
}

// buildHandler wires storage, services and the router for cfg.
// The returned cleanup releases the storage backend.
func buildHandler(ctx context.Context, cfg config.Config, log logger.ILogger) (http.Handler, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	gin.SetMode(cfg.GinMode)

	store, err := repository.Open(ctx, cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open storage: %w", err)
	}

	var authn service.Authenticator
	switch cfg.AuthStrategy {
	case config.AuthBcrypt:
		authn = service.NewBcryptAuthenticator(store.Users)
	default:
		log.Warning("demo authentication enabled: fixed passwords, do not use in production")
		authn = service.NewDemoAuthenticator(store.Users, service.DemoPasswords)
	}

	jwtUtil := utils.NewJWTUtil(cfg.JWTSecret, cfg.JWTExpirationHours)
	driverService := service.NewDriverService(store.Drivers, log)
	authService := service.NewAuthService(store.Users, authn, jwtUtil, log)

	router, err := handler.SetupRouter(handler.RouterDeps{
		Drivers:  driverService,
		Auth:     authService,
		Sessions: session.NewMemoryStore(cfg.SessionTTL),
		JWT:      jwtUtil,
		Storage:  store,
		Cookie: handler.CookieConfig{
			Name:   cfg.SessionCookieName,
			Secure: cfg.CookieSecure,
			MaxAge: cfg.SessionTTL,
		},
		Log: log,
	})
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to set up router: %w", err)
	}

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	return corsHandler(router), store.Close, nil
}

func runServe(ctx context.Context, opts *RootOptions, port int) error {
	cfg := opts.Config
	log := opts.Log
	defer log.Sync()

	if port > 0 {
		cfg.ServerPort = port
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h, cleanup, err := buildHandler(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.ServerPort),
		Handler: h,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", logger.Int("port", cfg.ServerPort), logger.String("storage", cfg.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exiting")
	return nil
}
