package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/anaqatech/brand-landing/pkg/api"
	"github.com/anaqatech/brand-landing/pkg/clients/cloudinary"
	"github.com/anaqatech/brand-landing/pkg/clients/formspree"
	"github.com/anaqatech/brand-landing/pkg/config"
	"github.com/anaqatech/brand-landing/pkg/metrics"
	"github.com/anaqatech/brand-landing/pkg/services"
)

const sweepInterval = time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the landing page server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log := appConfig, appLog

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.New(registry)

	// Initialize API clients
	cloudinaryClient := cloudinary.NewClient(cfg.CloudinaryBaseURL, cfg.CloudinaryCloudName, nil)
	formspreeClient := formspree.NewClient(cfg.FormspreeBaseURL, cfg.FormspreeFormID, &http.Client{Timeout: cfg.UploadTimeout})

	// Initialize services
	sessions := services.NewSessionRegistry(cfg.SessionTTL, func() *services.UploadOrchestrator {
		return services.NewUploadOrchestrator(cloudinaryClient, cfg.CloudinaryUploadPreset, cfg.UploadTimeout, recorder, log)
	})
	submissionService := services.NewLandingSubmissionService(formspreeClient, recorder, log)

	gin.SetMode(cfg.GinMode)

	handlers := api.NewHandlers(sessions, submissionService, cfg, log)
	router, err := api.NewRouter(handlers, registry, log)
	if err != nil {
		return err
	}

	return serve(cmd.Context(), cfg, router, sessions, log)
}

func serve(parent context.Context, cfg *config.Config, handler http.Handler, sessions *services.SessionRegistry, log *zap.Logger) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Covers a logo upload plus the media host round trip
		WriteTimeout:   cfg.UploadTimeout + 15*time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go sessions.Run(ctx, sweepInterval, func(removed int) {
		if removed > 0 {
			log.Debug("Swept idle upload sessions", zap.Int("removed", removed), zap.Int("active", sessions.Len()))
		}
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("port", cfg.Port), zap.Bool("form_relay", cfg.FormRelay))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("error starting server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	log.Info("Server exited")
	return nil
}
