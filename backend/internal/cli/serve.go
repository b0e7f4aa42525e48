package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"marklist/backend/internal/gateway"
	"marklist/backend/internal/gateway/metrics"
	"marklist/backend/internal/shared"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and serve the frontend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := shared.LoadConfig()
			if port != "" {
				cfg.HTTP.Port = port
			}
			if err := shared.ValidateServeConfig(cfg); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides PORT)")
	return cmd
}

func runServe(ctx context.Context, cfg *shared.Config) error {
	log.Println("INFO: Starting Mark List Service...")
	if shared.IsDevelopment(cfg) {
		shared.PrintConfig(cfg)
	}

	// 1. Connect Store and Build Services
	services, err := gateway.NewServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer services.Close()

	// 2. Setup Routes and Middleware
	router := gateway.SetupRoutes(services, cfg, metrics.New())

	// 3. Configure Server
	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	// 4. Start Server in a Goroutine
	serveErr := make(chan error, 1)
	go func() {
		log.Printf("INFO: Server running on port %s", cfg.HTTP.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// 5. Graceful Shutdown
	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Println("INFO: Shutting down Mark List Service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("WARN: Graceful shutdown failed: %v", err)
	}

	log.Println("INFO: Mark List Service stopped.")
	return nil
}
