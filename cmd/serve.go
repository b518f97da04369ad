package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/panotour/internal/bridge"
	"github.com/ziadkadry99/panotour/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Host tour sessions for browser viewers over WebSocket",
	Long: `Starts an HTTP server exposing /ws/tour/{tourID}. Every connection gets its
own tour session: the browser renders the panoramas and reports scene
changes, panotour runs the guide dialogue against the backend.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		port := cfg.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		srv := server.New(server.Config{Port: port, AllowAll: cfg.AllowAllOrigins}, logger)
		br := bridge.New(newTourRepository(cfg), newAssistantClient(cfg), sessionOptions(cfg, &logger),
			server.CheckOrigin(cfg.AllowAllOrigins), logger)
		br.RegisterRoutes(srv.Router())

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			if err := srv.Start(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			logger.Info().Int("active_sessions", br.ActiveSessions()).Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		logger.Info().Str("version", Version).Int("port", port).Str("api", cfg.APIBaseURL).Msg("panotour server starting")
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8090, "port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
