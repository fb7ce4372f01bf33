package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/Rorical/AgentDesk/internal/gateway/gatewaytest"
)

var (
	devPort  int
	devToken string
)

var devServerCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Run an in-memory support backend for local development",
	Long: `Run a fake support backend that implements the profile, upload and
language endpoints in memory. Point a profile at it with base_url
http://localhost:<port> and the same api_token.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		addr := fmt.Sprintf("localhost:%d", devPort)

		backend := gatewaytest.NewServer(
			gatewaytest.WithToken(devToken),
			gatewaytest.WithLogger(logger),
		)
		backend.SetPublicURL("http://" + addr)

		srv := &http.Server{
			Addr:              addr,
			Handler:           backend.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		logger.Info("dev backend listening", "addr", addr, "agent", backend.Agent().ID)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Dev server error: %v", err)
		}
	},
}

func init() {
	devServerCmd.Flags().IntVar(&devPort, "port", 8080, "port to listen on")
	devServerCmd.Flags().StringVar(&devToken, "token", "dev-token", "API token clients must send")
	rootCmd.AddCommand(devServerCmd)
}
