package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"github.com/ziflex/lecho/v3"

	"k3l.io/go-amge/pkg/server"
)

var (
	listenAddress string
	tls           bool
	certPathname  string
	keyPathname   string
	serveCmd      = &cobra.Command{
		Use:   "serve",
		Short: "Serve the restriction API",
		Long: `Serve the restriction API under /amge/v1:

  POST   /restrictions              build a restriction matrix
  GET    /restrictions/{id}         build summary
  GET    /restrictions/{id}/matrix  matrix CSV
  DELETE /restrictions/{id}`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.PersistentFlags().StringVar(&listenAddress, "listen-address",
		"", `server listen address to bind to
(default: automatically choose based upon --tls and effective user ID)`)
	serveCmd.PersistentFlags().BoolVar(&tls, "tls", false, "serve over TLS")
	serveCmd.PersistentFlags().StringVar(&certPathname, "tls-cert",
		"server.crt",
		"TLS server certificate pathname")
	serveCmd.PersistentFlags().StringVar(&keyPathname, "tls-key", "server.key",
		"TLS server private key pathname")
}

func defaultListenAddress() string {
	port := 80
	if tls {
		port = 443
	}
	if os.Geteuid() != 0 {
		port += 8000
	}
	return fmt.Sprintf(":%d", port)
}

func runServe(cmd *cobra.Command, args []string) error {
	e := echo.New()
	e.HideBanner = true
	eLogger := lecho.From(logger)
	e.Logger = eLogger
	e.Use(
		middleware.RequestID(),
		middleware.CORS(),
		lecho.Middleware(lecho.Config{Logger: eLogger, NestKey: "req"}),
	)
	if err := server.NewServer().Register(e, "/amge/v1"); err != nil {
		logger.Err(err).Msg("cannot set up API")
		return err
	}
	if listenAddress == "" {
		listenAddress = defaultListenAddress()
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	served := make(chan error, 1)
	go func() {
		if tls {
			served <- e.StartTLS(listenAddress, certPathname, keyPathname)
		} else {
			served <- e.Start(listenAddress)
		}
	}()
	select {
	case err := <-served:
		logger.Err(err).Msg("server did not start")
		return err
	case <-ctx.Done():
	}
	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Err(err).Msg("server did not shut down gracefully")
		return err
	}
	if err := <-served; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
