package main

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
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"deploy_config/internal/infrastructure/network/client"
	"deploy_config/internal/infrastructure/restapi"
)

func (c *cli) serveCmd() *cobra.Command {
	var (
		addr    string
		noProbe bool
		flags   probeFlags
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the resolved config over a read-only HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, _, err := c.load()
			if err != nil {
				printProblems(cmd.ErrOrStderr(), err)
				return fmt.Errorf("config is invalid")
			}

			var handler *restapi.ConfigHandler
			if noProbe {
				handler = restapi.NewConfigHandler(svc, nil, c.log)
			} else {
				handler = restapi.NewConfigHandler(svc, client.NewChainProber(flags.proberConfig(), c.log), c.log)
			}

			gin.SetMode(gin.ReleaseMode)
			srv := &http.Server{
				Addr:         addr,
				Handler:      restapi.SetupRouter(handler, c.accessLogger(cmd)),
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 30 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				c.log.Info("Server starting", "addr", addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("failed to start server: %w", err)
				}
				return nil
			case <-quit:
			}
			c.log.Info("Shutting down server...")

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}
			c.log.Info("Server exiting")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noProbe, "no-probe", false, "disable the probe route")
	flags.register(cmd)
	return cmd
}

// accessLogger builds the JSON request logger written to stdout.
func (c *cli) accessLogger(cmd *cobra.Command) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(cmd.OutOrStdout())

	level, err := logrus.ParseLevel(c.logLevel)
	if err != nil {
		c.log.Warn("Invalid log level for access log, defaulting to info", "input", c.logLevel)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}
