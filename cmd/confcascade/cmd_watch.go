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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ruminaider/confcascade/internal/config"
	"github.com/ruminaider/confcascade/internal/workspace"
	"github.com/spf13/cobra"
)

var watchMetricsAddr string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reload the configuration whenever local assistants change",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a.handler.Subscribe(func(res config.LoadResult) {
			printReload(a.handler.SelectedOrgID(), res)
		})

		if watchMetricsAddr != "" {
			srv := &http.Server{
				Addr:              watchMetricsAddr,
				Handler:           promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}),
				ReadHeaderTimeout: 5 * time.Second,
			}
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					a.logger.Error("metrics server failed", "error", err)
				}
			}()
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()
			a.logger.Info("serving metrics", "addr", watchMetricsAddr)
		}

		if _, err := a.handler.Cascade(ctx); err != nil {
			return err
		}

		dirs, err := a.workspace.WatchPaths(ctx)
		if err != nil {
			return err
		}
		fmt.Println("Watching for changes, Ctrl+C to stop.")
		return workspace.Watch(ctx, dirs, a.settings.Watch.Debounce, a.logger, func() {
			if _, err := a.handler.RefreshAll(ctx); err != nil {
				a.logger.Error("refresh failed", "error", err)
			}
		})
	},
}

func printReload(orgID string, res config.LoadResult) {
	ts := time.Now().Format(time.TimeOnly)
	if res.ConfigLoadInterrupted {
		fmt.Printf("[%s] %s: no profiles selected\n", ts, orgID)
		return
	}
	models := 0
	if res.Config != nil {
		models = len(res.Config.ModelsFor(config.RoleChat))
	}
	fmt.Printf("[%s] %s: reloaded, %d chat model(s), %d validation error(s)\n", ts, orgID, models, len(res.Errors))
}

func init() {
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9464)")
}
