package kcal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/saadjs/kcal-sync/internal/metrics"
	"github.com/saadjs/kcal-sync/internal/model"
)

var (
	watchInterval    time.Duration
	watchMetricsAddr string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep today's summary reconciled on an interval",
	RunE: func(cmd *cobra.Command, args []string) error {
		if watchInterval < time.Second {
			return fmt.Errorf("--interval must be at least 1s")
		}
		return withSession(cmd, func(ctx context.Context, s *session) error {
			if watchMetricsAddr != "" {
				srv := &http.Server{Addr: watchMetricsAddr, Handler: metricsMux(), ReadHeaderTimeout: 5 * time.Second}
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						s.log.WithError(err).Error("metrics server stopped")
					}
				}()
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
				s.log.WithField("addr", watchMetricsAddr).Info("serving metrics")
			}

			if err := s.controller.Load(ctx); err != nil {
				s.log.WithError(err).Warn("initial load failed")
			}
			if _, err := s.warmCatalog(ctx); err != nil {
				return nil
			}
			printSummary(cmd.OutOrStdout(), s.controller.Summary())

			ticker := time.NewTicker(watchInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					before := s.controller.Summary()
					if err := s.controller.Refresh(ctx); err != nil {
						if ctx.Err() != nil {
							return nil
						}
						continue
					}
					after := s.controller.Summary()
					if summaryChanged(before, after) {
						printSummary(cmd.OutOrStdout(), after)
					}
				}
			}
		})
	},
}

// summaryChanged ignores the record id pointer, which is new on every fetch.
func summaryChanged(a, b model.DailySummary) bool {
	a.DailyLogID, b.DailyLogID = nil, nil
	return a != b
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchInterval, "interval", time.Minute, "Refresh interval")
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9110)")
}
