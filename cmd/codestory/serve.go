package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/codestory/codestory/internal/controller"
)

// newServeCommand runs a long-lived process that keeps the project
// indexed on a schedule and exposes a debug HTTP surface. This is not
// the engine's product transport (an embedding UI or MCP server talks
// to Controller in-process); it exists only for operators running
// codestory standalone who want a health/metrics endpoint and periodic
// incremental refresh without wiring their own scheduler.
func newServeCommand() *cobra.Command {
	var (
		addr     string
		schedule string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a background incremental-refresh scheduler with a debug HTTP surface",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := openController()
			defer c.Close()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-sigCh
				cancel()
			}()

			sched := cron.New()
			if _, err := sched.AddFunc(schedule, func() {
				if cerr := c.StartIndexing(controller.ModeIncremental); cerr != nil {
					fmt.Fprintf(os.Stderr, "scheduled refresh failed: %v\n", cerr)
				}
			}); err != nil {
				return fmt.Errorf("invalid --schedule %q: %w", schedule, err)
			}
			sched.Start()
			defer sched.Stop()

			srv := &http.Server{Addr: addr, Handler: debugRouter(c), ReadHeaderTimeout: 10 * time.Second}
			go func() {
				<-ctx.Done()
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			fmt.Fprintf(os.Stderr, "serving debug endpoints on %s, incremental refresh on %q\n", addr, schedule)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8787", "debug HTTP listen address")
	cmd.Flags().StringVar(&schedule, "schedule", "@every 5m", "cron schedule for incremental refresh")
	return cmd
}

// debugRouter serves /healthz, /metrics, and a minimal read-only /stats
// view over the open project — an operator surface, not the product's
// query API.
func debugRouter(c *controller.Controller) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	reg := prometheus.NewRegistry()
	reg.MustRegister(newTelemetryCollector(c))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
		summary, cerr := c.ProjectSummary()
		if cerr != nil {
			http.Error(w, cerr.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(summary)
	})
	return r
}

// telemetryCollector exposes the controller's resolver telemetry as
// prometheus counters, read fresh on each scrape.
type telemetryCollector struct {
	c            *controller.Controller
	phaseDesc    *prometheus.Desc
	strategyDesc *prometheus.Desc
}

func newTelemetryCollector(c *controller.Controller) *telemetryCollector {
	return &telemetryCollector{
		c: c,
		phaseDesc: prometheus.NewDesc("codestory_resolver_phase_seconds_total",
			"Cumulative time spent in each resolver phase.", []string{"phase"}, nil),
		strategyDesc: prometheus.NewDesc("codestory_resolver_strategy_hits_total",
			"Resolution decisions per strategy.", []string{"strategy"}, nil),
	}
}

func (t *telemetryCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- t.phaseDesc
	ch <- t.strategyDesc
}

func (t *telemetryCollector) Collect(ch chan<- prometheus.Metric) {
	tel := t.c.ResolverTelemetry()
	if tel == nil {
		return
	}
	for phase, d := range tel.Durations() {
		ch <- prometheus.MustNewConstMetric(t.phaseDesc, prometheus.CounterValue, d.Seconds(), string(phase))
	}
	for strategy, hits := range tel.StrategyHits() {
		label := string(strategy)
		if label == "" {
			label = "unresolved"
		}
		ch <- prometheus.MustNewConstMetric(t.strategyDesc, prometheus.CounterValue, float64(hits), label)
	}
}
