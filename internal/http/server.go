// Package http serves health checks and Prometheus metrics.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"songfetch/internal/core"
)

type Server struct {
	config  *core.ServerConfig
	logger  *zap.Logger
	server  *http.Server
	metrics *Metrics
}

// Metrics implements core.Metrics on top of Prometheus collectors.
type Metrics struct {
	JobsTotal      *prometheus.CounterVec
	DownloadsTotal *prometheus.CounterVec
	SearchesTotal  prometheus.Counter
	StepDuration   *prometheus.HistogramVec
	ActiveJobs     prometheus.Gauge
}

func NewServer(config *core.ServerConfig, logger *zap.Logger) *Server {
	metrics := &Metrics{
		JobsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "songfetch_jobs_total",
				Help: "Total number of jobs by terminal outcome",
			},
			[]string{"outcome"},
		),
		DownloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "songfetch_downloads_total",
				Help: "Total number of audio downloads",
			},
			[]string{"status"},
		),
		SearchesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "songfetch_searches_total",
				Help: "Total number of text searches executed",
			},
		),
		StepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "songfetch_job_step_duration_seconds",
				Help:    "Time spent in each pipeline step",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"step"},
		),
		ActiveJobs: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "songfetch_active_jobs",
				Help: "Number of jobs currently in flight",
			},
		),
	}

	prometheus.MustRegister(
		metrics.JobsTotal,
		metrics.DownloadsTotal,
		metrics.SearchesTotal,
		metrics.StepDuration,
		metrics.ActiveJobs,
	)

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"songfetch"}`))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready","service":"songfetch"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      mux,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	return &Server{
		config:  config,
		logger:  logger.Named("http"),
		server:  server,
		metrics: metrics,
	}
}

func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
		}
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

func (s *Server) GetMetrics() *Metrics {
	return s.metrics
}

// RecordJob counts one finished job under its terminal outcome.
func (m *Metrics) RecordJob(outcome string) {
	m.JobsTotal.WithLabelValues(outcome).Inc()
}

// RecordDownload counts one download attempt by status.
func (m *Metrics) RecordDownload(status string) {
	m.DownloadsTotal.WithLabelValues(status).Inc()
}

// RecordSearch counts one executed text search.
func (m *Metrics) RecordSearch() {
	m.SearchesTotal.Inc()
}

// ObserveStep records the wall time of one pipeline step.
func (m *Metrics) ObserveStep(step string, d time.Duration) {
	m.StepDuration.WithLabelValues(step).Observe(d.Seconds())
}

// SetActiveJobs publishes the number of in-flight jobs.
func (m *Metrics) SetActiveJobs(n int) {
	m.ActiveJobs.Set(float64(n))
}
