// Package main implements coordgate, a long-lived gateway that holds an
// authenticated coordinator session and exposes its health, state, and
// metrics over HTTP.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/clearport/session_layer/coordinator/client"
	"github.com/clearport/session_layer/internal/config"
	"github.com/clearport/session_layer/internal/signer"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("load config")
	}

	log := newLogger(cfg.Log)

	key, err := signer.FromHex(cfg.Coordinator.PrivateKey)
	if err != nil {
		log.Fatal().Err(err).Msg("parse private key")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())

	c, err := client.New(client.Config{
		URL:            cfg.Coordinator.URL,
		Key:            key,
		AppName:        cfg.Coordinator.AppName,
		Scope:          cfg.Coordinator.Scope,
		RequestTimeout: cfg.Coordinator.RequestTimeout(),
		Backoff: client.BackoffConfig{
			BaseDelay:   cfg.Coordinator.ReconnectBaseDelay(),
			MaxDelay:    30 * time.Second,
			MaxAttempts: cfg.Coordinator.ReconnectMaxAttempts,
		},
		Logger:  log.With().Str("component", "client").Logger(),
		Metrics: client.NewMetrics(reg),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("create client")
	}

	// Surface connection-level failures in the gateway log.
	c.Subscribe(client.CategoryError, func(category string, payload json.RawMessage) {
		log.Error().RawJSON("payload", payload).Msg("coordinator connection error")
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := c.Connect(ctx); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("connect to coordinator")
	}
	cancel()
	log.Info().
		Str("address", c.Address()).
		Str("session_id", c.SessionID()).
		Msg("coordinator session established")

	r := mux.NewRouter()
	r.HandleFunc("/healthz", handleHealth(c)).Methods(http.MethodGet)
	r.HandleFunc("/status", handleStatus(c)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	c.Disconnect()
}

func newLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var out = os.Stderr
	logger := zerolog.New(out)
	if cfg.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out})
	}
	return logger.Level(level).With().Timestamp().Logger()
}

func handleHealth(c *client.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !c.IsAuthenticated() {
			http.Error(w, "coordinator session down", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

func handleStatus(c *client.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := struct {
			State         string    `json:"state"`
			Authenticated bool      `json:"authenticated"`
			Address       string    `json:"address"`
			SessionID     string    `json:"session_id,omitempty"`
			TokenExpiry   time.Time `json:"token_expiry,omitempty"`
		}{
			State:         c.State().String(),
			Authenticated: c.IsAuthenticated(),
			Address:       c.Address(),
			SessionID:     c.SessionID(),
			TokenExpiry:   c.TokenExpiry(),
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(status)
	}
}
