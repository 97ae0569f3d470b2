package main

import (
	"os"
	"os/signal"
	"syscall"

	"leverage-calc/internal/advisor"
	"leverage-calc/internal/api"
	"leverage-calc/internal/cfg"
	"leverage-calc/internal/metrics"
	"leverage-calc/internal/notify"
	"leverage-calc/internal/params"
	"leverage-calc/internal/storage"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()

	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	m := metrics.New()

	store := initializeStorage(c)
	if store != nil {
		defer store.Close()
	}

	paramStore := newParamStore(store, m)

	adv := advisor.NewClient(c.AdvisoryURL, c.AdvisoryAPIKey, c.RESTTimeout)
	adv.SetMetrics(m)

	notifier := notify.NewSender(c.NotifyURL, c.RESTTimeout)

	server := api.New(paramStore, adv, notifier, m, c.ListenPort)
	if err := server.Start(); err != nil {
		log.Fatal().Err(err).Msg("api server start failed")
	}

	waitForShutdown(server)
}

// initializeStorage opens durable storage when DATA_PATH is configured.
// The service stays fully usable in memory when it is not.
func initializeStorage(c cfg.Settings) *storage.Store {
	if c.DataPath == "" {
		log.Info().Msg("no data path configured, session state is in-memory only")
		return nil
	}

	store, err := storage.New(c.DataPath)
	if err != nil {
		log.Warn().Err(err).Msg("storage initialization failed, continuing without persistence")
		return nil
	}
	return store
}

func newParamStore(store *storage.Store, m *metrics.Metrics) *params.Store {
	var port params.Port
	if store != nil {
		port = store
	}
	ps := params.NewStore(port)
	ps.SetMetrics(m)

	p := ps.Get()
	log.Info().
		Float64("accountBalance", p.AccountBalance).
		Float64("riskPercentage", p.RiskPercentage).
		Str("activeView", string(p.ActiveView)).
		Msg("session parameters restored")

	return ps
}

func waitForShutdown(server *api.Server) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	log.Info().Str("signal", sig.String()).Msg("shutting down")
	if err := server.Stop(); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}
