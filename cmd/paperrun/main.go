package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bikeshrana/quant-research-platform/internal/backtest"
	"github.com/bikeshrana/quant-research-platform/internal/config"
	"github.com/bikeshrana/quant-research-platform/internal/paperrunner"
	"github.com/bikeshrana/quant-research-platform/internal/strategy"
	"github.com/bikeshrana/quant-research-platform/pkg/bar"
)

func main() {
	symbols := flag.String("symbols", "PETR4,VALE3,ITUB4", "Comma-separated symbols to watch")
	strategyName := flag.String("strategy", "TrendFollowing", "Strategy to run")
	timeframe := flag.String("timeframe", "1d", "Bar timeframe")
	configPath := flag.String("config", "configs/config.yaml", "Path to process config")
	dsn := flag.String("dsn", "", "Postgres DSN; empty uses an in-memory store")
	startingCash := flag.Float64("cash", 100000, "Starting paper cash balance")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	logger := log.With().Str("component", "cmd.paperrun").Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	s, err := strategy.New(*strategyName)
	if err != nil {
		logger.Fatal().Err(err).Msg("unknown strategy")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var storage paperrunner.Storage
	if *dsn != "" {
		pg, err := paperrunner.NewPostgresStorage(ctx, *dsn)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		defer pg.Close()
		if err := pg.Migrate(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to migrate paper runner schema")
		}
		storage = pg
		logger.Info().Msg("using postgres-backed storage")
	} else {
		storage = paperrunner.NewMemoryStorage()
		logger.Warn().Msg("using in-memory storage; positions do not survive a restart")
	}

	// The live data provider is an external collaborator this repository
	// does not implement; an empty MemoryProvider here means every tick
	// finds no bars until a caller wires a real feed in.
	provider := bar.NewMemoryProvider()

	runnerCfg := paperrunner.Config{
		Symbols:      strings.Split(*symbols, ","),
		Timeframe:    *timeframe,
		Lookback:     cfg.PaperRun.Lookback,
		MaxPositions: cfg.PaperRun.MaxPositions,
		Sizing:       backtest.DefaultConfig(),
	}
	runnerCfg.Sizing.InitialCapital = *startingCash

	runner, err := paperrunner.NewRunner(ctx, runnerCfg, s, s.DefaultParams(), provider, storage, *startingCash, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to start runner")
	}

	interval := time.Duration(cfg.PaperRun.ScanIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info().
		Strs("symbols", runnerCfg.Symbols).
		Str("strategy", s.Name()).
		Dur("interval", interval).
		Msg("paper runner started")

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("paper runner stopped")
			return
		case <-ticker.C:
			if err := runner.Tick(ctx); err != nil {
				logger.Error().Err(err).Msg("tick failed")
			}
		}
	}
}
