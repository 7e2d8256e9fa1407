package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bikeshrana/quant-research-platform/internal/backtest"
	"github.com/bikeshrana/quant-research-platform/internal/cmdsupport"
	"github.com/bikeshrana/quant-research-platform/internal/config"
	"github.com/bikeshrana/quant-research-platform/internal/obsmetrics"
	"github.com/bikeshrana/quant-research-platform/internal/strategy"
)

func main() {
	symbol := flag.String("symbol", "PETR4", "Symbol to backtest")
	strategyName := flag.String("strategy", "TrendFollowing", "Strategy to backtest (see -list)")
	barsPath := flag.String("bars", "", "Path to a CSV bar file (timestamp,open,high,low,close,volume)")
	configPath := flag.String("config", "configs/config.yaml", "Path to process config")
	capital := flag.Float64("capital", 0, "Initial capital override (0 uses config default)")
	outputDir := flag.String("output", "", "Output directory override (empty uses config default)")
	jsonOut := flag.Bool("json", false, "Print the JSON report instead of the console report")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	list := flag.Bool("list", false, "List registered strategies and exit")
	flag.Parse()

	if *list {
		for _, n := range strategy.Names() {
			fmt.Println(n)
		}
		return
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	logger := log.With().Str("component", "cmd.backtest").Logger()

	if *barsPath == "" {
		logger.Fatal().Msg("-bars is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	bt := backtest.DefaultConfig()
	if *capital > 0 {
		bt.InitialCapital = *capital
	} else {
		bt.InitialCapital = cfg.Backtest.InitialCapital
	}

	dir := *outputDir
	if dir == "" {
		dir = cfg.Backtest.OutputDir
	}

	s, err := strategy.New(*strategyName)
	if err != nil {
		logger.Fatal().Err(err).Msg("unknown strategy")
	}

	bars, err := cmdsupport.LoadBarCSV(*barsPath, *symbol, "1d")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load bars")
	}

	signals, err := s.Compute(bars, s.DefaultParams())
	if err != nil {
		logger.Fatal().Err(err).Msg("strategy compute failed")
	}

	metrics := obsmetrics.New("quant_research")
	engine := backtest.NewEngine(logger)
	result, err := engine.Run(*symbol, bars, signals, bt)
	if err != nil {
		logger.Fatal().Err(err).Msg("backtest run failed")
	}
	metrics.BacktestRunsTotal.WithLabelValues(s.Name(), *symbol).Inc()

	if *jsonOut {
		report := backtest.NewReport(s.Name(), result)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			logger.Fatal().Err(err).Msg("failed to encode report")
		}
		return
	}

	reportGen := backtest.NewReportGenerator(result)
	fmt.Println(reportGen.GenerateConsoleReport())

	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error().Err(err).Msg("failed to create output directory")
	} else if err := reportGen.SaveToFile(dir); err != nil {
		logger.Error().Err(err).Msg("failed to save report")
	} else {
		logger.Info().Str("directory", filepath.Clean(dir)).Msg("detailed report saved")
	}

	m := result.Metrics
	event := logger.Info().
		Float64("return_pct", m.TotalReturnPct).
		Float64("max_dd_pct", m.MaxDrawdownPct).
		Int("trades", m.TotalTrades)
	if m.SharpeRatio != nil {
		event = event.Float64("sharpe", *m.SharpeRatio)
	}
	event.Msg("backtest completed")
}
