// Command bianchi prints the saturation throughput of an 802.11 DCF network
// for a list of station counts.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/alexshd/bianchi"
	"github.com/alexshd/bianchi/internal/config"
	"github.com/alexshd/bianchi/internal/report"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		slog.Error("bianchi failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("bianchi", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "path to YAML configuration")
	stations := fs.String("stations", "", "comma-separated station counts (overrides config)")
	strategy := fs.String("strategy", "", "root finder: bisection or scan")
	tolerance := fs.Float64("tolerance", 0, "root finder tolerance (0 = strategy default)")
	workers := fs.Int("workers", 0, "station counts solved concurrently")
	crossCheck := fs.Bool("crosscheck", false, "also solve with the other strategy and compare")
	simulate := fs.Bool("simulate", false, "also run the slot-level simulator")
	simDuration := fs.Duration("sim-duration", 0, "simulated channel time per replication")
	xlsxPath := fs.String("xlsx", "", "write results workbook to this path")
	metricsPath := fs.String("metrics-file", "", "write Prometheus textfile to this path")
	logLevel := fs.String("log-level", "", "debug, info, warn or error")
	logFormat := fs.String("log-format", "", "text or json")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	// Explicitly set flags win over the file.
	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "stations":
			counts, err := parseStations(*stations)
			if err != nil {
				flagErr = err
				return
			}
			cfg.Sweep.Stations = counts
		case "strategy":
			cfg.Sweep.Strategy = *strategy
		case "tolerance":
			cfg.Sweep.Tolerance = *tolerance
		case "workers":
			cfg.Sweep.Workers = *workers
		case "crosscheck":
			cfg.Sweep.CrossCheck = *crossCheck
		case "simulate":
			cfg.Simulation.Enabled = *simulate
		case "sim-duration":
			cfg.Simulation.Duration = *simDuration
		case "xlsx":
			cfg.Report.XLSX = *xlsxPath
		case "metrics-file":
			cfg.Report.MetricsFile = *metricsPath
		case "log-level":
			cfg.Log.Level = *logLevel
		case "log-format":
			cfg.Log.Format = *logFormat
		}
	})
	if flagErr != nil {
		return flagErr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(stderr, cfg.Log)
	slog.SetDefault(logger)

	sweep := cfg.SweepConfig()
	sweep.Logger = logger

	logger.Info("solving saturation throughput",
		"stations", len(sweep.Stations),
		"strategy", sweep.Strategy,
		"workers", sweep.Workers,
		"simulate", sweep.Simulate,
	)

	start := time.Now()
	results, err := bianchi.Run(ctx, cfg.Params(), sweep)
	if err != nil {
		return err
	}
	logger.Info("sweep complete", "elapsed", time.Since(start))

	if err := report.WriteText(stdout, results); err != nil {
		return err
	}
	if sweep.CrossCheck {
		if err := report.WriteCrossCheck(stdout, results); err != nil {
			return err
		}
	}
	if sweep.Simulate {
		if err := report.WriteSimulation(stdout, results); err != nil {
			return err
		}
	}

	if usl, err := bianchi.FitContention(bianchi.Points(results)); err != nil {
		logger.Debug("contention fit skipped", "reason", err)
	} else {
		logger.Info("contention fit",
			"lambda_mbps", usl.Lambda/1e6,
			"alpha", usl.Alpha,
			"beta", usl.Beta,
			"r2", usl.RSquared,
		)
	}

	if cfg.Report.XLSX != "" {
		if err := report.WriteXLSX(cfg.Report.XLSX, results); err != nil {
			return err
		}
		logger.Info("workbook written", "path", cfg.Report.XLSX)
	}

	if cfg.Report.MetricsFile != "" {
		col, err := report.NewCollector()
		if err != nil {
			return err
		}
		col.Observe(results)
		if err := col.WriteTextfile(cfg.Report.MetricsFile); err != nil {
			return err
		}
		logger.Info("metrics written", "path", cfg.Report.MetricsFile)
	}

	return nil
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	level := parseLevel(cfg.Level)
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
	}))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseStations(s string) ([]int, error) {
	var counts []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("invalid station count %q: %w", field, err)
		}
		counts = append(counts, n)
	}
	if len(counts) == 0 {
		return nil, fmt.Errorf("no station counts in %q", s)
	}
	return counts, nil
}
