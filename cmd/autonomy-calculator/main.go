package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rshade/fuel-autonomy-calculator/internal/autonomy"
	"github.com/rshade/fuel-autonomy-calculator/internal/config"
	"github.com/rshade/fuel-autonomy-calculator/internal/report"
	"github.com/rshade/fuel-autonomy-calculator/internal/service"
)

const usage = `usage: autonomy-calculator <command> [flags]

commands:
  calc    compute autonomy and cost per km once
  serve   run the gRPC calculation service
`

const shutdownTimeout = 10 * time.Second

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(stderr, "[autonomy-calculator] Failed to load .env: %v\n", err)
	}

	logger := newLogger(stderr)

	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	switch args[0] {
	case "calc":
		opts, err := parseCalcOptions(args[1:], stderr)
		if err != nil {
			fmt.Fprintf(stderr, "[autonomy-calculator] %v\n", err)
			return 2
		}
		if err := runCalc(opts, stdout, logger); err != nil {
			logger.Error().Err(err).Msg("calculation failed")
			return 1
		}
		return 0

	case "serve":
		opts, err := parseServeOptions(args[1:], stderr)
		if err != nil {
			fmt.Fprintf(stderr, "[autonomy-calculator] %v\n", err)
			return 2
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := runServe(ctx, opts, logger); err != nil {
			logger.Error().Err(err).Msg("server failed")
			return 1
		}
		return 0

	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0

	default:
		fmt.Fprintf(stderr, "[autonomy-calculator] unknown command %q\n%s", args[0], usage)
		return 2
	}
}

// loadConfig resolves defaults, file and environment, then validates.
func loadConfig(path string, logger zerolog.Logger) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(logger)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runCalc(opts *calcOptions, stdout io.Writer, logger zerolog.Logger) error {
	cfg, err := loadConfig(opts.ConfigPath, logger)
	if err != nil {
		return err
	}

	eff := cfg.Efficiency()
	res, evalErr := autonomy.Evaluate(autonomy.Input{
		EthanolPrice:  opts.EthanolPrice,
		GasolinePrice: opts.GasolinePrice,
		TankCapacity:  opts.TankCapacity,
	}, eff)
	if evalErr != nil {
		logger.Debug().Err(evalErr).Msg("invalid numeric input, showing zero result")
	}

	rep := report.Build(res, eff, cfg.CurrencySymbol, evalErr == nil)

	switch opts.Format {
	case formatJSON:
		data, err := rep.JSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, string(data))
		return err
	default:
		_, err := io.WriteString(stdout, rep.Text())
		return err
	}
}

func runServe(ctx context.Context, opts *serveOptions, logger zerolog.Logger) error {
	cfg, err := loadConfig(opts.ConfigPath, logger)
	if err != nil {
		return err
	}

	calc, err := autonomy.NewCalculator(cfg.Efficiency())
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := service.NewMetrics(registry)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}

	svc := service.New(calc, logger, metrics)
	grpcServer, healthServer := service.NewGRPCServer(svc)

	lis, err := net.Listen("tcp", opts.ListenAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", opts.ListenAddr, err)
	}

	if opts.ConfigPath != "" {
		go func() {
			err := config.Watch(ctx, opts.ConfigPath, logger, func(next *config.Config) {
				if err := svc.UpdateEfficiency(next.Efficiency()); err != nil {
					logger.Error().Err(err).Msg("rejected efficiency update")
				}
			})
			if err != nil {
				logger.Error().Err(err).Str("path", opts.ConfigPath).Msg("config watcher stopped")
			}
		}()
	}

	var metricsServer *http.Server
	if opts.MetricsListenAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		metricsServer = &http.Server{
			Addr:              opts.MetricsListenAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info().Str("addr", opts.MetricsListenAddr).Msg("starting metrics endpoint")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("metrics endpoint failed")
			}
		}()
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", lis.Addr().String()).
			Float64("ethanol_km_per_liter", cfg.EthanolKmPerLiter).
			Float64("gasoline_km_per_liter", cfg.GasolineKmPerLiter).
			Msg("starting autonomy service")
		serveErr <- grpcServer.Serve(lis)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
		logger.Info().Msg("received shutdown signal")
	}

	healthServer.SetServingStatus(service.ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics shutdown failed")
		}
	}

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-shutdownCtx.Done():
		grpcServer.Stop()
	}
	return nil
}
