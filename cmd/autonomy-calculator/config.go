package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// logLevelEnvVar selects the log level (debug, info, warn, error).
const logLevelEnvVar = "AUTONOMY_LOG_LEVEL"

// Output formats accepted by the calc command.
const (
	formatText = "text"
	formatJSON = "json"
)

// calcOptions holds the flags of the calc command.
type calcOptions struct {
	EthanolPrice  string
	GasolinePrice string
	TankCapacity  string
	ConfigPath    string
	Format        string
}

// serveOptions holds the flags of the serve command.
type serveOptions struct {
	ListenAddr        string
	MetricsListenAddr string
	ConfigPath        string
}

func parseCalcOptions(args []string, output io.Writer) (*calcOptions, error) {
	opts := &calcOptions{}

	fs := flag.NewFlagSet("calc", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.EthanolPrice, "ethanol-price", "", "Ethanol price per liter")
	fs.StringVar(&opts.GasolinePrice, "gasoline-price", "", "Gasoline price per liter")
	fs.StringVar(&opts.TankCapacity, "tank", "", "Tank capacity in liters")
	fs.StringVar(&opts.ConfigPath, "config", "", "Path to YAML config file")
	fs.StringVar(&opts.Format, "format", formatText, "Output format: text or json")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	opts.Format = strings.ToLower(opts.Format)
	if opts.Format != formatText && opts.Format != formatJSON {
		return nil, fmt.Errorf("unsupported format %q (want %s or %s)", opts.Format, formatText, formatJSON)
	}
	return opts, nil
}

func parseServeOptions(args []string, output io.Writer) (*serveOptions, error) {
	opts := &serveOptions{}

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.ListenAddr, "listen", ":50051", "Address for the gRPC server")
	fs.StringVar(&opts.MetricsListenAddr, "metrics-listen", ":9090", "Address for the Prometheus metrics endpoint (empty disables it)")
	fs.StringVar(&opts.ConfigPath, "config", "", "Path to YAML config file, reloaded on change")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

// newLogger creates the process logger. The level comes from
// AUTONOMY_LOG_LEVEL; an unknown value falls back to info with a warning.
func newLogger(w io.Writer) zerolog.Logger {
	logger := zerolog.New(w).With().Timestamp().Str("component", "autonomy-calculator").Logger()

	raw := strings.TrimSpace(os.Getenv(logLevelEnvVar))
	if raw == "" {
		return logger.Level(zerolog.InfoLevel)
	}

	level, err := zerolog.ParseLevel(strings.ToLower(raw))
	if err != nil || level == zerolog.NoLevel {
		logger = logger.Level(zerolog.InfoLevel)
		logger.Warn().
			Str("env_var", logLevelEnvVar).
			Str("value", raw).
			Msg("invalid log level, using info")
		return logger
	}
	return logger.Level(level)
}
