package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watch reloads the config at path whenever it changes and passes the
// result to onChange. It runs until ctx is cancelled.
//
// The parent directory is watched rather than the file, so saves that
// replace the file through a rename keep being picked up. A reload that
// fails validation, or reads an empty file mid-write, is logged and
// dropped; the caller keeps whatever config it had. Environment overrides
// are re-applied on each reload so they keep precedence over the file.
func Watch(ctx context.Context, path string, logger zerolog.Logger, onChange func(*Config)) error {
	target := filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating config watcher: %w", err)
	}
	defer watcher.Close()

	if _, err := readConfigFile(target); err != nil {
		return fmt.Errorf("watching config %s: %w", target, err)
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watching config %s: %w", target, err)
	}

	logger.Info().Str("path", target).Msg("watching config for changes")

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			cfg, err := LoadStrict(target)
			if errors.Is(err, fs.ErrNotExist) {
				// Renamed away; the replacement arrives as a Create.
				logger.Debug().Str("path", target).Str("op", event.Op.String()).Msg("config file not present, waiting")
				continue
			}
			if err != nil {
				logger.Error().Err(err).Str("path", target).Msg("config reload failed, keeping previous config")
				continue
			}
			cfg.ApplyEnv(logger)
			if err := cfg.Validate(); err != nil {
				logger.Error().Err(err).Str("path", target).Msg("config reload failed, keeping previous config")
				continue
			}

			logger.Info().
				Str("path", target).
				Float64("ethanol_km_per_liter", cfg.EthanolKmPerLiter).
				Float64("gasoline_km_per_liter", cfg.GasolineKmPerLiter).
				Msg("config reloaded")
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error().Err(err).Msg("config watcher error")
		}
	}
}
