package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_CalcText(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"calc", "--ethanol-price", "5.00", "--gasoline-price", "6.00", "--tank", "50"}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	out := stdout.String()
	assert.Contains(t, out, "Ethanol: 8.0 km/L")
	assert.Contains(t, out, "Gasoline: 10.0 km/L")
	assert.Contains(t, out, "Ethanol autonomy: 400.0 km")
	assert.Contains(t, out, "Gasoline autonomy: 500.0 km")
	assert.Contains(t, out, "Cost per km - Ethanol: R$ 0.63")
	assert.Contains(t, out, "Cost per km - Gasoline: R$ 0.60")
}

func TestRun_CalcInvalidInputIsNotAFailure(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"calc", "--ethanol-price", "", "--gasoline-price", "6.00", "--tank", "50"}, &stdout, &stderr)

	require.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "Ethanol autonomy: 0.0 km")
	assert.Contains(t, stdout.String(), "Cost per km - Gasoline: R$ 0.00")
}

func TestRun_CalcJSON(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"calc", "--ethanol-price", "5", "--gasoline-price", "abc", "--tank", "50", "--format", "json"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &decoded))
	assert.Equal(t, false, decoded["valid"])
}

func TestRun_CalcWithConfigAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autonomy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ethanol_km_per_liter: 7\ncurrency_symbol: \"US$\"\n"), 0o600))
	t.Setenv("AUTONOMY_GASOLINE_KM_PER_LITER", "12")

	var stdout, stderr bytes.Buffer
	code := run([]string{"calc", "--ethanol-price", "3.50", "--gasoline-price", "6", "--tank", "40", "--config", path}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	out := stdout.String()
	assert.Contains(t, out, "Ethanol: 7.0 km/L")
	assert.Contains(t, out, "Gasoline: 12.0 km/L")
	assert.Contains(t, out, "Ethanol autonomy: 280.0 km")
	assert.Contains(t, out, "Gasoline autonomy: 480.0 km")
	assert.Contains(t, out, "Cost per km - Ethanol: US$ 0.50")
	assert.Contains(t, out, "Cost per km - Gasoline: US$ 0.50")
}

func TestRun_CalcRejectsNonPositiveEfficiency(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autonomy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ethanol_km_per_liter: 0\n"), 0o600))

	var stdout, stderr bytes.Buffer
	code := run([]string{"calc", "--ethanol-price", "5", "--gasoline-price", "6", "--tank", "50", "--config", path}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "efficiency must be positive")
}

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode int
	}{
		{name: "no command", args: nil, wantCode: 2},
		{name: "unknown command", args: []string{"drive"}, wantCode: 2},
		{name: "bad format", args: []string{"calc", "--format", "yaml"}, wantCode: 2},
		{name: "help", args: []string{"help"}, wantCode: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, tt.wantCode, run(tt.args, &stdout, &stderr))
		})
	}
}

func TestRunServe_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- runServe(ctx, &serveOptions{ListenAddr: "127.0.0.1:0"}, zerolog.New(io.Discard))
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runServe did not stop after cancellation")
	}
}
