// Package report renders calculation results for display: distances with
// one decimal, costs with two, and the fixed efficiency constants.
package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/rshade/fuel-autonomy-calculator/internal/autonomy"
)

// FuelFigures pairs an ethanol and a gasoline value.
type FuelFigures struct {
	Ethanol  float64 `json:"ethanol"`
	Gasoline float64 `json:"gasoline"`
}

// Report is the display form of one calculation.
// Autonomy and cost values are already rounded for display.
type Report struct {
	Efficiency FuelFigures `json:"efficiency_km_per_liter"`
	AutonomyKm FuelFigures `json:"autonomy_km"`
	CostPerKm  FuelFigures `json:"cost_per_km"`
	Currency   string      `json:"currency"`
	Valid      bool        `json:"valid"`
}

// Build creates a Report from a calculation result.
// valid is false when the result is the invalid-input fallback.
func Build(res autonomy.Result, eff autonomy.Efficiency, currency string, valid bool) Report {
	return Report{
		Efficiency: FuelFigures{
			Ethanol:  eff.EthanolKmPerLiter,
			Gasoline: eff.GasolineKmPerLiter,
		},
		AutonomyKm: FuelFigures{
			Ethanol:  autonomy.RoundDistance(res.AutonomyEthanolKm),
			Gasoline: autonomy.RoundDistance(res.AutonomyGasolineKm),
		},
		CostPerKm: FuelFigures{
			Ethanol:  autonomy.RoundCost(res.CostPerKmEthanol),
			Gasoline: autonomy.RoundCost(res.CostPerKmGasoline),
		},
		Currency: currency,
		Valid:    valid,
	}
}

// Text renders the report as the calculator screen shows it.
func (r Report) Text() string {
	var b strings.Builder

	b.WriteString("Fixed efficiency:\n")
	fmt.Fprintf(&b, "  Ethanol: %s km/L\n", formatEfficiency(r.Efficiency.Ethanol))
	fmt.Fprintf(&b, "  Gasoline: %s km/L\n", formatEfficiency(r.Efficiency.Gasoline))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Ethanol autonomy: %s km\n", formatDistance(r.AutonomyKm.Ethanol))
	fmt.Fprintf(&b, "Gasoline autonomy: %s km\n", formatDistance(r.AutonomyKm.Gasoline))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Cost per km - Ethanol: %s\n", r.formatCost(r.CostPerKm.Ethanol))
	fmt.Fprintf(&b, "Cost per km - Gasoline: %s\n", r.formatCost(r.CostPerKm.Gasoline))

	return b.String()
}

// JSON renders the report as a JSON document.
func (r Report) JSON() ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return data, nil
}

func (r Report) formatCost(v float64) string {
	cost := strconv.FormatFloat(v, 'f', autonomy.CostDecimals, 64)
	if r.Currency == "" {
		return cost
	}
	return r.Currency + " " + cost
}

func formatDistance(v float64) string {
	return strconv.FormatFloat(v, 'f', autonomy.DistanceDecimals, 64)
}

// formatEfficiency keeps one decimal for whole numbers (8 -> "8.0")
// and the shortest exact form otherwise.
func formatEfficiency(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
