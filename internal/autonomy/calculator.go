package autonomy

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AutonomyCalculator computes autonomy results from raw text input.
type AutonomyCalculator interface {
	// Calculate returns the autonomy result for in.
	// Returns the zero Result if any field is not a decimal number.
	Calculate(in Input) Result

	// Evaluate is Calculate that also reports why the input was rejected.
	Evaluate(in Input) (Result, error)

	// Efficiency returns the constants the calculator was built with.
	Efficiency() Efficiency
}

// Calculator implements AutonomyCalculator for a fixed, validated Efficiency.
type Calculator struct {
	efficiency Efficiency
}

// NewCalculator creates a calculator bound to eff.
// It returns ErrNonPositiveEfficiency if either constant is zero or negative.
func NewCalculator(eff Efficiency) (*Calculator, error) {
	if err := eff.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{efficiency: eff}, nil
}

// Calculate computes the result for in using the calculator's efficiency.
func (c *Calculator) Calculate(in Input) Result {
	res, _ := c.Evaluate(in)
	return res
}

// Evaluate computes the result for in and returns the parse error, if any.
func (c *Calculator) Evaluate(in Input) (Result, error) {
	return Evaluate(in, c.efficiency)
}

// Efficiency returns the efficiency constants in use.
func (c *Calculator) Efficiency() Efficiency {
	return c.efficiency
}

// Calculate computes autonomy and cost-per-km for both fuels.
//
// The calculation:
//  1. Autonomy (km) = efficiency (km/L) × tank capacity (L)
//  2. Cost per km = price (per L) / efficiency (km/L)
//
// If any text field fails to parse, or an efficiency is not positive,
// the zero Result is returned. No partial results are produced.
func Calculate(ethanolPriceText, gasolinePriceText, tankCapacityText string, ethanolEfficiency, gasolineEfficiency float64) Result {
	res, _ := Evaluate(
		Input{
			EthanolPrice:  ethanolPriceText,
			GasolinePrice: gasolinePriceText,
			TankCapacity:  tankCapacityText,
		},
		Efficiency{
			EthanolKmPerLiter:  ethanolEfficiency,
			GasolineKmPerLiter: gasolineEfficiency,
		},
	)
	return res
}

// Evaluate is Calculate with the failure reason exposed for logging.
// When the returned error is non-nil the Result is always the zero Result.
func Evaluate(in Input, eff Efficiency) (Result, error) {
	if err := eff.Validate(); err != nil {
		return Result{}, err
	}

	ethanolPrice, err := parseField(FieldEthanolPrice, in.EthanolPrice)
	if err != nil {
		return Result{}, err
	}
	gasolinePrice, err := parseField(FieldGasolinePrice, in.GasolinePrice)
	if err != nil {
		return Result{}, err
	}
	tankCapacity, err := parseField(FieldTankCapacity, in.TankCapacity)
	if err != nil {
		return Result{}, err
	}

	return Result{
		AutonomyEthanolKm:  eff.EthanolKmPerLiter * tankCapacity,
		AutonomyGasolineKm: eff.GasolineKmPerLiter * tankCapacity,
		CostPerKmEthanol:   ethanolPrice / eff.EthanolKmPerLiter,
		CostPerKmGasoline:  gasolinePrice / eff.GasolineKmPerLiter,
	}, nil
}

// ParseDecimal parses text as a decimal number independent of locale.
// Surrounding whitespace is ignored; "." is the only decimal separator.
// NaN and infinities are rejected.
func ParseDecimal(text string) (float64, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty value", ErrInvalidNumericInput)
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumericInput, text)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q is not finite", ErrInvalidNumericInput, text)
	}
	return v, nil
}

func parseField(field, text string) (float64, error) {
	v, err := ParseDecimal(text)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return v, nil
}
