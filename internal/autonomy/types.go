package autonomy

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidNumericInput is returned when a text field cannot be parsed as a decimal number.
	ErrInvalidNumericInput = errors.New("invalid numeric input")

	// ErrNonPositiveEfficiency is returned when an efficiency constant is zero or negative.
	ErrNonPositiveEfficiency = errors.New("efficiency must be positive")
)

// Input holds the raw user-entered text fields.
type Input struct {
	// EthanolPrice is the ethanol price per liter, as entered.
	EthanolPrice string

	// GasolinePrice is the gasoline price per liter, as entered.
	GasolinePrice string

	// TankCapacity is the tank capacity in liters, as entered.
	TankCapacity string
}

// Efficiency holds the fixed km-per-liter constants for each fuel.
type Efficiency struct {
	EthanolKmPerLiter  float64
	GasolineKmPerLiter float64
}

// DefaultEfficiency returns the built-in efficiency constants (8 km/L ethanol, 10 km/L gasoline).
func DefaultEfficiency() Efficiency {
	return Efficiency{
		EthanolKmPerLiter:  DefaultEthanolKmPerLiter,
		GasolineKmPerLiter: DefaultGasolineKmPerLiter,
	}
}

// Validate returns ErrNonPositiveEfficiency if either constant is not strictly positive.
func (e Efficiency) Validate() error {
	if !(e.EthanolKmPerLiter > 0) {
		return fmt.Errorf("ethanol: %w (got %v)", ErrNonPositiveEfficiency, e.EthanolKmPerLiter)
	}
	if !(e.GasolineKmPerLiter > 0) {
		return fmt.Errorf("gasoline: %w (got %v)", ErrNonPositiveEfficiency, e.GasolineKmPerLiter)
	}
	return nil
}

// Result contains the derived autonomy and cost values for one calculation.
// The zero value is the fallback returned for invalid input.
type Result struct {
	// AutonomyEthanolKm is the full-tank range on ethanol in km.
	AutonomyEthanolKm float64

	// AutonomyGasolineKm is the full-tank range on gasoline in km.
	AutonomyGasolineKm float64

	// CostPerKmEthanol is the ethanol cost per km in currency units.
	CostPerKmEthanol float64

	// CostPerKmGasoline is the gasoline cost per km in currency units.
	CostPerKmGasoline float64
}

// IsZero reports whether r is the all-zero fallback result.
func (r Result) IsZero() bool {
	return r == Result{}
}
