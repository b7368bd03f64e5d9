// Package autonomy computes vehicle range and per-kilometer fuel cost
// from fuel prices, tank capacity and fixed fuel efficiencies.
package autonomy

const (
	// DefaultEthanolKmPerLiter is the default ethanol efficiency in km/L.
	DefaultEthanolKmPerLiter = 8.0

	// DefaultGasolineKmPerLiter is the default gasoline efficiency in km/L.
	DefaultGasolineKmPerLiter = 10.0

	// DistanceDecimals is the number of decimals shown for autonomy distances.
	DistanceDecimals = 1

	// CostDecimals is the number of decimals shown for cost-per-km values.
	CostDecimals = 2
)

// Field names used when reporting which input failed to parse.
const (
	FieldEthanolPrice  = "ethanol_price"
	FieldGasolinePrice = "gasoline_price"
	FieldTankCapacity  = "tank_capacity"
)
