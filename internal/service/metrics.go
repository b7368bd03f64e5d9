package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values for autonomy_calculations_total.
const (
	outcomeValid   = "valid"
	outcomeInvalid = "invalid"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	calculations *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		calculations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autonomy_calculations_total",
				Help: "Number of autonomy calculations, by whether the input was valid.",
			},
			[]string{"outcome"},
		),
	}
	if err := reg.Register(m.calculations); err != nil {
		return nil, err
	}
	return m, nil
}

// observeCalculation is a no-op on a nil receiver.
func (m *Metrics) observeCalculation(valid bool) {
	if m == nil {
		return
	}
	outcome := outcomeValid
	if !valid {
		outcome = outcomeInvalid
	}
	m.calculations.WithLabelValues(outcome).Inc()
}
