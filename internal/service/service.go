// Package service exposes the autonomy calculator over gRPC.
//
// Messages are google.protobuf.Struct values so the service can be
// registered without generated stubs. Request fields are ethanol_price,
// gasoline_price and tank_capacity; response fields are the four results
// plus valid and trace_id.
package service

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/rshade/fuel-autonomy-calculator/internal/autonomy"
)

// TraceIDMetadataKey is the incoming gRPC metadata key carrying the caller's trace ID.
const TraceIDMetadataKey = "x-trace-id"

// Response field names.
const (
	FieldAutonomyEthanolKm  = "autonomy_ethanol_km"
	FieldAutonomyGasolineKm = "autonomy_gasoline_km"
	FieldCostPerKmEthanol   = "cost_per_km_ethanol"
	FieldCostPerKmGasoline  = "cost_per_km_gasoline"
	FieldValid              = "valid"
	FieldTraceID            = "trace_id"

	FieldEthanolKmPerLiter  = "ethanol_km_per_liter"
	FieldGasolineKmPerLiter = "gasoline_km_per_liter"
)

const (
	operationCalculate     = "Calculate"
	operationGetEfficiency = "GetEfficiency"
)

// AutonomyServer is the server API for the autonomy.v1.AutonomyService service.
type AutonomyServer interface {
	Calculate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetEfficiency(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
}

// calculatorRef wraps the interface so it can live in an atomic.Pointer.
type calculatorRef struct {
	calc autonomy.AutonomyCalculator
}

// Service implements AutonomyServer.
type Service struct {
	calc    atomic.Pointer[calculatorRef]
	logger  zerolog.Logger // logger is immutable (copy-on-write)
	metrics *Metrics
}

// New creates a Service backed by calc. metrics may be nil.
func New(calc autonomy.AutonomyCalculator, logger zerolog.Logger, metrics *Metrics) *Service {
	s := &Service{
		logger:  logger,
		metrics: metrics,
	}
	s.calc.Store(&calculatorRef{calc: calc})
	return s
}

// UpdateEfficiency swaps the calculator for one built from eff.
// In-flight requests finish with the previous constants.
func (s *Service) UpdateEfficiency(eff autonomy.Efficiency) error {
	calc, err := autonomy.NewCalculator(eff)
	if err != nil {
		return err
	}
	s.calc.Store(&calculatorRef{calc: calc})
	s.logger.Info().
		Float64(FieldEthanolKmPerLiter, eff.EthanolKmPerLiter).
		Float64(FieldGasolineKmPerLiter, eff.GasolineKmPerLiter).
		Msg("efficiency updated")
	return nil
}

// Calculator returns the calculator currently in use.
func (s *Service) Calculator() autonomy.AutonomyCalculator {
	return s.calc.Load().calc
}

// Calculate runs one calculation. Unparsable input is not an error: the
// response carries the zero result with valid=false.
func (s *Service) Calculate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	traceID := s.getTraceID(ctx)

	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	in := autonomy.Input{
		EthanolPrice:  textField(req, autonomy.FieldEthanolPrice),
		GasolinePrice: textField(req, autonomy.FieldGasolinePrice),
		TankCapacity:  textField(req, autonomy.FieldTankCapacity),
	}

	res, err := s.Calculator().Evaluate(in)
	valid := err == nil
	s.metrics.observeCalculation(valid)

	if !valid {
		s.logger.Debug().
			Str(FieldTraceID, traceID).
			Str("operation", operationCalculate).
			Err(err).
			Msg("invalid numeric input, returning zero result")
	} else {
		s.logger.Debug().
			Str(FieldTraceID, traceID).
			Str("operation", operationCalculate).
			Float64(FieldAutonomyEthanolKm, res.AutonomyEthanolKm).
			Float64(FieldAutonomyGasolineKm, res.AutonomyGasolineKm).
			Float64(FieldCostPerKmEthanol, res.CostPerKmEthanol).
			Float64(FieldCostPerKmGasoline, res.CostPerKmGasoline).
			Msg("calculation complete")
	}

	resp, err := structpb.NewStruct(map[string]any{
		FieldAutonomyEthanolKm:  res.AutonomyEthanolKm,
		FieldAutonomyGasolineKm: res.AutonomyGasolineKm,
		FieldCostPerKmEthanol:   res.CostPerKmEthanol,
		FieldCostPerKmGasoline:  res.CostPerKmGasoline,
		FieldValid:              valid,
		FieldTraceID:            traceID,
	})
	if err != nil {
		s.logger.Error().
			Str(FieldTraceID, traceID).
			Str("operation", operationCalculate).
			Err(err).
			Msg("failed to build response")
		return nil, status.Error(codes.Internal, fmt.Sprintf("failed to build response: %v", err))
	}
	return resp, nil
}

// GetEfficiency returns the efficiency constants currently in use.
func (s *Service) GetEfficiency(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	traceID := s.getTraceID(ctx)
	eff := s.Calculator().Efficiency()

	s.logger.Debug().
		Str(FieldTraceID, traceID).
		Str("operation", operationGetEfficiency).
		Msg("efficiency requested")

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			FieldEthanolKmPerLiter:  structpb.NewNumberValue(eff.EthanolKmPerLiter),
			FieldGasolineKmPerLiter: structpb.NewNumberValue(eff.GasolineKmPerLiter),
			FieldTraceID:            structpb.NewStringValue(traceID),
		},
	}, nil
}

// getTraceID reads the trace ID from incoming metadata, generating a UUID
// when the caller did not send one.
func (s *Service) getTraceID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(TraceIDMetadataKey); len(values) > 0 && values[0] != "" {
			return values[0]
		}
	}
	return uuid.New().String()
}

// textField returns the named field as text. Numbers are formatted so they
// parse back unchanged; missing fields and other kinds become "".
func textField(req *structpb.Struct, name string) string {
	v, ok := req.GetFields()[name]
	if !ok {
		return ""
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return kind.StringValue
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(kind.NumberValue, 'f', -1, 64)
	default:
		return ""
	}
}
