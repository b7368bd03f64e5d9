package service

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/rshade/fuel-autonomy-calculator/internal/autonomy"
)

func newTestService(t *testing.T, logger zerolog.Logger, metrics *Metrics) *Service {
	t.Helper()
	calc, err := autonomy.NewCalculator(autonomy.DefaultEfficiency())
	require.NoError(t, err)
	return New(calc, logger, metrics)
}

func calcRequest(t *testing.T, ethanol, gasoline, tank any) *structpb.Struct {
	t.Helper()
	req, err := structpb.NewStruct(map[string]any{
		autonomy.FieldEthanolPrice:  ethanol,
		autonomy.FieldGasolinePrice: gasoline,
		autonomy.FieldTankCapacity:  tank,
	})
	require.NoError(t, err)
	return req
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name      string
		req       func(t *testing.T) *structpb.Struct
		wantValid bool
		want      autonomy.Result
	}{
		{
			name:      "valid text input",
			req:       func(t *testing.T) *structpb.Struct { return calcRequest(t, "5.00", "6.00", "50") },
			wantValid: true,
			want: autonomy.Result{
				AutonomyEthanolKm:  400,
				AutonomyGasolineKm: 500,
				CostPerKmEthanol:   0.625,
				CostPerKmGasoline:  0.6,
			},
		},
		{
			name:      "numeric values accepted",
			req:       func(t *testing.T) *structpb.Struct { return calcRequest(t, 5.0, 6.0, 50.0) },
			wantValid: true,
			want: autonomy.Result{
				AutonomyEthanolKm:  400,
				AutonomyGasolineKm: 500,
				CostPerKmEthanol:   0.625,
				CostPerKmGasoline:  0.6,
			},
		},
		{
			name:      "empty field zeroes everything",
			req:       func(t *testing.T) *structpb.Struct { return calcRequest(t, "", "6.00", "50") },
			wantValid: false,
		},
		{
			name:      "bool field is invalid",
			req:       func(t *testing.T) *structpb.Struct { return calcRequest(t, "5.00", true, "50") },
			wantValid: false,
		},
		{
			name:      "missing fields are invalid",
			req:       func(t *testing.T) *structpb.Struct { return &structpb.Struct{} },
			wantValid: false,
		},
		{
			name:      "negative price propagates",
			req:       func(t *testing.T) *structpb.Struct { return calcRequest(t, "-1", "2", "10") },
			wantValid: true,
			want: autonomy.Result{
				AutonomyEthanolKm:  80,
				AutonomyGasolineKm: 100,
				CostPerKmEthanol:   -0.125,
				CostPerKmGasoline:  0.2,
			},
		},
	}

	svc := newTestService(t, zerolog.New(io.Discard), nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Calculate(context.Background(), tt.req(t))
			require.NoError(t, err)

			fields := resp.GetFields()
			assert.Equal(t, tt.wantValid, fields[FieldValid].GetBoolValue())
			assert.InDelta(t, tt.want.AutonomyEthanolKm, fields[FieldAutonomyEthanolKm].GetNumberValue(), 1e-9)
			assert.InDelta(t, tt.want.AutonomyGasolineKm, fields[FieldAutonomyGasolineKm].GetNumberValue(), 1e-9)
			assert.InDelta(t, tt.want.CostPerKmEthanol, fields[FieldCostPerKmEthanol].GetNumberValue(), 1e-9)
			assert.InDelta(t, tt.want.CostPerKmGasoline, fields[FieldCostPerKmGasoline].GetNumberValue(), 1e-9)
			assert.NotEmpty(t, fields[FieldTraceID].GetStringValue())
		})
	}
}

func TestCalculate_NilRequest(t *testing.T) {
	svc := newTestService(t, zerolog.New(io.Discard), nil)

	_, err := svc.Calculate(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestCalculate_TraceID(t *testing.T) {
	svc := newTestService(t, zerolog.New(io.Discard), nil)

	t.Run("from metadata", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(TraceIDMetadataKey, "trace-123"))
		resp, err := svc.Calculate(ctx, calcRequest(t, "5", "6", "50"))
		require.NoError(t, err)
		assert.Equal(t, "trace-123", resp.GetFields()[FieldTraceID].GetStringValue())
	})

	t.Run("generated when absent", func(t *testing.T) {
		resp, err := svc.Calculate(context.Background(), calcRequest(t, "5", "6", "50"))
		require.NoError(t, err)
		_, parseErr := uuid.Parse(resp.GetFields()[FieldTraceID].GetStringValue())
		assert.NoError(t, parseErr)
	})
}

func TestCalculate_LogsInvalidInput(t *testing.T) {
	var buf bytes.Buffer
	svc := newTestService(t, zerolog.New(&buf).Level(zerolog.DebugLevel), nil)

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(TraceIDMetadataKey, "trace-abc"))
	_, err := svc.Calculate(ctx, calcRequest(t, "5", "abc", "50"))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "invalid numeric input")
	assert.Contains(t, out, "trace-abc")
	assert.Contains(t, out, autonomy.FieldGasolinePrice)
}

func TestGetEfficiency(t *testing.T) {
	svc := newTestService(t, zerolog.New(io.Discard), nil)

	resp, err := svc.GetEfficiency(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, 8.0, resp.GetFields()[FieldEthanolKmPerLiter].GetNumberValue())
	assert.Equal(t, 10.0, resp.GetFields()[FieldGasolineKmPerLiter].GetNumberValue())
}

func TestUpdateEfficiency(t *testing.T) {
	svc := newTestService(t, zerolog.New(io.Discard), nil)

	require.NoError(t, svc.UpdateEfficiency(autonomy.Efficiency{EthanolKmPerLiter: 7, GasolineKmPerLiter: 12}))
	assert.Equal(t, autonomy.Efficiency{EthanolKmPerLiter: 7, GasolineKmPerLiter: 12}, svc.Calculator().Efficiency())

	resp, err := svc.Calculate(context.Background(), calcRequest(t, "7", "6", "10"))
	require.NoError(t, err)
	assert.InDelta(t, 70.0, resp.GetFields()[FieldAutonomyEthanolKm].GetNumberValue(), 1e-9)
	assert.InDelta(t, 0.5, resp.GetFields()[FieldCostPerKmGasoline].GetNumberValue(), 1e-9)

	err = svc.UpdateEfficiency(autonomy.Efficiency{EthanolKmPerLiter: 0, GasolineKmPerLiter: 12})
	require.ErrorIs(t, err, autonomy.ErrNonPositiveEfficiency)
	assert.Equal(t, 7.0, svc.Calculator().Efficiency().EthanolKmPerLiter, "rejected update must keep previous calculator")
}

func TestMetrics_CountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	svc := newTestService(t, zerolog.New(io.Discard), metrics)
	for _, req := range []*structpb.Struct{
		calcRequest(t, "5", "6", "50"),
		calcRequest(t, "4", "5", "40"),
		calcRequest(t, "", "6", "50"),
	} {
		_, err := svc.Calculate(context.Background(), req)
		require.NoError(t, err)
	}

	families, err := reg.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "autonomy_calculations_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "outcome" {
					counts[lp.GetValue()] = m.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, 2.0, counts[outcomeValid])
	assert.Equal(t, 1.0, counts[outcomeInvalid])
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)

	_, err = NewMetrics(reg)
	assert.Error(t, err)
}
