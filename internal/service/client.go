package service

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/rshade/fuel-autonomy-calculator/internal/autonomy"
)

// CalculateResponse is the decoded reply of a Calculate call.
type CalculateResponse struct {
	Result  autonomy.Result
	Valid   bool
	TraceID string
}

// Client calls autonomy.v1.AutonomyService over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient creates a Client on cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Calculate sends in to the service and decodes the reply.
func (c *Client) Calculate(ctx context.Context, in autonomy.Input, opts ...grpc.CallOption) (CalculateResponse, error) {
	req := &structpb.Struct{
		Fields: map[string]*structpb.Value{
			autonomy.FieldEthanolPrice:  structpb.NewStringValue(in.EthanolPrice),
			autonomy.FieldGasolinePrice: structpb.NewStringValue(in.GasolinePrice),
			autonomy.FieldTankCapacity:  structpb.NewStringValue(in.TankCapacity),
		},
	}

	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, CalculateFullMethod, req, out, opts...); err != nil {
		return CalculateResponse{}, fmt.Errorf("calculate: %w", err)
	}

	fields := out.GetFields()
	return CalculateResponse{
		Result: autonomy.Result{
			AutonomyEthanolKm:  fields[FieldAutonomyEthanolKm].GetNumberValue(),
			AutonomyGasolineKm: fields[FieldAutonomyGasolineKm].GetNumberValue(),
			CostPerKmEthanol:   fields[FieldCostPerKmEthanol].GetNumberValue(),
			CostPerKmGasoline:  fields[FieldCostPerKmGasoline].GetNumberValue(),
		},
		Valid:   fields[FieldValid].GetBoolValue(),
		TraceID: fields[FieldTraceID].GetStringValue(),
	}, nil
}

// GetEfficiency returns the efficiency constants the service is using.
func (c *Client) GetEfficiency(ctx context.Context, opts ...grpc.CallOption) (autonomy.Efficiency, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetEfficiencyFullMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return autonomy.Efficiency{}, fmt.Errorf("get efficiency: %w", err)
	}

	fields := out.GetFields()
	return autonomy.Efficiency{
		EthanolKmPerLiter:  fields[FieldEthanolKmPerLiter].GetNumberValue(),
		GasolineKmPerLiter: fields[FieldGasolineKmPerLiter].GetNumberValue(),
	}, nil
}
