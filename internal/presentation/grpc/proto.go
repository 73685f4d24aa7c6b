package grpc

// proto.go defines the gRPC server interface derived from veridian/risk/v1/risk.proto.
// This file serves as a stand-in for buf-generated code. Once `buf generate` is run,
// replace this file with the import from github.com/veridianid/risk-engine/api/gen/go/veridian/risk/v1.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RiskServiceServer is the server API for RiskService.
type RiskServiceServer interface {
	EvaluateRisk(context.Context, *EvaluateRiskRequest) (*EvaluateRiskResponse, error)
	GetTrustTrends(context.Context, *GetTrustTrendsRequest) (*GetTrustTrendsResponse, error)
	GetAnomalyFrequency(context.Context, *GetAnomalyFrequencyRequest) (*GetAnomalyFrequencyResponse, error)
	PurgeHistory(context.Context, *PurgeHistoryRequest) (*PurgeHistoryResponse, error)
	mustEmbedUnimplementedRiskServiceServer()
}

// UnimplementedRiskServiceServer provides forward-compatible default implementations.
type UnimplementedRiskServiceServer struct{}

func (UnimplementedRiskServiceServer) EvaluateRisk(context.Context, *EvaluateRiskRequest) (*EvaluateRiskResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method EvaluateRisk not implemented")
}
func (UnimplementedRiskServiceServer) GetTrustTrends(context.Context, *GetTrustTrendsRequest) (*GetTrustTrendsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetTrustTrends not implemented")
}
func (UnimplementedRiskServiceServer) GetAnomalyFrequency(context.Context, *GetAnomalyFrequencyRequest) (*GetAnomalyFrequencyResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetAnomalyFrequency not implemented")
}
func (UnimplementedRiskServiceServer) PurgeHistory(context.Context, *PurgeHistoryRequest) (*PurgeHistoryResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method PurgeHistory not implemented")
}
func (UnimplementedRiskServiceServer) mustEmbedUnimplementedRiskServiceServer() {}

// RegisterRiskServiceServer registers the RiskServiceServer with the gRPC server.
func RegisterRiskServiceServer(s *grpclib.Server, srv RiskServiceServer) {
	s.RegisterService(&_RiskService_serviceDesc, srv)
}

var _RiskService_serviceDesc = grpclib.ServiceDesc{
	ServiceName: "veridian.risk.v1.RiskService",
	HandlerType: (*RiskServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "EvaluateRisk", Handler: _RiskService_EvaluateRisk_Handler},
		{MethodName: "GetTrustTrends", Handler: _RiskService_GetTrustTrends_Handler},
		{MethodName: "GetAnomalyFrequency", Handler: _RiskService_GetAnomalyFrequency_Handler},
		{MethodName: "PurgeHistory", Handler: _RiskService_PurgeHistory_Handler},
	},
	Streams: []grpclib.StreamDesc{},
}

func _RiskService_EvaluateRisk_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, _ grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(EvaluateRiskRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(RiskServiceServer).EvaluateRisk(ctx, req)
}

func _RiskService_GetTrustTrends_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, _ grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(GetTrustTrendsRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(RiskServiceServer).GetTrustTrends(ctx, req)
}

func _RiskService_GetAnomalyFrequency_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, _ grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(GetAnomalyFrequencyRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(RiskServiceServer).GetAnomalyFrequency(ctx, req)
}

func _RiskService_PurgeHistory_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, _ grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(PurgeHistoryRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(RiskServiceServer).PurgeHistory(ctx, req)
}
