package grpcserver

import (
	"context"

	"google.golang.org/grpc"

	"github.com/smarterdog/grooming/services/grooming-service/internal/model"
)

// ServiceName is the fully-qualified gRPC service. Messages are JSON encoded
// (grpcx.JSONCodecName) rather than protobuf.
const ServiceName = "smarterdog.grooming.v1.GroomingService"

const (
	methodGetAvailableSlots = "/" + ServiceName + "/GetAvailableSlots"
	methodBookAppointment   = "/" + ServiceName + "/BookAppointment"
)

type SlotsRequest struct {
	Date    string `json:"date"`
	DogSize string `json:"dog_size"`
}

type GroomingServer interface {
	GetAvailableSlots(ctx context.Context, req *SlotsRequest) (*model.Availability, error)
	BookAppointment(ctx context.Context, req *model.BookingInput) (*model.BookingRecord, error)
}

func getAvailableSlotsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(SlotsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(GroomingServer).GetAvailableSlots(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetAvailableSlots}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(GroomingServer).GetAvailableSlots(ctx, req.(*SlotsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func bookAppointmentHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(model.BookingInput)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(GroomingServer).BookAppointment(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodBookAppointment}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(GroomingServer).BookAppointment(ctx, req.(*model.BookingInput))
	}
	return interceptor(ctx, in, info, handler)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GroomingServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetAvailableSlots", Handler: getAvailableSlotsHandler},
		{MethodName: "BookAppointment", Handler: bookAppointmentHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "grooming/v1/grooming.json",
}
