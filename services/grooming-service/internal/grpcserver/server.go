package grpcserver

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/smarterdog/grooming/services/grooming-service/internal/model"
	"github.com/smarterdog/grooming/services/grooming-service/internal/service"
)

type server struct {
	svc    *service.Service
	logger *slog.Logger
}

func Register(grpcServer *grpc.Server, svc *service.Service, logger *slog.Logger) {
	grpcServer.RegisterService(&ServiceDesc, &server{svc: svc, logger: logger})
}

func (s *server) GetAvailableSlots(ctx context.Context, req *SlotsRequest) (*model.Availability, error) {
	avail, err := s.svc.GetAvailableSlots(ctx, req.Date, req.DogSize)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &avail, nil
}

// BookAppointment answers business rejections with a Failed record; only malformed input
// and infrastructure faults become gRPC errors.
func (s *server) BookAppointment(ctx context.Context, req *model.BookingInput) (*model.BookingRecord, error) {
	rec, err := s.svc.BookAppointment(ctx, *req)
	if err == nil {
		return &rec, nil
	}
	var rej *model.Rejection
	if errors.As(err, &rej) && rej.Reason != model.ReasonInvalidInput {
		return &rec, nil
	}
	return nil, s.toStatus(ctx, err)
}

func (s *server) toStatus(ctx context.Context, err error) error {
	var rej *model.Rejection
	if errors.As(err, &rej) && rej.Reason == model.ReasonInvalidInput {
		return status.Error(codes.InvalidArgument, rej.Note)
	}
	s.logger.ErrorContext(ctx, "grpc request failed", "err", err)
	return status.Error(codes.Internal, "internal error")
}
