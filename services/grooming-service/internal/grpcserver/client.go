package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/smarterdog/grooming/libs/grpcx"
	"github.com/smarterdog/grooming/services/grooming-service/internal/model"
)

// Client calls a remote grooming-service over gRPC.
type Client struct {
	conn *grpc.ClientConn
}

func NewClient(ctx context.Context, addr string) (*Client, error) {
	conn, err := grpcx.Dial(ctx, addr, grpcx.DialOptions{JSON: true})
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) GetAvailableSlots(ctx context.Context, date, dogSize string) (model.Availability, error) {
	var out model.Availability
	if err := c.conn.Invoke(ctx, methodGetAvailableSlots, &SlotsRequest{Date: date, DogSize: dogSize}, &out); err != nil {
		return model.Availability{}, fromStatus(err)
	}
	return out, nil
}

// BookAppointment mirrors service.BookAppointment: a Failed record comes back together
// with a *model.Rejection.
func (c *Client) BookAppointment(ctx context.Context, in model.BookingInput) (model.BookingRecord, error) {
	var rec model.BookingRecord
	if err := c.conn.Invoke(ctx, methodBookAppointment, &in, &rec); err != nil {
		return model.BookingRecord{}, fromStatus(err)
	}
	if rec.Status == model.StatusFailed {
		note := ""
		if len(rec.Notes) > 0 {
			note = rec.Notes[len(rec.Notes)-1]
		}
		return rec, &model.Rejection{Reason: rec.Reason, Note: note}
	}
	return rec, nil
}

func fromStatus(err error) error {
	if st, ok := status.FromError(err); ok && st.Code() == codes.InvalidArgument {
		return &model.Rejection{Reason: model.ReasonInvalidInput, Note: st.Message()}
	}
	return err
}
