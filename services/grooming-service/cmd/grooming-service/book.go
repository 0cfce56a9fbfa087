package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/smarterdog/grooming/services/grooming-service/internal/model"
)

func newBookCmd() *cobra.Command {
	var f clientFlags
	var in model.BookingInput

	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book a grooming appointment",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), f.timeout)
			defer cancel()

			api, closeFn, err := f.open(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeFn()

			rec, err := api.BookAppointment(ctx, in)
			var rej *model.Rejection
			if err != nil && !errors.As(err, &rej) {
				return err
			}
			if rec.Status != "" {
				if perr := printJSON(cmd.OutOrStdout(), rec); perr != nil {
					return perr
				}
			}
			return err
		},
	}
	cmd.Flags().StringVar(&in.DogName, "dog", "", "dog name")
	cmd.Flags().StringVar(&in.DogSize, "size", "", "dog size: small, medium or large")
	cmd.Flags().StringVar(&in.RequestedDate, "date", "", "requested date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&in.RequestedTime, "time", "", "requested slot (HH:MM)")
	cmd.Flags().StringVar(&in.CustomerName, "customer", "", "customer name")
	cmd.Flags().StringVar(&in.ContactNumber, "contact", "", "contact number")
	cmd.Flags().StringVar(&f.addr, "addr", "", "grooming-service gRPC address; empty runs in-process")
	cmd.Flags().BoolVar(&f.demoSeed, "demo-seed", false, "preload the demo ledger usage (in-process only)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 10*time.Second, "overall command timeout")
	for _, name := range []string{"dog", "size", "date", "time", "customer", "contact"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
