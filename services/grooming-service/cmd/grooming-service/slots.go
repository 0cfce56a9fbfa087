package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

func newSlotsCmd() *cobra.Command {
	var f clientFlags
	var date, size string

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "List available slots for a date and dog size",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), f.timeout)
			defer cancel()

			api, closeFn, err := f.open(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeFn()

			avail, err := api.GetAvailableSlots(ctx, date, size)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), avail)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "requested date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&size, "size", "medium", "dog size: small, medium or large")
	cmd.Flags().StringVar(&f.addr, "addr", "", "grooming-service gRPC address; empty runs in-process")
	cmd.Flags().BoolVar(&f.demoSeed, "demo-seed", false, "preload the demo ledger usage (in-process only)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 10*time.Second, "overall command timeout")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}
