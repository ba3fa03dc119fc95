package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/tsriharsha402/cleaning-booking-system/internal/grpcapi"
	"github.com/tsriharsha402/cleaning-booking-system/internal/utils"
)

func newAvailabilityCmd() *cobra.Command {
	var (
		date     string
		duration int
		addr     string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "availability",
		Short: "Print free slot starts per cleaner for a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := time.Parse(time.DateOnly, date)
			if err != nil {
				return fmt.Errorf("--date: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if addr != "" {
				return remoteAvailability(ctx, cmd.OutOrStdout(), addr, date, duration)
			}
			return withApp(ctx, func(a *app) error {
				slots, err := a.availability.Daily(ctx, day, duration)
				if err != nil {
					return err
				}
				ids := make([]int64, 0, len(slots))
				for id := range slots {
					ids = append(ids, id)
				}
				sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

				w := cmd.OutOrStdout()
				for _, id := range ids {
					fmt.Fprintf(w, "cleaner %d:\n", id)
					for _, start := range slots[id] {
						tr := utils.TimeRange{Start: start, End: start.Add(time.Duration(duration) * time.Hour)}
						fmt.Fprintf(w, "  %s\n", utils.FormatSlotForUser(tr, a.policy.Zone(), false, ""))
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", time.Now().Format(time.DateOnly), "day to inspect (YYYY-MM-DD)")
	cmd.Flags().IntVar(&duration, "duration", 2, "booking length in hours")
	cmd.Flags().StringVar(&addr, "addr", "", "query a running server over gRPC instead of the database")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "overall deadline")
	return cmd
}

func remoteAvailability(ctx context.Context, w io.Writer, addr, date string, duration int) error {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return err
	}
	defer conn.Close()

	out, err := grpcapi.NewClient(conn).DailyAvailability(ctx, map[string]any{
		"date":          date,
		"durationHours": duration,
	})
	if err != nil {
		return err
	}

	for _, v := range out.GetFields()["slots"].GetListValue().GetValues() {
		slot := v.GetStructValue().GetFields()
		fmt.Fprintf(w, "cleaner %.0f:\n", slot["cleanerId"].GetNumberValue())
		for _, s := range slot["freeStartTimes"].GetListValue().GetValues() {
			fmt.Fprintf(w, "  %s\n", s.GetStringValue())
		}
	}
	return nil
}
