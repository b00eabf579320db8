package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/picklepete/icloudgo/internal/calendar"
)

func newCalendarClient(ctx context.Context) (*calendar.Client, error) {
	session, err := newSession(ctx)
	if err != nil {
		return nil, err
	}
	serviceRoot, err := session.ServiceURL("calendar")
	if err != nil {
		return nil, err
	}
	return calendar.NewClient(session.Requester(), serviceRoot, flagTimezone)
}

func newCalendarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "List calendars and events",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the account's calendars",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := newCalendarClient(ctx)
			if err != nil {
				return err
			}
			calendars, err := client.Calendars(ctx)
			if err != nil {
				return err
			}
			for _, cal := range calendars {
				fmt.Printf("%s\t%s\n", cal.Title, cal.GUID)
			}
			return nil
		},
	})

	cmd.AddCommand(newCalendarEventsCmd())
	return cmd
}

func newCalendarEventsCmd() *cobra.Command {
	var fromFlag, toFlag string

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List events, defaulting to the current month",
		RunE: func(cmd *cobra.Command, args []string) error {
			var from, to time.Time
			var err error
			if fromFlag != "" {
				if from, err = time.Parse("2006-01-02", fromFlag); err != nil {
					return fmt.Errorf("invalid --from date: %w", err)
				}
			}
			if toFlag != "" {
				if to, err = time.Parse("2006-01-02", toFlag); err != nil {
					return fmt.Errorf("invalid --to date: %w", err)
				}
			}

			ctx := cmd.Context()
			client, err := newCalendarClient(ctx)
			if err != nil {
				return err
			}
			events, err := client.Events(ctx, from, to)
			if err != nil {
				return err
			}
			for _, event := range events {
				start := event.StartDate.Time(time.Local)
				fmt.Printf("%s\t%s", start.Format("2006-01-02 15:04"), event.Title)
				if event.Location != "" {
					fmt.Printf(" (%s)", event.Location)
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fromFlag, "from", "", "Window start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toFlag, "to", "", "Window end (YYYY-MM-DD)")
	return cmd
}
