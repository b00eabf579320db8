package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/picklepete/icloudgo/internal/reminders"
)

func newRemindersClient(ctx context.Context) (*reminders.Client, error) {
	session, err := newSession(ctx)
	if err != nil {
		return nil, err
	}
	serviceRoot, err := session.ServiceURL("reminders")
	if err != nil {
		return nil, err
	}
	client, err := reminders.NewClient(session.Requester(), serviceRoot, flagTimezone)
	if err != nil {
		return nil, err
	}
	if err := client.Refresh(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

func newRemindersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "List and create reminders",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all reminder collections and their entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := newRemindersClient(ctx)
			if err != nil {
				return err
			}

			for _, collection := range client.Collections() {
				fmt.Printf("%s\n", collection.Title)
				for _, reminder := range client.Reminders(collection.GUID) {
					fmt.Printf("  - %s", reminder.Title)
					if due := reminder.DueTime(time.Local); !due.IsZero() {
						fmt.Printf(" (due %s)", due.Format("2006-01-02 15:04"))
					}
					fmt.Println()
				}
			}
			return nil
		},
	})

	cmd.AddCommand(newRemindersAddCmd())
	return cmd
}

func newRemindersAddCmd() *cobra.Command {
	var description, collection, dueFlag string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a reminder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var due *time.Time
			if dueFlag != "" {
				parsed, err := time.ParseInLocation("2006-01-02 15:04", dueFlag, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --due value: %w", err)
				}
				due = &parsed
			}

			ctx := cmd.Context()
			client, err := newRemindersClient(ctx)
			if err != nil {
				return err
			}
			if err := client.Add(ctx, args[0], description, collection, due); err != nil {
				return err
			}
			fmt.Println("Reminder created.")
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Reminder notes")
	cmd.Flags().StringVar(&collection, "list", "", "Target reminder list (defaults to the tasks list)")
	cmd.Flags().StringVar(&dueFlag, "due", "", "Due date (YYYY-MM-DD HH:MM)")
	return cmd
}
