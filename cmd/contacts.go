package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/picklepete/icloudgo/internal/contacts"
)

func newContactsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "contacts",
		Short: "List the account's contacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			session, err := newSession(ctx)
			if err != nil {
				return err
			}
			serviceRoot, err := session.ServiceURL("contacts")
			if err != nil {
				return err
			}
			client, err := contacts.NewClient(session.Requester(), serviceRoot)
			if err != nil {
				return err
			}

			all, err := client.All(ctx)
			if err != nil {
				return err
			}
			for _, contact := range all {
				fmt.Print(contact.DisplayName())
				for _, phone := range contact.Phones {
					fmt.Printf("\t%s", phone.Field)
				}
				for _, email := range contact.Emails {
					fmt.Printf("\t%s", email.Field)
				}
				fmt.Println()
			}
			return nil
		},
	}
}
