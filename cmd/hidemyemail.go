package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/picklepete/icloudgo/internal/hidemyemail"
)

func newHideMyEmailClient(ctx context.Context) (*hidemyemail.Client, error) {
	session, err := newSession(ctx)
	if err != nil {
		return nil, err
	}
	serviceRoot, err := session.ServiceURL("premiummailsettings")
	if err != nil {
		return nil, err
	}
	return hidemyemail.NewClient(session.Requester(), serviceRoot)
}

func newHideMyEmailCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "hidemyemail",
		Aliases: []string{"hme"},
		Short:   "Manage Hide My Email aliases",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List existing aliases",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := newHideMyEmailClient(ctx)
			if err != nil {
				return err
			}
			aliases, err := client.List(ctx)
			if err != nil {
				return err
			}
			for _, alias := range aliases {
				state := "inactive"
				if alias.IsActive {
					state = "active"
				}
				fmt.Printf("%s\t%s\t%s\n", alias.HME, alias.Label, state)
			}
			return nil
		},
	})

	cmd.AddCommand(newHideMyEmailGenerateCmd())
	return cmd
}

func newHideMyEmailGenerateCmd() *cobra.Command {
	var label, note string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new alias, optionally reserving it",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := newHideMyEmailClient(ctx)
			if err != nil {
				return err
			}

			address, err := client.Generate(ctx)
			if err != nil {
				return err
			}
			if label == "" {
				fmt.Println(address)
				return nil
			}

			alias, err := client.Reserve(ctx, address, label, note)
			if err != nil {
				return err
			}
			fmt.Printf("%s\t%s\n", alias.HME, alias.Label)
			return nil
		},
	}

	cmd.Flags().StringVar(&label, "label", "", "Reserve the alias under this label")
	cmd.Flags().StringVar(&note, "note", "", "Note stored with the reserved alias")
	return cmd
}
