package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/picklepete/icloudgo/internal/secrets"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage stored credentials and session state",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "login",
		Short: "Authenticate and verify this device if challenged",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := newSession(cmd.Context())
			if err != nil {
				return err
			}
			account := session.Account()
			fmt.Printf("Logged in as %s (%s).\n", account.DSInfo.FullName, session.AppleID())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "store-password",
		Short: "Save the account password in the local credential store",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(); err != nil {
				return err
			}
			username, err := resolveUsername()
			if err != nil {
				return err
			}
			if flagNonInteractive && flagPassword == "" {
				return fmt.Errorf("store-password needs --password in non-interactive mode")
			}

			password := flagPassword
			if password == "" {
				password, err = promptPassword(fmt.Sprintf("Enter iCloud password for %s: ", username))
				if err != nil {
					return err
				}
			}
			if password == "" {
				return fmt.Errorf("refusing to store an empty password")
			}

			store, err := secrets.DefaultStore()
			if err != nil {
				return err
			}
			if err := store.SetPassword(username, password); err != nil {
				return err
			}
			fmt.Printf("Password stored for %s.\n", username)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete-password",
		Short: "Remove the account password from the local credential store",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(); err != nil {
				return err
			}
			username, err := resolveUsername()
			if err != nil {
				return err
			}

			store, err := secrets.DefaultStore()
			if err != nil {
				return err
			}
			if err := store.DeletePassword(username); err != nil {
				if errors.Is(err, secrets.ErrNoStoredCredential) {
					fmt.Printf("No password stored for %s.\n", username)
					return nil
				}
				return err
			}
			fmt.Printf("Password deleted for %s.\n", username)
			return nil
		},
	})

	return cmd
}
