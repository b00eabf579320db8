package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/picklepete/icloudgo/internal/account"
)

func newAccountClient(ctx context.Context) (*account.Client, error) {
	session, err := newSession(ctx)
	if err != nil {
		return nil, err
	}
	serviceRoot, err := session.ServiceURL("account")
	if err != nil {
		return nil, err
	}
	return account.NewClient(session.Requester(), serviceRoot)
}

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Show account devices, family members, and storage usage",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "devices",
		Short: "List the hardware devices registered with the account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := newAccountClient(ctx)
			if err != nil {
				return err
			}
			devices, err := client.Devices(ctx)
			if err != nil {
				return err
			}
			for _, device := range devices {
				fmt.Printf("%s\t%s (%s, serial %s)\n", device.Name, device.ModelDisplayName, device.OSVersion, device.SerialNumber)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "family",
		Short: "List the members of the family group",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := newAccountClient(ctx)
			if err != nil {
				return err
			}
			members, err := client.FamilyMembers(ctx)
			if err != nil {
				return err
			}
			if len(members) == 0 {
				fmt.Println("No family group configured.")
				return nil
			}
			for _, member := range members {
				fmt.Printf("%s\t%s (%s)\n", member.FullName, member.AppleID, member.AgeClassification)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "storage",
		Short: "Show iCloud storage usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := newAccountClient(ctx)
			if err != nil {
				return err
			}
			usage, err := client.StorageUsage(ctx)
			if err != nil {
				return err
			}
			fmt.Println(usage)
			for _, media := range usage.Media {
				fmt.Printf("  %s: %.2f GB\n", media.DisplayLabel, float64(media.UsageInBytes)/(1024*1024*1024))
			}
			return nil
		},
	})

	return cmd
}
