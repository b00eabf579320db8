package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/picklepete/icloudgo/internal/findmyiphone"
	"github.com/picklepete/icloudgo/internal/icloud"
)

func newFindMyClient(ctx context.Context) (*icloud.Session, *findmyiphone.Client, error) {
	session, err := newSession(ctx)
	if err != nil {
		return nil, nil, err
	}
	serviceRoot, err := session.ServiceURL("findme")
	if err != nil {
		return nil, nil, err
	}
	client, err := findmyiphone.NewClient(ctx, session.Requester(), serviceRoot, session.WithFamily())
	if err != nil {
		return nil, nil, err
	}
	return session, client, nil
}

func newDevicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "Locate and interact with devices via Find My iPhone",
	}

	cmd.AddCommand(newDevicesListCmd())
	cmd.AddCommand(newDevicesLocateCmd())
	cmd.AddCommand(newDevicesSoundCmd())
	cmd.AddCommand(newDevicesMessageCmd())
	cmd.AddCommand(newDevicesLostModeCmd())
	return cmd
}

func newDevicesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the account's devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, client, err := newFindMyClient(ctx)
			if err != nil {
				return err
			}

			for _, device := range client.Devices() {
				battery := ""
				if device.BatteryLevel > 0 {
					battery = fmt.Sprintf(", battery %.0f%%", device.BatteryLevel*100)
				}
				fmt.Printf("%s\t%s (%s%s)\n\tid: %s\n", device.Name, device.DisplayName, device.StatusText(), battery, device.ID)
			}
			return nil
		},
	}
}

func newDevicesLocateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "locate <device-id>",
		Short: "Show a device's last known location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, client, err := newFindMyClient(ctx)
			if err != nil {
				return err
			}

			device, err := client.Device(args[0])
			if err != nil {
				return err
			}
			if device.Location == nil {
				return fmt.Errorf("no location available for %s", device.Name)
			}

			loc := device.Location
			fmt.Printf("%s: %.6f,%.6f (±%.0fm, %s, %s)\n",
				device.Name, loc.Latitude, loc.Longitude,
				loc.HorizontalAccuracy, loc.PositionType,
				loc.Time().Format("2006-01-02 15:04:05"))
			return nil
		},
	}
}

func newDevicesSoundCmd() *cobra.Command {
	var subject string

	cmd := &cobra.Command{
		Use:   "sound <device-id>",
		Short: "Play an alert sound on a device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, client, err := newFindMyClient(ctx)
			if err != nil {
				return err
			}
			return client.PlaySound(ctx, args[0], subject)
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "Alert title shown on the device")
	return cmd
}

func newDevicesMessageCmd() *cobra.Command {
	var subject string
	var sound bool

	cmd := &cobra.Command{
		Use:   "message <device-id> <text>",
		Short: "Display a message on a device",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, client, err := newFindMyClient(ctx)
			if err != nil {
				return err
			}
			return client.DisplayMessage(ctx, args[0], subject, args[1], sound)
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "Message title shown on the device")
	cmd.Flags().BoolVar(&sound, "sound", false, "Play a sound with the message")
	return cmd
}

func newDevicesLostModeCmd() *cobra.Command {
	var text, passcode string

	cmd := &cobra.Command{
		Use:   "lostmode <device-id> <callback-number>",
		Short: "Put a device into lost mode",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, client, err := newFindMyClient(ctx)
			if err != nil {
				return err
			}
			if err := client.LostDevice(ctx, args[0], args[1], text, passcode); err != nil {
				return err
			}
			fmt.Println("Lost mode enabled.")
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "message", "", "Message shown on the lock screen")
	cmd.Flags().StringVar(&passcode, "passcode", "", "New passcode to set on the device")
	return cmd
}
