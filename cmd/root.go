package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Persistent flags shared by every subcommand.
var (
	flagUsername        string
	flagPassword        string
	flagCookieDirectory string
	flagTimezone        string
	flagWithFamily      bool
	flagNonInteractive  bool
	flagVerbose         bool
)

// rootCmd represents the base command for the icloudctl application
var rootCmd = &cobra.Command{
	Use:   "icloudctl",
	Short: "Command-line client for iCloud web services",
	Long: `icloudctl authenticates against iCloud and exposes the account's web
services: device location, calendars, contacts, reminders, drive,
photos, storage usage, and Hide My Email aliases.

Sessions are persisted per account, so a device only needs to be
verified once.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if flagVerbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "icloudctl version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagUsername, "username", "u", "", "Apple ID (defaults to the config file or $ICLOUD_USERNAME)")
	rootCmd.PersistentFlags().StringVarP(&flagPassword, "password", "p", "", "Password (defaults to $ICLOUD_PASSWORD, the credential store, or a prompt)")
	rootCmd.PersistentFlags().StringVar(&flagCookieDirectory, "cookie-directory", "", "Directory for persisted session cookies")
	rootCmd.PersistentFlags().StringVar(&flagTimezone, "timezone", "", "Timezone sent to calendar and reminder services")
	rootCmd.PersistentFlags().BoolVar(&flagWithFamily, "with-family", false, "Include family devices and data where supported")
	rootCmd.PersistentFlags().BoolVarP(&flagNonInteractive, "non-interactive", "n", false, "Never prompt; fail instead")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newDevicesCmd())
	rootCmd.AddCommand(newAccountCmd())
	rootCmd.AddCommand(newCalendarCmd())
	rootCmd.AddCommand(newContactsCmd())
	rootCmd.AddCommand(newRemindersCmd())
	rootCmd.AddCommand(newDriveCmd())
	rootCmd.AddCommand(newPhotosCmd())
	rootCmd.AddCommand(newHideMyEmailCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newVersionCmd())
}
