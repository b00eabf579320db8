package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/picklepete/icloudgo/internal/config"
	"github.com/picklepete/icloudgo/internal/icloud"
	"github.com/picklepete/icloudgo/internal/secrets"
)

// loadConfig merges the config file into unset flags. Flags always win.
func loadConfig() (*config.Config, error) {
	path, err := config.DefaultPath()
	if err != nil {
		return &config.Config{}, nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if flagUsername == "" {
		flagUsername = cfg.Username
	}
	if flagCookieDirectory == "" {
		flagCookieDirectory = cfg.CookieDirectory
	}
	if flagTimezone == "" {
		flagTimezone = cfg.Timezone
	}
	if !flagWithFamily {
		flagWithFamily = cfg.WithFamily
	}
	return cfg, nil
}

// resolveUsername returns the Apple ID from the flag, config file, or
// environment.
func resolveUsername() (string, error) {
	if flagUsername != "" {
		return flagUsername, nil
	}
	if username := os.Getenv("ICLOUD_USERNAME"); username != "" {
		return username, nil
	}
	return "", fmt.Errorf("no Apple ID given: use --username, the config file, or $ICLOUD_USERNAME")
}

// resolvePassword returns the password from the flag, environment, the
// credential store, or an interactive prompt, in that order. In
// non-interactive mode a missing stored credential propagates unchanged.
func resolvePassword(username string) (string, error) {
	if flagPassword != "" {
		return flagPassword, nil
	}
	if password := os.Getenv("ICLOUD_PASSWORD"); password != "" {
		return password, nil
	}

	store, err := secrets.DefaultStore()
	if err == nil {
		password, err := store.Password(username)
		if err == nil {
			return password, nil
		}
		if !errors.Is(err, secrets.ErrNoStoredCredential) {
			return "", err
		}
		if flagNonInteractive {
			return "", err
		}
	}

	return promptPassword(fmt.Sprintf("Enter iCloud password for %s: ", username))
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}

// newSession authenticates and completes the second-factor flow when the
// account is challenged.
func newSession(ctx context.Context, opts ...icloud.Option) (*icloud.Session, error) {
	if _, err := loadConfig(); err != nil {
		return nil, err
	}

	username, err := resolveUsername()
	if err != nil {
		return nil, err
	}
	password, err := resolvePassword(username)
	if err != nil {
		return nil, err
	}

	sessionOpts := []icloud.Option{
		icloud.WithFamily(flagWithFamily),
		icloud.WithLogger(slog.Default()),
	}
	if flagCookieDirectory != "" {
		sessionOpts = append(sessionOpts, icloud.WithCookieDirectory(flagCookieDirectory))
	}
	sessionOpts = append(sessionOpts, opts...)

	session, err := icloud.New(ctx, username, password, sessionOpts...)
	if err != nil {
		return nil, err
	}

	if session.RequiresSecondFactor() {
		if flagNonInteractive {
			return nil, fmt.Errorf("two-step authentication required for %s; rerun without --non-interactive to verify this device", username)
		}
		if err := verifySecondFactor(ctx, session); err != nil {
			return nil, err
		}
	}
	return session, nil
}

// verifySecondFactor drives the interactive device verification flow.
func verifySecondFactor(ctx context.Context, session *icloud.Session) error {
	devices, err := session.TrustedDevices(ctx)
	if err != nil {
		return fmt.Errorf("failed to list trusted devices: %w", err)
	}
	if len(devices) == 0 {
		return fmt.Errorf("no trusted devices available for verification")
	}

	fmt.Fprintln(os.Stderr, "Two-step authentication required. Your trusted devices:")
	for i, device := range devices {
		fmt.Fprintf(os.Stderr, "  %d: %s\n", i, device.Label())
	}

	reader := bufio.NewReader(os.Stdin)
	index, err := promptInt(reader, "Which device would you like to use? [0]: ", 0, len(devices)-1)
	if err != nil {
		return err
	}
	device := devices[index]

	sent, err := session.SendVerificationCode(ctx, device)
	if err != nil {
		return fmt.Errorf("failed to send verification code: %w", err)
	}
	if !sent {
		return fmt.Errorf("the backend refused to send a verification code to %s", device.Label())
	}

	for {
		fmt.Fprint(os.Stderr, "Please enter the verification code: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read verification code: %w", err)
		}
		code := strings.TrimSpace(line)

		ok, err := session.ValidateVerificationCode(ctx, device, code)
		if err != nil {
			return fmt.Errorf("failed to verify code: %w", err)
		}
		if ok {
			fmt.Fprintln(os.Stderr, "Device verified.")
			return nil
		}
		fmt.Fprintln(os.Stderr, "Incorrect verification code, try again.")
	}
}

func promptInt(reader *bufio.Reader, prompt string, fallback, max int) (int, error) {
	fmt.Fprint(os.Stderr, prompt)
	line, err := reader.ReadString('\n')
	if err != nil {
		return 0, fmt.Errorf("failed to read selection: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return fallback, nil
	}

	var index int
	if _, err := fmt.Sscanf(line, "%d", &index); err != nil || index < 0 || index > max {
		return 0, fmt.Errorf("invalid selection %q", line)
	}
	return index, nil
}
