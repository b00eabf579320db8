package secrets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrNoStoredCredential is returned when no password has been stored for
// the requested account.
var ErrNoStoredCredential = errors.New("no stored credential for account")

var nonWord = regexp.MustCompile(`\W`)

// Store is a file-backed credential store keyed by account identifier.
type Store struct {
	dir string
}

// NewStore creates a store rooted at the given directory.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// DefaultStore returns a store under the user's home directory.
func DefaultStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return NewStore(filepath.Join(home, ".icloudctl", "credentials")), nil
}

func (s *Store) path(appleID string) string {
	return filepath.Join(s.dir, nonWord.ReplaceAllString(appleID, ""))
}

// Password returns the stored password for the account, or
// ErrNoStoredCredential when none was stored.
func (s *Store) Password(appleID string) (string, error) {
	data, err := os.ReadFile(s.path(appleID))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNoStoredCredential, appleID)
		}
		return "", fmt.Errorf("failed to read credential: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// SetPassword stores the password for the account, replacing any
// previous value.
func (s *Store) SetPassword(appleID, password string) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}
	if err := os.WriteFile(s.path(appleID), []byte(password), 0600); err != nil {
		return fmt.Errorf("failed to write credential: %w", err)
	}
	return nil
}

// DeletePassword removes the stored password for the account.
func (s *Store) DeletePassword(appleID string) error {
	err := os.Remove(s.path(appleID))
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrNoStoredCredential, appleID)
	}
	return err
}
