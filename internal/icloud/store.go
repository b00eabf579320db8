package icloud

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// nonWord matches every character stripped from an account identifier
// when deriving its cookie file name.
var nonWord = regexp.MustCompile(`\W`)

// storedCookie is the on-disk representation of one session cookie.
type storedCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Domain   string    `json:"domain,omitempty"`
	Path     string    `json:"path,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HTTPOnly bool      `json:"httpOnly,omitempty"`
	Expires  time.Time `json:"expires,omitzero"`
}

// CookieStore persists session cookies as one JSON file per account so a
// trusted session survives process restarts.
type CookieStore struct {
	dir string
}

// NewCookieStore creates a store rooted at the given directory. The
// directory is created lazily on first Save.
func NewCookieStore(dir string) *CookieStore {
	return &CookieStore{dir: dir}
}

// Path returns the cookie file location for the given account identifier.
// The identifier is reduced to word characters so it is filesystem safe.
func (s *CookieStore) Path(appleID string) string {
	return filepath.Join(s.dir, nonWord.ReplaceAllString(appleID, ""))
}

// Load reads the persisted cookies for an account. A missing, unreadable,
// or corrupt file yields no cookies, never an error, so stale stores from
// earlier formats are silently discarded.
func (s *CookieStore) Load(appleID string) []*http.Cookie {
	data, err := os.ReadFile(s.Path(appleID))
	if err != nil {
		return nil
	}

	var stored []storedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil
	}

	cookies := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		cookies = append(cookies, &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
			Expires:  c.Expires,
		})
	}
	return cookies
}

// Save replaces the account's cookie file with the given cookies. The
// previous contents are always overwritten in full so revoked trust
// cookies cannot be resurrected by a partial merge.
func (s *CookieStore) Save(appleID string, cookies []*http.Cookie) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create cookie directory: %w", err)
	}

	stored := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		stored = append(stored, storedCookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HttpOnly,
			Expires:  c.Expires,
		})
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cookies: %w", err)
	}

	if err := os.WriteFile(s.Path(appleID), data, 0600); err != nil {
		return fmt.Errorf("failed to write cookie file: %w", err)
	}
	return nil
}
