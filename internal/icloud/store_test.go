package icloud

import (
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieStorePathSanitization(t *testing.T) {
	store := NewCookieStore("/tmp/cookies")

	wordOnly := regexp.MustCompile(`^\w+$`)
	for _, appleID := range []string{
		"a.b+c@d.com",
		"user@example.com",
		"weird id!with spaces",
	} {
		name := filepath.Base(store.Path(appleID))
		assert.True(t, wordOnly.MatchString(name), "path %q contains non-word characters", name)
		assert.Equal(t, store.Path(appleID), store.Path(appleID), "path must be stable")
	}

	assert.Equal(t, "abcdcom", filepath.Base(store.Path("a.b+c@d.com")))
}

func TestCookieStoreLoadMissingFile(t *testing.T) {
	store := NewCookieStore(t.TempDir())

	assert.Nil(t, store.Load("user@example.com"))
}

func TestCookieStoreLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	store := NewCookieStore(dir)

	// Simulates a leftover store in an earlier, incompatible format.
	require.NoError(t, os.WriteFile(store.Path("user@example.com"), []byte("#LWP-Cookies-2.0\nnot json"), 0600))

	assert.Nil(t, store.Load("user@example.com"))
}

func TestCookieStoreRoundTrip(t *testing.T) {
	store := NewCookieStore(filepath.Join(t.TempDir(), "nested", "cookies"))

	cookies := []*http.Cookie{
		{Name: "X-APPLE-WEBAUTH-TOKEN", Value: "v=1:t=abc", Domain: ".icloud.com", Path: "/", Secure: true, HttpOnly: true},
		{Name: "X-APPLE-WEBAUTH-USER", Value: "v=1:s=0:d=123"},
	}
	require.NoError(t, store.Save("user@example.com", cookies))

	loaded := store.Load("user@example.com")
	require.Len(t, loaded, 2)
	assert.Equal(t, "X-APPLE-WEBAUTH-TOKEN", loaded[0].Name)
	assert.Equal(t, "v=1:t=abc", loaded[0].Value)
	assert.Equal(t, ".icloud.com", loaded[0].Domain)
	assert.True(t, loaded[0].Secure)
	assert.True(t, loaded[0].HttpOnly)
}

func TestCookieStoreSaveOverwrites(t *testing.T) {
	store := NewCookieStore(t.TempDir())

	require.NoError(t, store.Save("user@example.com", []*http.Cookie{
		{Name: "X-APPLE-WEBAUTH-TOKEN", Value: "stale-trust"},
		{Name: "X-APPLE-WEBAUTH-USER", Value: "user"},
	}))
	require.NoError(t, store.Save("user@example.com", []*http.Cookie{
		{Name: "X-APPLE-WEBAUTH-USER", Value: "user"},
	}))

	loaded := store.Load("user@example.com")
	require.Len(t, loaded, 1, "old cookies must not survive a save")
	assert.Equal(t, "X-APPLE-WEBAUTH-USER", loaded[0].Name)
}
