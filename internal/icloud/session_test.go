package icloud

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSetup emulates the setup web service endpoints used by login and
// the device-trust flow.
type fakeSetup struct {
	password    string
	challenge   bool
	hsaVersion  int
	trusted     bool
	correctCode string
	services    map[string]string

	loginCount int
}

func (f *fakeSetup) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", f.login)
	mux.HandleFunc("/listDevices", f.listDevices)
	mux.HandleFunc("/sendVerificationCode", f.sendVerificationCode)
	mux.HandleFunc("/validateVerificationCode", f.validateVerificationCode)
	return mux
}

func (f *fakeSetup) login(w http.ResponseWriter, r *http.Request) {
	f.loginCount++

	var creds struct {
		AppleID  string `json:"apple_id"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Password != f.password {
		w.WriteHeader(http.StatusUnauthorized)
		writeJSON(w, map[string]any{"reason": "Invalid email/password combination."})
		return
	}

	http.SetCookie(w, &http.Cookie{Name: "X-APPLE-WEBAUTH-USER", Value: "v=1:s=0", Path: "/"})
	if f.trusted {
		http.SetCookie(w, &http.Cookie{Name: "X-APPLE-WEBAUTH-TOKEN", Value: "v=1:t=trusted", Path: "/"})
	}

	services := make(map[string]any, len(f.services))
	for key, url := range f.services {
		services[key] = map[string]any{"url": url, "status": "active"}
	}
	writeJSON(w, map[string]any{
		"dsInfo": map[string]any{
			"dsid":       "12345678901",
			"hsaVersion": f.hsaVersion,
		},
		"hsaChallengeRequired": f.challenge && !f.trusted,
		"webservices":          services,
	})
}

func (f *fakeSetup) listDevices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"devices": []map[string]any{
			{"deviceType": "SMS", "areaCode": "", "phoneNumber": "*******58", "deviceId": "1"},
		},
	})
}

func (f *fakeSetup) sendVerificationCode(w http.ResponseWriter, r *http.Request) {
	var device map[string]any
	if err := json.NewDecoder(r.Body).Decode(&device); err != nil {
		writeJSON(w, map[string]any{"success": false})
		return
	}
	writeJSON(w, map[string]any{"success": device["deviceId"] == "1"})
}

func (f *fakeSetup) validateVerificationCode(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, map[string]any{"errorMessage": "bad request", "errorCode": -21669})
		return
	}
	if body["verificationCode"] != f.correctCode {
		writeJSON(w, map[string]any{"errorMessage": "Invalid verification code.", "errorCode": -21669})
		return
	}
	f.trusted = true
	writeJSON(w, map[string]any{"success": true})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestSession(t *testing.T, f *fakeSetup, cookieDir string) (*Session, error) {
	t.Helper()

	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	return New(context.Background(), "user@example.com", "correct-secret",
		WithSetupEndpoint(srv.URL),
		WithHomeEndpoint(srv.URL),
		WithCookieDirectory(cookieDir),
		WithClientID("DECAFBAD-0000-0000-0000-000000000000"),
		WithLogger(discardLogger()),
	)
}

func TestSessionAuthenticates(t *testing.T) {
	f := &fakeSetup{
		password: "correct-secret",
		services: map[string]string{
			"findme":   "https://p10-fmipweb.icloud.com",
			"contacts": "https://p10-contactsws.icloud.com",
		},
	}
	cookieDir := t.TempDir()

	s, err := newTestSession(t, f, cookieDir)
	require.NoError(t, err)

	assert.Equal(t, StateAuthenticated, s.State())
	assert.False(t, s.RequiresSecondFactor())
	assert.Equal(t, "user@example.com", s.AppleID())
	assert.Equal(t, "12345678901", s.params.Get("dsid"))

	url, err := s.ServiceURL("findme")
	require.NoError(t, err)
	assert.Equal(t, "https://p10-fmipweb.icloud.com", url)

	_, err = s.ServiceURL("not_provisioned_key")
	var notActivated *NotActivatedError
	require.ErrorAs(t, err, &notActivated)
	assert.Equal(t, "not_provisioned_key", notActivated.Code)

	// A successful login persists the session cookies.
	_, err = os.Stat(s.store.Path("user@example.com"))
	assert.NoError(t, err)
}

func TestSessionSecondFactorFlow(t *testing.T) {
	f := &fakeSetup{
		password:    "correct-secret",
		challenge:   true,
		hsaVersion:  1,
		correctCode: "000000",
		services:    map[string]string{"findme": "https://p10-fmipweb.icloud.com"},
	}

	s, err := newTestSession(t, f, t.TempDir())
	require.NoError(t, err)
	require.Equal(t, StateAwaitingSecondFactor, s.State())
	require.True(t, s.RequiresSecondFactor())

	ctx := context.Background()

	devices, err := s.TrustedDevices(ctx)
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "SMS", devices[0].DeviceType)
	assert.Equal(t, "SMS to *******58", devices[0].Label())

	sent, err := s.SendVerificationCode(ctx, devices[0])
	require.NoError(t, err)
	assert.True(t, sent)

	sent, err = s.SendVerificationCode(ctx, TrustedDevice{DeviceType: "SMS", DeviceID: "9"})
	require.NoError(t, err)
	assert.False(t, sent)

	// A wrong code is an expected outcome, not an error.
	ok, err := s.ValidateVerificationCode(ctx, devices[0], "111111")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, StateAwaitingSecondFactor, s.State())

	ok, err = s.ValidateVerificationCode(ctx, devices[0], "000000")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, StateAuthenticated, s.State())
	assert.False(t, s.RequiresSecondFactor())
}

func TestSessionBadCredentials(t *testing.T) {
	f := &fakeSetup{password: "other-secret"}
	cookieDir := t.TempDir()

	_, err := newTestSession(t, f, cookieDir)

	var failed *FailedLoginError
	require.ErrorAs(t, err, &failed)
	require.Error(t, failed.Unwrap())

	// No store write may happen for a failed login.
	entries, readErr := os.ReadDir(cookieDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestSecondFactorGatingByProtocolVersion(t *testing.T) {
	f := &fakeSetup{
		password:   "correct-secret",
		challenge:  true,
		hsaVersion: 0,
		services:   map[string]string{"findme": "https://p10-fmipweb.icloud.com"},
	}

	s, err := newTestSession(t, f, t.TempDir())
	require.NoError(t, err)

	assert.False(t, s.RequiresSecondFactor())
	assert.Equal(t, StateAuthenticated, s.State())
}

func TestSessionSurvivesCorruptCookieFile(t *testing.T) {
	cookieDir := t.TempDir()
	store := NewCookieStore(cookieDir)
	require.NoError(t, os.WriteFile(store.Path("user@example.com"), []byte("{{{ not json"), 0600))

	f := &fakeSetup{
		password: "correct-secret",
		services: map[string]string{"findme": "https://p10-fmipweb.icloud.com"},
	}

	s, err := newTestSession(t, f, cookieDir)
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, s.State())
}

func TestAuthenticateRunsOnEveryConstruct(t *testing.T) {
	f := &fakeSetup{
		password: "correct-secret",
		services: map[string]string{"findme": "https://p10-fmipweb.icloud.com"},
	}
	cookieDir := t.TempDir()

	_, err := newTestSession(t, f, cookieDir)
	require.NoError(t, err)
	_, err = newTestSession(t, f, cookieDir)
	require.NoError(t, err)

	// Persisted cookies never skip the login call.
	assert.Equal(t, 2, f.loginCount)
}
