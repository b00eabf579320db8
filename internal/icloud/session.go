package icloud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/picklepete/icloudgo/internal/instrumentation"
	"github.com/picklepete/icloudgo/internal/logging"
)

const (
	defaultSetupEndpoint = "https://setup.icloud.com/setup/ws/1"
	defaultHomeEndpoint  = "https://www.icloud.com"
)

// State enumerates the session lifecycle.
type State string

const (
	StateUnauthenticated      State = "unauthenticated"
	StateAwaitingSecondFactor State = "awaiting_second_factor"
	StateAuthenticated        State = "authenticated"
	StateFailed               State = "failed"
)

// Session holds an authenticated iCloud web session. It owns the session
// parameters sent with every request, the persisted cookie store, and the
// service directory unlocked by login.
type Session struct {
	appleID  string
	password string

	params        url.Values
	client        *Client
	jar           http.CookieJar
	store         *CookieStore
	setupEndpoint string
	homeEndpoint  string
	withFamily    bool

	account *AccountInfo
	state   State

	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

type options struct {
	cookieDirectory string
	clientID        string
	withFamily      bool
	transport       http.RoundTripper
	logger          *slog.Logger
	metrics         *instrumentation.Metrics
	setupEndpoint   string
	homeEndpoint    string
}

// Option configures a Session before the initial login.
type Option func(*options)

// WithCookieDirectory overrides where session cookies are persisted.
func WithCookieDirectory(dir string) Option {
	return func(o *options) { o.cookieDirectory = dir }
}

// WithClientID pins the per-process client instance identifier instead of
// generating one.
func WithClientID(id string) Option {
	return func(o *options) { o.clientID = id }
}

// WithFamily requests family-wide results from services that support it.
func WithFamily(withFamily bool) Option {
	return func(o *options) { o.withFamily = withFamily }
}

// WithTransport injects the HTTP transport, including timeouts and TLS
// configuration. This is also the substitution point for tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithLogger sets the structured logger. The session wraps it with a
// handler that redacts the account password from every emitted record.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics attaches a metrics recorder to the request layer.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithSetupEndpoint overrides the setup service base URL.
func WithSetupEndpoint(endpoint string) Option {
	return func(o *options) { o.setupEndpoint = strings.TrimSuffix(endpoint, "/") }
}

// WithHomeEndpoint overrides the web origin used for Origin and Referer
// headers.
func WithHomeEndpoint(endpoint string) Option {
	return func(o *options) { o.homeEndpoint = strings.TrimSuffix(endpoint, "/") }
}

// New constructs a session and performs the initial login immediately.
// Persisted cookies for the account are loaded first; they only influence
// whether the server treats the login as already trusted, the login call
// itself always runs. On failure the error is a *FailedLoginError and no
// session is returned.
func New(ctx context.Context, appleID, password string, opts ...Option) (*Session, error) {
	if appleID == "" {
		return nil, fmt.Errorf("appleID cannot be empty")
	}
	if password == "" {
		return nil, fmt.Errorf("password cannot be empty")
	}

	o := options{
		setupEndpoint: defaultSetupEndpoint,
		homeEndpoint:  defaultHomeEndpoint,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.cookieDirectory == "" {
		o.cookieDirectory = defaultCookieDirectory()
	}
	if o.clientID == "" {
		o.clientID = strings.ToUpper(uuid.NewString())
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = slog.New(logging.NewRedactingHandler(logger.Handler(), password))

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	s := &Session{
		appleID:       appleID,
		password:      password,
		jar:           jar,
		store:         NewCookieStore(o.cookieDirectory),
		setupEndpoint: o.setupEndpoint,
		homeEndpoint:  o.homeEndpoint,
		withFamily:    o.withFamily,
		state:         StateUnauthenticated,
		logger:        logger,
		metrics:       o.metrics,
	}
	s.params = url.Values{
		"clientBuildNumber":     {"17DHotfix5"},
		"clientMasteringNumber": {"17DHotfix5"},
		"ckjsBuildVersion":      {"17DProjectDev77"},
		"ckjsVersion":           {"2.0.5"},
		"clientId":              {o.clientID},
	}

	s.loadCookies()

	hc := &http.Client{Jar: jar}
	if o.transport != nil {
		hc.Transport = o.transport
	}
	s.client = newClient(hc, s.params, s, s.homeEndpoint, logger, o.metrics)

	if err := s.Authenticate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Authenticate runs the login exchange from scratch. It is called once by
// New and again after a verification code is accepted, which refreshes
// the server-side trust state and persists the trust cookie.
func (s *Session) Authenticate(ctx context.Context) error {
	s.logger.Info("authenticating", logging.Account(s.appleID))

	body := map[string]any{
		"apple_id":       s.appleID,
		"password":       s.password,
		"extended_login": false,
	}
	resp, err := s.client.Post(ctx, s.setupEndpoint+"/login", nil, body)
	if err != nil {
		s.state = StateFailed
		s.metrics.RecordAuthAttempt(ctx, "failure")
		s.logger.Error("login failed", logging.Account(s.appleID), logging.Err(err))
		return &FailedLoginError{Err: err}
	}

	var account AccountInfo
	if err := resp.JSON(&account); err != nil {
		s.state = StateFailed
		s.metrics.RecordAuthAttempt(ctx, "failure")
		return &FailedLoginError{Err: err}
	}
	s.account = &account

	// The dsid is never cleared once learned; later logins only refresh it.
	if dsid := account.DSInfo.DSID; dsid != "" {
		s.params.Set("dsid", dsid)
	}

	if s.RequiresSecondFactor() {
		s.state = StateAwaitingSecondFactor
	} else {
		s.state = StateAuthenticated
	}
	s.metrics.RecordAuthAttempt(ctx, "success")

	if err := s.saveCookies(); err != nil {
		s.logger.Warn("failed to persist session cookies", logging.Err(err))
	}

	s.logger.Info("authenticated",
		logging.Account(s.appleID),
		slog.String(logging.KeyStatus, string(s.state)))
	return nil
}

// RequiresSecondFactor reports whether the last login was challenged and
// the account's protocol version supports device verification. Accounts
// on protocol version 0 never require a second factor even when the
// challenge flag is set.
func (s *Session) RequiresSecondFactor() bool {
	return s.account != nil &&
		s.account.HSAChallengeRequired &&
		s.account.DSInfo.HSAVersion >= 1
}

// AppleID returns the account identifier this session was built for.
func (s *Session) AppleID() string {
	return s.appleID
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// WithFamily reports whether family-wide results were requested.
func (s *Session) WithFamily() bool {
	return s.withFamily
}

// Account returns the decoded login response, nil before the first
// successful login.
func (s *Session) Account() *AccountInfo {
	return s.account
}

// Requester exposes the authenticated request layer for service
// sub-clients.
func (s *Session) Requester() Requester {
	return s.client
}

// ServiceURL returns the base URL of the named web service from the
// directory unlocked by login. An absent key means the service was never
// provisioned for this account.
func (s *Session) ServiceURL(key string) (string, error) {
	if s.account != nil {
		if ws, ok := s.account.Webservices[key]; ok && ws.URL != "" {
			return ws.URL, nil
		}
	}
	return "", &NotActivatedError{APIError: APIError{
		Reason: "Webservice not available",
		Code:   key,
	}}
}

// TrustedDevices lists the devices that can receive a verification code.
// Only meaningful while RequiresSecondFactor is true.
func (s *Session) TrustedDevices(ctx context.Context) ([]TrustedDevice, error) {
	resp, err := s.client.Get(ctx, s.setupEndpoint+"/listDevices", nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Devices []TrustedDevice `json:"devices"`
	}
	if err := resp.JSON(&payload); err != nil {
		return nil, err
	}
	return payload.Devices, nil
}

// SendVerificationCode asks the backend to deliver a code to the device.
func (s *Session) SendVerificationCode(ctx context.Context, device TrustedDevice) (bool, error) {
	resp, err := s.client.Post(ctx, s.setupEndpoint+"/sendVerificationCode", nil, device.payload())
	if err != nil {
		return false, err
	}

	var result struct {
		Success bool `json:"success"`
	}
	if err := resp.JSON(&result); err != nil {
		return false, err
	}
	return result.Success, nil
}

// ValidateVerificationCode submits the received code and requests browser
// trust. A wrong code returns false without an error and leaves the
// session awaiting its second factor; any other failure propagates. A
// correct code triggers a fresh login so the trust cookie is obtained and
// persisted, and the result reports whether the second factor is cleared.
func (s *Session) ValidateVerificationCode(ctx context.Context, device TrustedDevice, code string) (bool, error) {
	body := device.payload()
	body["verificationCode"] = code
	body["trustBrowser"] = true

	_, err := s.client.Post(ctx, s.setupEndpoint+"/validateVerificationCode", nil, body)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Code == codeWrongVerification {
			s.metrics.RecordVerificationAttempt(ctx, "rejected")
			s.logger.Info("verification code rejected", logging.Account(s.appleID))
			return false, nil
		}
		s.metrics.RecordVerificationAttempt(ctx, "error")
		return false, err
	}
	s.metrics.RecordVerificationAttempt(ctx, "success")

	if err := s.Authenticate(ctx); err != nil {
		return false, err
	}
	return !s.RequiresSecondFactor(), nil
}

func (s *Session) loadCookies() {
	cookies := s.store.Load(s.appleID)
	if len(cookies) == 0 {
		return
	}
	u, err := url.Parse(s.setupEndpoint)
	if err != nil {
		return
	}
	s.jar.SetCookies(u, cookies)
	s.logger.Debug("loaded persisted session cookies",
		logging.Account(s.appleID),
		slog.Int("count", len(cookies)))
}

func (s *Session) saveCookies() error {
	u, err := url.Parse(s.setupEndpoint)
	if err != nil {
		return err
	}
	return s.store.Save(s.appleID, s.jar.Cookies(u))
}

func defaultCookieDirectory() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "icloudctl-cookies")
	}
	return filepath.Join(home, ".icloudctl", "cookies")
}
