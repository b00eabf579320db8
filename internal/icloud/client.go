package icloud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/picklepete/icloudgo/internal/instrumentation"
	"github.com/picklepete/icloudgo/internal/logging"
)

const (
	// User agent of the web client the endpoints were built for.
	defaultUserAgent = "Opera/9.52 (X11; Linux i686; U; en)"

	// Status code the server uses to ask for the same request again.
	statusTryAgain = 450
)

// Requester issues authenticated requests against iCloud web services.
// *Client implements it; service sub-clients accept the interface so test
// doubles are a constructor argument, not a global substitution.
type Requester interface {
	Get(ctx context.Context, endpoint string, params url.Values) (*Response, error)
	Post(ctx context.Context, endpoint string, params url.Values, body any) (*Response, error)
}

// Response is a completed exchange that passed classification.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// JSON decodes the response body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

// challengeState is the session view the classifier needs to recognize
// the missing-trust-cookie condition.
type challengeState interface {
	RequiresSecondFactor() bool
	AppleID() string
}

// Client is the authenticated request layer shared by the session and all
// service sub-clients. It merges the session parameters into every query,
// pipes each response through the classifier, and resubmits a request at
// most once when the server signals the transient try-again status.
type Client struct {
	hc           *http.Client
	params       url.Values
	state        challengeState
	homeEndpoint string
	logger       *slog.Logger
	metrics      *instrumentation.Metrics
}

func newClient(hc *http.Client, params url.Values, state challengeState, homeEndpoint string, logger *slog.Logger, metrics *instrumentation.Metrics) *Client {
	return &Client{
		hc:           hc,
		params:       params,
		state:        state,
		homeEndpoint: homeEndpoint,
		logger:       logger,
		metrics:      metrics,
	}
}

// Get issues an authenticated GET request.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) (*Response, error) {
	return c.do(ctx, http.MethodGet, endpoint, params, nil, false)
}

// Post issues an authenticated POST request with a JSON body.
func (c *Client) Post(ctx context.Context, endpoint string, params url.Values, body any) (*Response, error) {
	return c.do(ctx, http.MethodPost, endpoint, params, body, false)
}

// do performs one exchange. retried marks the governed retry so a request
// is resubmitted at most once, never recursively.
func (c *Client) do(ctx context.Context, method, endpoint string, params url.Values, body any, retried bool) (*Response, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}

	query := u.Query()
	for key, values := range c.params {
		query[key] = values
	}
	for key, values := range params {
		query[key] = values
	}
	u.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Origin", c.homeEndpoint)
	req.Header.Set("Referer", c.homeEndpoint+"/")
	req.Header.Set("User-Agent", defaultUserAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	httpResp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", u.Path, err)
	}
	raw, err := io.ReadAll(httpResp.Body)
	_ = httpResp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       raw,
	}
	c.metrics.RecordAPIRequest(ctx, method, u.Path, resp.StatusCode, time.Since(start))

	if err := c.classify(resp); err != nil {
		var apiErr *APIError
		if !retried && errors.As(err, &apiErr) && apiErr.Retry {
			c.logger.Warn("retrying request after transient server error",
				slog.String(logging.KeyURL, u.Path),
				logging.Err(err))
			c.metrics.RecordRetry(ctx, u.Path)
			return c.do(ctx, method, endpoint, params, body, true)
		}
		return nil, err
	}
	return resp, nil
}

// classify is the single chokepoint that turns error payloads into typed
// errors. A JSON body that fails to decode is tolerated: the condition is
// logged and the raw response returned, so callers must cope with bodies
// the client could not interpret.
func (c *Client) classify(resp *Response) error {
	contentType := resp.Header.Get("Content-Type")
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	contentType = strings.TrimSpace(contentType)
	isJSON := contentType == "application/json" || contentType == "text/json"

	if resp.StatusCode >= 400 && !isJSON {
		if resp.StatusCode == statusTryAgain {
			return &APIError{
				Reason: http.StatusText(resp.StatusCode),
				Code:   strconv.Itoa(resp.StatusCode),
				Retry:  true,
			}
		}
		return c.raiseError(strconv.Itoa(resp.StatusCode), http.StatusText(resp.StatusCode))
	}
	if !isJSON || len(resp.Body) == 0 {
		return nil
	}

	decoder := json.NewDecoder(bytes.NewReader(resp.Body))
	decoder.UseNumber()
	var data map[string]any
	if err := decoder.Decode(&data); err != nil {
		c.logger.Warn("failed to decode JSON response", logging.Err(err))
		return nil
	}

	reason := firstString(data, "errorMessage", "reason", "errorReason", "error")
	if reason == "" && truthy(data["error"]) {
		reason = "Unknown reason"
	}
	if reason == "" {
		return nil
	}
	return c.raiseError(errorCode(data), reason)
}

// raiseError maps a decoded reason/code pair onto the typed taxonomy.
func (c *Client) raiseError(code, reason string) error {
	if c.state != nil && c.state.RequiresSecondFactor() && reason == reasonMissingTrustToken {
		return &SecondFactorRequiredError{AppleID: c.state.AppleID()}
	}

	switch code {
	case codeZoneNotFound, codeAuthenticationFailed:
		err := &NotActivatedError{APIError: APIError{
			Reason: notActivatedRemediation,
			Code:   code,
		}}
		c.logger.Error("service not activated", logging.Err(err))
		return err
	case codeAccessDenied:
		reason += accessDeniedAdvisory
	}

	err := &APIError{Reason: reason, Code: code}
	c.logger.Error("api request failed", logging.Err(err))
	return err
}

// firstString returns the first key holding a non-empty string value.
func firstString(data map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := data[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// errorCode extracts the machine code, normalizing numeric codes to their
// decimal string form.
func errorCode(data map[string]any) string {
	for _, key := range []string{"errorCode", "serverErrorCode"} {
		switch v := data[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case json.Number:
			return v.String()
		}
	}
	return ""
}

// truthy mirrors the loose boolean semantics of the error flag field.
func truthy(v any) bool {
	switch value := v.(type) {
	case nil:
		return false
	case bool:
		return value
	case string:
		return value != ""
	case json.Number:
		f, err := value.Float64()
		return err == nil && f != 0
	case map[string]any:
		return len(value) > 0
	case []any:
		return len(value) > 0
	default:
		return true
	}
}
