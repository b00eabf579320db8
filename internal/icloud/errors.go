package icloud

import "fmt"

// Server error codes with special classification rules.
const (
	codeZoneNotFound         = "ZONE_NOT_FOUND"
	codeAuthenticationFailed = "AUTHENTICATION_FAILED"
	codeAccessDenied         = "ACCESS_DENIED"

	// Returned by validateVerificationCode when the submitted code is wrong.
	codeWrongVerification = "-21669"
)

const (
	// Reason text the server emits when a request lacks the trust cookie
	// while the account is still awaiting its second factor.
	reasonMissingTrustToken = "Missing X-APPLE-WEBAUTH-TOKEN cookie"

	notActivatedRemediation = "Please log into https://icloud.com/ to manually finish setting up your iCloud service"

	accessDeniedAdvisory = ".  Please wait a few minutes then try again." +
		"The remote servers might be trying to throttle requests."
)

// APIError is the generic error for any classified web service failure.
// All typed errors in this package originate in the response classifier.
type APIError struct {
	// Reason is the human-readable message extracted from the payload.
	Reason string

	// Code is the machine code, when the payload carried one. Codes can be
	// symbolic ("ACCESS_DENIED") or numeric ("-21669") depending on the
	// backend service.
	Code string

	// Retry marks the transient condition the request layer resubmits once.
	Retry bool
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Code == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s (%s)", e.Reason, e.Code)
}

// NotActivatedError reports a web service that was never provisioned for
// this account. The reason carries a remediation instruction instead of
// the raw server text.
type NotActivatedError struct {
	APIError
}

// SecondFactorRequiredError is returned when a request fails because the
// session is still awaiting two-step verification. It carries the account
// identifier for display purposes only.
type SecondFactorRequiredError struct {
	AppleID string
}

// Error implements the error interface
func (e *SecondFactorRequiredError) Error() string {
	return fmt.Sprintf("two-step authentication required for account: %s", e.AppleID)
}

// FailedLoginError is the only error Authenticate returns on failure. It
// wraps the underlying classified error as the cause.
type FailedLoginError struct {
	Err error
}

// Error implements the error interface
func (e *FailedLoginError) Error() string {
	return fmt.Sprintf("invalid email/password combination: %v", e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *FailedLoginError) Unwrap() error {
	return e.Err
}
