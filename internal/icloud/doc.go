// Package icloud implements the iCloud web session: login, optional
// two-step verification, cookie persistence across runs, and the
// authenticated request layer shared by all service clients.
//
// A Session is created with New, which performs the initial login
// immediately. Callers check RequiresSecondFactor and drive the
// TrustedDevices/SendVerificationCode/ValidateVerificationCode flow when
// the account is challenged. ServiceURL hands out the per-service base
// URLs unlocked by login; the service packages under internal/ combine
// such a URL with the session's Requester.
//
// A Session is not safe for concurrent use. Session parameters are
// mutated in place during Authenticate and ValidateVerificationCode.
package icloud
