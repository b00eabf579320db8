// Package logging provides structured logging utilities built on log/slog.
//
// It defines canonical attribute keys and helper functions so that log
// entries are consistent across all service clients, plus a RedactingHandler
// that strips a session's password from every emitted record. Account
// identifiers are logged as truncated SHA-256 digests rather than raw
// Apple IDs, allowing correlation without exposing PII.
package logging
