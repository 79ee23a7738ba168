// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// Client-state dumps routinely contain live credentials: session tokens in
// localStorage, JWTs in cached API responses, cookies mirrored into storage
// keys. Log lines that echo dump keys or values would leak them, so every
// logger in the application is wrapped with a SecureHandler that masks
// sensitive attributes before they reach the underlying handler.
//
// # Security Features
//
// The SecureHandler automatically sanitizes sensitive information in log output:
//   - Storage keys that name credentials (token, session, password, auth)
//   - Secret values detected by pattern matching (JWTs, bearer tokens, API keys)
//   - Session identifiers and authentication tokens
//
// Even in verbose mode, sensitive values are masked to prevent accidental
// exposure of secrets in logs that may be shared or stored.
//
// # Usage
//
//	// Create a secure logger
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Info("storage key analyzed",
//	    "auth_token", "eyJhbGciOi...",  // Will be sanitized to "***REDACTED***"
//	    "key", "user_profile",
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
