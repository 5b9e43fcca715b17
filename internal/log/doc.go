// Package log provides secure logging with automatic sanitization of
// sensitive values, built on top of the standard slog package.
//
// Crawl requests can carry user-supplied HTTP headers such as
// Authorization or Cookie for fetching pages behind authentication. The
// SecureHandler masks those values before they reach the log output, so
// verbose crawl logs stay safe to share:
//   - HTTP credential headers (Authorization, Cookie, X-Api-Key, ...)
//   - Secret values detected by pattern matching (bearer tokens, JWTs,
//     basic auth blobs, long API keys)
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//	logger.Info("request sent",
//	    "cookie", "session=abc123", // masked in output
//	    "url", "http://example.com",
//	)
//	slog.SetDefault(logger)
package log
