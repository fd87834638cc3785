// Package httputil holds the small amount of HTTP plumbing the watch server
// needs: JSON responses and request middleware.
//
// # Middleware
//
//	handler := httputil.Chain(
//		httputil.RequestIDMiddleware,
//		httputil.LoggingMiddleware(logger),
//		httputil.RecoveryMiddleware(logger),
//	)(router)
//
// Each request gets an X-Request-ID (generated when the client sends none),
// which the logging middleware includes in its log line.
package httputil
