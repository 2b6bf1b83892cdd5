// Package httputil provides HTTP utilities for standardized request/response handling.
//
// # Overview
//
// Handlers use these helpers so every response is JSON and every error body has
// the same shape: {"error": "...", "code": "..."}.
//
// # Response Helpers
//
//	httputil.WriteSuccess(w, map[string]any{"success": true})
//	httputil.WriteUnauthorized(w, "invalid credentials")
//	httputil.WriteCodedError(w, http.StatusInternalServerError, "upstream_failure", err.Error())
//
// # Request Parsing
//
//	var req loginRequest
//	if !httputil.ParseJSONOrError(w, r, &req) {
//		return
//	}
//	id, ok := httputil.ParsePathStringOrError(w, r, "id")
//
// # Middleware
//
//	handler := httputil.Chain(
//		httputil.RequestIDMiddleware(logger),
//		httputil.RecoveryMiddleware,
//		httputil.LoggingMiddleware,
//	)(router)
//
// RequestIDMiddleware must run first so later middleware can log with the request id.
package httputil
