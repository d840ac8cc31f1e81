// Package server exposes the treemap pipeline over HTTP.
//
// # Endpoints
//
//	POST /v1/render   du output in the body, artifact in the response
//	GET  /healthz     liveness probe, always "ok"
//	GET  /version     build information as JSON
//
// Render options are query parameters: format, width, height, root,
// max_depth, minify and title. Unset parameters fall back to the server's
// configured defaults. The response carries the artifact with its content
// type, an X-Cache header (hit or miss) and an X-Request-ID header.
//
// Errors are returned as JSON:
//
//	{"error": "width must be positive", "code": "INVALID_DIMENSIONS", "request_id": "..."}
//
// Identical concurrent requests, meaning the same body and the same
// options, are computed once and share the result.
package server
