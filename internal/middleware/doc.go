// Package middleware provides HTTP middleware for the gallery admin server.
//
// It includes:
//   - Request ids (X-Request-ID, UUIDv4) carried in the request context
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics with bounded path labels
//   - Permissive CORS headers and preflight handling for the admin panel
package middleware
