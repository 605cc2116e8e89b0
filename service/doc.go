// Package service serves steam table lookups over HTTP.
//
// API routes (/modes, /query, /sweep, /auth/identity) pass through request
// id, access log and panic middleware and, when a secret is configured,
// require a bearer token.  Auxiliary routes (/, /status, /version,
// /metrics, /debug/pprof) are always open.
package service
