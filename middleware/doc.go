// Package middleware exposes HTTP adapters for goGate's authentication and
// admission operations.
//
// # Guards
//
//   - [Guard] — reads the bearer token, calls Gateway.Authenticate, and
//     injects the principal into the request context.
//   - [RateLimit] — calls Gateway.Admit for the context principal and sets
//     X-RateLimit-Limit / X-RateLimit-Remaining / X-RateLimit-Reset headers
//     on every response, plus Retry-After on denial. Exempt paths skip
//     admission entirely.
//
// Rejections are written as the gateway's JSON error envelope with the
// status from goGate.StatusFor.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Gateway calls. It does NOT
// implement authentication or admission logic itself — all decisions are
// delegated to the Gateway.
//
// # What this package must NOT do
//
//   - Parse or create session tokens directly (delegates to the Gateway).
//   - Touch the cache tiers or Redis.
//   - Invent status codes outside the fixed envelope mapping.
package middleware
