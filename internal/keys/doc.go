// Package keys implements the colon-delimited cache key grammar shared by both
// cache tiers and the invalidation path.
//
// # Grammar
//
// Keys are ASCII, colon-delimited namespace paths:
//
//	namespace:identifier[:subfield[:parameter]]
//
// Invalidation patterns are either an exact key or a key prefix whose final
// segment is the wildcard "*" (e.g. "meter:42:*"). Prefix matching is
// segment-wise: "meter:42:*" matches "meter:42:unit" but never "meter:421:unit".
//
// # What this package must NOT do
//
//   - Implement storage or iteration (those live in the cache package).
//   - Be imported outside the goGate module.
package keys
