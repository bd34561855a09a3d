// Package cache implements the two-tier key/value cache behind the gateway:
// a bounded, short-TTL in-process fast tier in front of a larger persistent
// tier reached through the [Backend] interface.
//
// # Read path
//
// Get checks the fast tier first, then the backend. A backend hit is promoted
// into the fast tier under the fast tier's own TTL, independent of how much
// persistent TTL remained. Shard locks are never held across backend I/O, so
// a slow persistent store cannot stall readers that only touch the fast tier.
//
// # Failure mode
//
// A backend error never fails the request. Get and Set degrade to
// fast-tier-only behavior, report the error through the configured OnDegraded
// hook, and carry on. [ErrBackendUnavailable] classifies the condition for
// callers that inspect the hook's error.
//
// # What this package must NOT do
//
//   - Block the write path on persistent-tier housekeeping (culling belongs
//     to the maintenance scheduler).
//   - Interpret cached values (both tiers store opaque bytes).
//   - Roll back a committed write when a request is abandoned.
package cache
