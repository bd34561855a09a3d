// Package vault issues and verifies the stateless session tokens that carry a
// caller's portal credentials through the gateway.
//
// A token is an HS256-signed JWT whose claims hold the principal id, a random
// token id, issue/expiry timestamps, and the caller secret sealed with
// AES-256-GCM under a key derived from the server key. The JWT HMAC covers the
// complete payload, so any mutation of the encoded token fails verification
// before the secret is ever decrypted.
//
// Verification is a pure function of token, server key, and clock: no session
// table, no I/O, no shared mutable state. Any process holding the same server
// key can verify tokens issued by any other. The tradeoff is that a token
// cannot be revoked before its expiry.
//
// # What this package must NOT do
//
//   - Persist principals or secrets anywhere.
//   - Log or expose decrypted secrets.
//   - Import goGate or any other goGate sub-package.
package vault
