package goGate

import (
	"errors"

	"github.com/MrEthical07/goGate/cache"
	"github.com/MrEthical07/goGate/vault"
)

var (
	// ErrGatewayNotReady is an exported constant or variable used by the gateway runtime.
	ErrGatewayNotReady = errors.New("gateway not initialized")
	// ErrGatewayClosed is an exported constant or variable used by the gateway runtime.
	ErrGatewayClosed = errors.New("gateway closed")
	// ErrRateLimited is an exported constant or variable used by the gateway runtime.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrConfiguration is an exported constant or variable used by the gateway runtime.
	ErrConfiguration = errors.New("configuration error")
	// ErrFetchFailed is an exported constant or variable used by the gateway runtime.
	ErrFetchFailed = errors.New("fetch failed")
)

// Authentication failures from the vault, re-exported so callers can classify
// without importing the sub-package.
var (
	// ErrTokenMalformed is an exported constant or variable used by the gateway runtime.
	ErrTokenMalformed = vault.ErrTokenMalformed
	// ErrSignatureInvalid is an exported constant or variable used by the gateway runtime.
	ErrSignatureInvalid = vault.ErrSignatureInvalid
	// ErrTokenExpired is an exported constant or variable used by the gateway runtime.
	ErrTokenExpired = vault.ErrTokenExpired
)

// ErrCacheBackendUnavailable is an exported constant or variable used by the gateway runtime.
var ErrCacheBackendUnavailable = cache.ErrBackendUnavailable

// IsAuthenticationError reports whether err is one of the three
// authentication failure classes returned by [Gateway.Authenticate].
func IsAuthenticationError(err error) bool {
	return errors.Is(err, ErrTokenMalformed) ||
		errors.Is(err, ErrSignatureInvalid) ||
		errors.Is(err, ErrTokenExpired)
}
