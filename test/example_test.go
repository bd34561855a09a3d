package test

import (
	"context"
	"errors"
	"time"

	goGate "github.com/MrEthical07/goGate"
	"github.com/redis/go-redis/v9"
)

// ExampleNew demonstrates gateway construction with production-style dependencies.
func ExampleNew() {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})

	cfg := goGate.DefaultConfig()
	cfg.Vault.Key = []byte("replace-with-32-bytes-of-entropy!")
	cfg.Security.ProductionMode = true

	gateway, _ := goGate.New().
		WithConfig(cfg).
		WithRedis(rdb).
		Build()
	_ = gateway
}

// ExampleGateway_Do shows the cache-aside read path with a custom fetcher.
func ExampleGateway_Do() {
	var gateway *goGate.Gateway
	var principal goGate.Principal

	fetcher := goGate.FetcherFunc(func(ctx context.Context, p goGate.Principal, key string) ([]byte, error) {
		// Reach the upstream system with the credential recovered from the
		// session token.
		_ = p.Secret
		return []byte("42.7 kWh"), nil
	})

	value, err := gateway.Do(context.Background(), principal, "meter:42:reading",
		15*time.Minute, time.Hour, fetcher)
	if err != nil {
		_ = err
	}
	_ = value
}

// ExampleGateway_Authenticate shows structured error handling on the hot path.
func ExampleGateway_Authenticate() {
	var gateway *goGate.Gateway

	_, err := gateway.Authenticate(context.Background(), "presented-token")
	switch {
	case errors.Is(err, goGate.ErrTokenExpired):
		// Ask the client to log in again.
	case errors.Is(err, goGate.ErrSignatureInvalid):
		// Possible tampering; already audited by the gateway.
	case errors.Is(err, goGate.ErrTokenMalformed):
		// Not a token at all.
	}
}
