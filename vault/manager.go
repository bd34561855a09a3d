package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenMalformed is returned when a token cannot be parsed at all.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrSignatureInvalid is returned when a token parses but its signature
	// or sealed payload does not verify. Treat as a tamper attempt.
	ErrSignatureInvalid = errors.New("token signature invalid")
	// ErrTokenExpired is returned for a well-formed, correctly signed token
	// past its expiry. The caller should re-authenticate, not retry.
	ErrTokenExpired = errors.New("token expired")
)

const gcmNonceSize = 12

// Principal is the authenticated caller identity recovered from a token.
// It lives only for the request that decoded it.
type Principal struct {
	ID     string
	Secret string
}

// Config defines a public type used by goGate APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Key        []byte
	SessionTTL time.Duration
	Issuer     string
	Leeway     time.Duration
	Clock      func() time.Time
}

// Manager defines a public type used by goGate APIs.
//
// Manager instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Manager struct {
	config Config
	sealed cipher.AEAD
	hmac   []byte
	clock  func() time.Time
}

type sessionClaims struct {
	Enc string `json:"enc"`
	jwt.RegisteredClaims
}

// NewManager describes the newmanager operation and its observable behavior.
//
// NewManager may return an error when input validation, dependency calls, or security checks fail.
// NewManager does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Key) == 0 {
		return nil, errors.New("vault requires key material")
	}
	if cfg.SessionTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	// One key in, two keys out: the raw key signs, its SHA-256 digest seals.
	derived := sha256.Sum256(cfg.Key)
	block, err := aes.NewCipher(derived[:])
	if err != nil {
		return nil, fmt.Errorf("derive seal key: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init aead: %w", err)
	}

	return &Manager{
		config: cfg,
		sealed: aead,
		hmac:   append([]byte(nil), cfg.Key...),
		clock:  cfg.Clock,
	}, nil
}

// Create issues a signed token carrying principalID and the sealed secret.
// A ttl of zero falls back to the configured SessionTTL.
//
// Create may return an error when input validation, dependency calls, or security checks fail.
// Create does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) Create(principalID, secret string, ttl time.Duration) (string, time.Time, error) {
	if strings.TrimSpace(principalID) == "" {
		return "", time.Time{}, errors.New("empty principal id")
	}
	if secret == "" {
		return "", time.Time{}, errors.New("empty secret")
	}
	if ttl <= 0 {
		ttl = m.config.SessionTTL
	}

	enc, err := m.seal(secret)
	if err != nil {
		return "", time.Time{}, err
	}

	now := m.clock()
	expiresAt := now.Add(ttl)

	claims := sessionClaims{
		Enc: enc,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principalID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	if m.config.Issuer != "" {
		claims.Issuer = m.config.Issuer
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.hmac)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return token, expiresAt, nil
}

// Verify checks the token and recovers the principal it was created for.
// Failures are classified as [ErrTokenMalformed], [ErrSignatureInvalid], or
// [ErrTokenExpired]; expiry is only ever reported for a token whose signature
// verified.
//
// Verify may return an error when input validation, dependency calls, or security checks fail.
// Verify does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) Verify(token string) (Principal, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.clock),
		jwt.WithExpirationRequired(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	parsed, err := parser.ParseWithClaims(token, &sessionClaims{}, func(*jwt.Token) (interface{}, error) {
		return m.hmac, nil
	})
	if err != nil {
		return Principal{}, classifyParseError(err)
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return Principal{}, ErrSignatureInvalid
	}
	if claims.Subject == "" || claims.Enc == "" {
		return Principal{}, fmt.Errorf("%w: missing required claims", ErrTokenMalformed)
	}

	secret, err := m.open(claims.Enc)
	if err != nil {
		// HMAC passed but the seal did not: key mismatch or claim tamper.
		return Principal{}, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}

	return Principal{ID: claims.Subject, Secret: secret}, nil
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	default:
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
}

func (m *Manager) seal(secret string) (string, error) {
	nonce := make([]byte, gcmNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("seal nonce: %w", err)
	}
	sealed := m.sealed.Seal(nonce, nonce, []byte(secret), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (m *Manager) open(enc string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(enc)
	if err != nil {
		return "", errors.New("sealed payload not base64")
	}
	if len(raw) < gcmNonceSize+1 {
		return "", errors.New("sealed payload truncated")
	}
	plain, err := m.sealed.Open(nil, raw[:gcmNonceSize], raw[gcmNonceSize:], nil)
	if err != nil {
		return "", errors.New("sealed payload rejected")
	}
	return string(plain), nil
}
