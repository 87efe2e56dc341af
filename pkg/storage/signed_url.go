package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidToken = errors.New("invalid media token")
	ErrTokenExpired = errors.New("media token expired")
)

// SignedURLSigner issues and verifies tokens that grant read access to one
// stored object until they expire.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign returns a token for key.
func (s *SignedURLSigner) Sign(key string) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errors.New("object key required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, errors.New("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl)
	encodedKey := base64.RawURLEncoding.EncodeToString([]byte(key))
	exp := strconv.FormatInt(expiresAt.Unix(), 10)
	return strings.Join([]string{encodedKey, exp, s.signature(encodedKey, exp)}, "."), expiresAt, nil
}

// Verify checks token and returns the object key it grants.
func (s *SignedURLSigner) Verify(token string) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", ErrInvalidToken
	}
	encodedKey, exp, signature := parts[0], parts[1], parts[2]

	if !hmac.Equal([]byte(s.signature(encodedKey, exp)), []byte(signature)) {
		return "", ErrInvalidToken
	}
	expUnix, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return "", ErrInvalidToken
	}
	if s.now().After(time.Unix(expUnix, 0)) {
		return "", ErrTokenExpired
	}
	rawKey, err := base64.RawURLEncoding.DecodeString(encodedKey)
	if err != nil {
		return "", ErrInvalidToken
	}
	return string(rawKey), nil
}

func (s *SignedURLSigner) signature(encodedKey, exp string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(encodedKey + "|" + exp))
	return hex.EncodeToString(mac.Sum(nil))
}
