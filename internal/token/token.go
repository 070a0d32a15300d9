// Package token issues and verifies HMAC-signed room access tokens for chat
// clients.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims carried by a room access token.
type Claims struct {
	Room      string `json:"room"`
	Identity  string `json:"identity"`
	ExpiresAt int64  `json:"exp"`
}

// Issuer mints and verifies tokens with a shared signing key.
type Issuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewIssuer(signingKey string, ttl time.Duration) *Issuer {
	return &Issuer{
		key: []byte(signingKey),
		ttl: ttl,
		now: time.Now,
	}
}

// Issue mints a token of the form base64url(claims).base64url(signature).
func (i *Issuer) Issue(room, identity string) (string, error) {
	if room == "" || identity == "" {
		return "", fmt.Errorf("room and identity are required")
	}

	claims := Claims{
		Room:      room,
		Identity:  identity,
		ExpiresAt: i.now().Add(i.ttl).Unix(),
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("marshal claims: %w", err)
	}

	encoded := base64.RawURLEncoding.EncodeToString(payload)
	return encoded + "." + i.sign(encoded), nil
}

// Verify checks the signature and expiry and returns the embedded claims.
func (i *Issuer) Verify(tok string) (Claims, error) {
	encoded, sig, found := strings.Cut(tok, ".")
	if !found {
		return Claims{}, ErrInvalidToken
	}
	if !hmac.Equal([]byte(sig), []byte(i.sign(encoded))) {
		return Claims{}, ErrInvalidToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return Claims{}, ErrInvalidToken
	}
	if i.now().Unix() >= claims.ExpiresAt {
		return Claims{}, ErrExpiredToken
	}
	return claims, nil
}

func (i *Issuer) sign(encoded string) string {
	mac := hmac.New(sha256.New, i.key)
	mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
