// Package keygen generates and parses session tokens.
package keygen

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/rezkam/taskflow/internal/domain"
)

// Token layout constants.
const (
	TokenPrefix  = "tfs" // taskflow session
	TokenVersion = "v1"
)

// TokenParts represents the components of a session token.
type TokenParts struct {
	Version    string
	ShortToken string // Lookup key: 12 hex chars from the BLAKE2b hash of LongSecret
	LongSecret string // 43 chars base64url, verified against a stored hash
	FullToken  string
}

// GenerateSessionToken creates a new token following the pattern:
// tfs-{version}-{short_token}-{long_secret}
// Example: tfs-v1-a3f5d8c2b4e6-8h3k2jf9s7d6f5g4h3j2k1m0n9p8q7r6s5t4u3v2w1x
func GenerateSessionToken() (*TokenParts, error) {
	longBytes := make([]byte, 32)
	if _, err := rand.Read(longBytes); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	longSecret := base64.RawURLEncoding.EncodeToString(longBytes)

	// 48 bits of a hash over 256 random bits: unique enough for an indexed lookup column.
	hash := blake2b.Sum256([]byte(longSecret))
	shortToken := hex.EncodeToString(hash[:6])

	return &TokenParts{
		Version:    TokenVersion,
		ShortToken: shortToken,
		LongSecret: longSecret,
		FullToken:  strings.Join([]string{TokenPrefix, TokenVersion, shortToken, longSecret}, "-"),
	}, nil
}

// ParseSessionToken splits a token into its components.
// The long secret is base64url and may itself contain hyphens.
func ParseSessionToken(token string) (*TokenParts, error) {
	parts := strings.SplitN(token, "-", 4)
	if len(parts) != 4 {
		return nil, fmt.Errorf("%w: expected 4 parts, got %d", domain.ErrInvalidTokenFormat, len(parts))
	}
	if parts[0] != TokenPrefix {
		return nil, fmt.Errorf("%w: unknown prefix %q", domain.ErrInvalidTokenFormat, parts[0])
	}
	if parts[2] == "" || parts[3] == "" {
		return nil, fmt.Errorf("%w: empty token segment", domain.ErrInvalidTokenFormat)
	}

	return &TokenParts{
		Version:    parts[1],
		ShortToken: parts[2],
		LongSecret: parts[3],
		FullToken:  token,
	}, nil
}

// HashSecret computes the hex-encoded BLAKE2b-256 hash of secret.
func HashSecret(secret string) string {
	hash := blake2b.Sum256([]byte(secret))
	return hex.EncodeToString(hash[:])
}

// MaskToken returns a loggable form of a token: "tfs-v1-a3f5d8c2b4e6-****".
func MaskToken(token string) string {
	parts, err := ParseSessionToken(token)
	if err != nil {
		return "***"
	}
	return strings.Join([]string{TokenPrefix, parts.Version, parts.ShortToken, "****"}, "-")
}
