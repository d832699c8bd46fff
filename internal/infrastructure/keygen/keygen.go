package keygen

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/rostam/opsdesk/internal/domain"
	"golang.org/x/crypto/blake2b"
)

// Defaults for keys minted by this service.
const (
	KeyTypeSecret = "sk"
	ServiceName   = "opsdesk"
	KeyVersion    = "v1"
)

// APIKeyParts represents the components of an API key.
type APIKeyParts struct {
	KeyType    string
	Service    string
	Version    string
	ShortToken string // lookup token, 12 hex chars of the BLAKE2b hash prefix
	LongSecret string // 32 random bytes, base64url without padding
	FullKey    string
}

// GenerateAPIKey creates a new key following the pattern
// {key_type}-{service}-{version}-{short_token}-{long_secret},
// e.g. sk-opsdesk-v1-a3f5d8c2b4e6-8h3k2jf9s7d6f5g4h3j2k1m0n9p8q7r6s5t4u3v2w1x.
//
// The short token is the first 48 bits of the BLAKE2b-256 hash of the long
// secret, so a stored row never reveals the secret it indexes.
func GenerateAPIKey(keyType, service, version string) (*APIKeyParts, error) {
	longBytes := make([]byte, 32)
	if _, err := rand.Read(longBytes); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	longSecret := base64.RawURLEncoding.EncodeToString(longBytes)

	hash := blake2b.Sum256([]byte(longSecret))
	shortToken := hex.EncodeToString(hash[:6])

	fullKey := fmt.Sprintf("%s-%s-%s-%s-%s", keyType, service, version, shortToken, longSecret)

	return &APIKeyParts{
		KeyType:    keyType,
		Service:    service,
		Version:    version,
		ShortToken: shortToken,
		LongSecret: longSecret,
		FullKey:    fullKey,
	}, nil
}

// ParseAPIKey splits a key string into its components. The long secret is
// base64url and may itself contain hyphens, so only the first four
// separators split.
func ParseAPIKey(apiKey string) (*APIKeyParts, error) {
	parts := strings.SplitN(apiKey, "-", 5)
	if len(parts) != 5 {
		return nil, fmt.Errorf("%w: expected 5 parts, got %d", domain.ErrInvalidAPIKeyFormat, len(parts))
	}

	return &APIKeyParts{
		KeyType:    parts[0],
		Service:    parts[1],
		Version:    parts[2],
		ShortToken: parts[3],
		LongSecret: parts[4],
		FullKey:    apiKey,
	}, nil
}

// GetDisplayKey returns a version safe to show in listings,
// e.g. "sk-opsdesk-v1-a3f5d8c2b4e6-****".
func (k *APIKeyParts) GetDisplayKey() string {
	return fmt.Sprintf("%s-%s-%s-%s-****", k.KeyType, k.Service, k.Version, k.ShortToken)
}

// HashSecret computes the hex-encoded BLAKE2b-256 hash of the secret.
func HashSecret(secret string) string {
	hash := blake2b.Sum256([]byte(secret))
	return hex.EncodeToString(hash[:])
}

// MaskAPIKey returns a version safe to log, keeping only the key type.
func MaskAPIKey(apiKey string) string {
	parts, err := ParseAPIKey(apiKey)
	if err != nil {
		return "***"
	}
	return parts.KeyType + "-***"
}
