package keygen_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/taskflow/internal/domain"
	"github.com/rezkam/taskflow/internal/infrastructure/keygen"
)

// TestGenerateSessionToken_UniqueShortTokens generates tokens back to back;
// short tokens carry a unique constraint in storage.
func TestGenerateSessionToken_UniqueShortTokens(t *testing.T) {
	const numTokens = 1000
	seen := make(map[string]bool, numTokens)

	for i := range numTokens {
		parts, err := keygen.GenerateSessionToken()
		require.NoError(t, err, "token %d", i)
		require.False(t, seen[parts.ShortToken], "duplicate short token %s", parts.ShortToken)
		seen[parts.ShortToken] = true
	}
}

func TestParseSessionToken_RoundTrip(t *testing.T) {
	generated, err := keygen.GenerateSessionToken()
	require.NoError(t, err)

	parsed, err := keygen.ParseSessionToken(generated.FullToken)
	require.NoError(t, err)

	assert.Equal(t, generated.ShortToken, parsed.ShortToken)
	assert.Equal(t, generated.LongSecret, parsed.LongSecret)
	assert.Equal(t, keygen.TokenVersion, parsed.Version)
	assert.Len(t, parsed.ShortToken, 12)
}

func TestParseSessionToken_SecretWithHyphens(t *testing.T) {
	parsed, err := keygen.ParseSessionToken("tfs-v1-abcdef123456-se-cr-et")
	require.NoError(t, err)
	assert.Equal(t, "se-cr-et", parsed.LongSecret)
}

func TestParseSessionToken_Invalid(t *testing.T) {
	for _, token := range []string{"", "tfs-v1-abc", "sk-acme-v1-abc-def", "tfs-v1--secret"} {
		_, err := keygen.ParseSessionToken(token)
		assert.ErrorIs(t, err, domain.ErrInvalidTokenFormat, "token %q", token)
	}
}

func TestHashSecret(t *testing.T) {
	h := keygen.HashSecret("secret")
	assert.Len(t, h, 64)
	assert.Equal(t, h, keygen.HashSecret("secret"))
	assert.NotEqual(t, h, keygen.HashSecret("Secret"))
}

func TestMaskToken(t *testing.T) {
	parts, err := keygen.GenerateSessionToken()
	require.NoError(t, err)

	masked := keygen.MaskToken(parts.FullToken)

	assert.Equal(t, "tfs-v1-"+parts.ShortToken+"-****", masked)
	assert.False(t, strings.Contains(masked, parts.LongSecret))
	assert.Equal(t, "***", keygen.MaskToken("garbage"))
}
