package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)

	token, expiresAt, err := signer.Generate("job-1", "c1/agenda-2025-03-17.csv")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	jobID, relPath, parsedExpiry, err := signer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "job-1", jobID)
	assert.Equal(t, "c1/agenda-2025-03-17.csv", relPath)
	assert.Equal(t, expiresAt.Unix(), parsedExpiry.Unix())
}

func TestSignedURLRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)
	token, _, err := signer.Generate("job-1", "c1/agenda.csv")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 4)

	// Swap the job id; the signature no longer matches.
	parts[0] = "job-2"
	_, _, _, err = signer.Parse(strings.Join(parts, "."))
	assert.Error(t, err)

	// A token signed with a different secret is rejected too.
	other := NewSignedURLSigner("other-secret", time.Minute)
	otherToken, _, err := other.Generate("job-1", "c1/agenda.csv")
	require.NoError(t, err)
	_, _, _, err = signer.Parse(otherToken)
	assert.Error(t, err)
}

func TestSignedURLExpiry(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)
	// Sign a token that is already past its expiry.
	signer.ttl = -time.Minute
	token, _, err := signer.Generate("job-1", "c1/agenda.csv")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(token)
	assert.ErrorContains(t, err, "expired")
}

func TestSignedURLMalformedToken(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)

	_, _, _, err := signer.Parse("not-a-token")
	assert.Error(t, err)

	_, _, _, err = signer.Parse("a.b.c.d")
	assert.Error(t, err)
}

func TestSignedURLRequiresArguments(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)

	_, _, err := signer.Generate("", "path")
	assert.Error(t, err)
	_, _, err = signer.Generate("job", "")
	assert.Error(t, err)

	unsigned := NewSignedURLSigner("", time.Minute)
	_, _, err = unsigned.Generate("job", "path")
	assert.Error(t, err)
}
