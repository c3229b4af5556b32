package auth

import (
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSignerRequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := NewSigner("  ")
	require.True(t, eris.Is(err, ErrMissingSecret))
}

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()

	signer, err := NewSigner("s3cret")
	require.NoError(t, err)

	token, err := signer.Issue("functions", time.Hour)
	require.NoError(t, err)

	claims, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "functions", claims.Scope)
	assert.Equal(t, "neuralpost", claims.Issuer)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestVerifyRejectsWrongSecretAndExpiry(t *testing.T) {
	t.Parallel()

	issuerSigner, err := NewSigner("one")
	require.NoError(t, err)
	otherSigner, err := NewSigner("two")
	require.NoError(t, err)

	token, err := issuerSigner.Issue("functions", time.Hour)
	require.NoError(t, err)

	_, err = otherSigner.Verify(token)
	assert.True(t, eris.Is(err, ErrInvalidToken))

	issuerSigner.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := issuerSigner.Issue("functions", time.Hour)
	require.NoError(t, err)
	issuerSigner.now = time.Now

	_, err = issuerSigner.Verify(expired)
	assert.True(t, eris.Is(err, ErrInvalidToken))

	_, err = issuerSigner.Verify("not-a-token")
	assert.True(t, eris.Is(err, ErrInvalidToken))
}

func TestIssueWithoutExpiry(t *testing.T) {
	t.Parallel()

	signer, err := NewSigner("s3cret")
	require.NoError(t, err)

	token, err := signer.Issue("", 0)
	require.NoError(t, err)

	claims, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	token, ok := BearerToken("Bearer abc.def.ghi")
	assert.True(t, ok)
	assert.Equal(t, "abc.def.ghi", token)

	token, ok = BearerToken("bearer xyz")
	assert.True(t, ok)
	assert.Equal(t, "xyz", token)

	_, ok = BearerToken("Basic abc")
	assert.False(t, ok)
	_, ok = BearerToken("Bearer ")
	assert.False(t, ok)
	_, ok = BearerToken("")
	assert.False(t, ok)
}

func TestClaimsAllows(t *testing.T) {
	t.Parallel()

	all := &Claims{Scope: ScopeAll}
	assert.True(t, all.Allows(ScopeDaily))
	assert.True(t, all.Allows(ScopeIndexing))

	daily := &Claims{Scope: ScopeDaily}
	assert.True(t, daily.Allows(ScopeDaily))
	assert.False(t, daily.Allows(ScopeGenerate))
}
