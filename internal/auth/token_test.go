package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-signing-secret-unit-test-signing-secret"

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestIssuer(t *testing.T, clock *fakeClock) *TokenIssuer {
	t.Helper()
	iss, err := NewTokenIssuer(testSecret, "buildingportal", 24*time.Hour, clock.Now)
	require.NoError(t, err)
	return iss
}

func TestIssueAndVerify(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	iss := newTestIssuer(t, clock)

	raw, issued, err := iss.Issue("u-1", "kim", "Kim", "resident")
	require.NoError(t, err)
	assert.Equal(t, clock.t.Add(24*time.Hour), issued.ExpiresAt)

	got, err := iss.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.UserID)
	assert.Equal(t, "kim", got.Username)
	assert.Equal(t, "Kim", got.Name)
	assert.Equal(t, issued.ExpiresAt, got.ExpiresAt)
}

func TestVerifyExpired(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	iss := newTestIssuer(t, clock)
	raw, _, err := iss.Issue("u-1", "kim", "Kim", "resident")
	require.NoError(t, err)

	clock.t = clock.t.Add(24*time.Hour + time.Second)
	_, err = iss.Verify(raw)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyTamperedSignature(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	iss := newTestIssuer(t, clock)
	raw, _, err := iss.Issue("u-1", "kim", "Kim", "resident")
	require.NoError(t, err)

	parts := strings.Split(raw, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = iss.Verify(tampered)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRejectsOtherSecret(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	other, err := NewTokenIssuer("another-secret-another-secret-another-secret", "buildingportal", time.Hour, clock.Now)
	require.NoError(t, err)
	raw, _, err := other.Issue("u-1", "kim", "Kim", "admin")
	require.NoError(t, err)

	_, err = newTestIssuer(t, clock).Verify(raw)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyMalformed(t *testing.T) {
	iss := newTestIssuer(t, &fakeClock{t: time.Now()})
	for _, raw := range []string{"", "   ", "not-a-token", "a.b.c"} {
		_, err := iss.Verify(raw)
		assert.ErrorIs(t, err, ErrTokenInvalid, raw)
	}
}

func TestNewTokenIssuerRequiresSecret(t *testing.T) {
	_, err := NewTokenIssuer("", "buildingportal", time.Hour, nil)
	assert.Error(t, err)
}
