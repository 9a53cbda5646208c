package identity

import (
	"testing"
	"time"

	"loantrack/internal/domain/identity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokens_IssueAndParse(t *testing.T) {
	tk := NewTokens(testSecret, time.Hour)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tk.now = func() time.Time { return fixed }

	raw, exp, err := tk.Issue("abc", identity.RoleVerifier)
	require.NoError(t, err)
	assert.True(t, exp.Equal(fixed.Add(time.Hour)), "expiry = %v", exp)

	claims, err := tk.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "abc", claims.Subject)
	assert.Equal(t, identity.RoleVerifier, claims.Role)
}

func TestTokens_Rejects(t *testing.T) {
	tk := NewTokens(testSecret, time.Hour)
	raw, _, _ := tk.Issue("abc", identity.RoleUser)

	other := NewTokens("ffffffffffffffffffffffffffffffff", time.Hour)
	_, err := other.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken, "foreign secret")

	tk.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = tk.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken, "expired")

	_, err = tk.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken, "garbage")

	// "none" and asymmetric algorithms are refused
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "abc", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	_, err = NewTokens(testSecret, time.Hour).Parse(none)
	assert.ErrorIs(t, err, ErrInvalidToken, "alg none")

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "abc"}).SignedString([]byte(testSecret))
	_, err = NewTokens(testSecret, time.Hour).Parse(noExp)
	assert.ErrorIs(t, err, ErrInvalidToken, "missing exp")
}
