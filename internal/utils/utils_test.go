package utils

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var patientTokenPattern = regexp.MustCompile(`^PAT-\d+-[0-9A-Z]{9}$`)

func TestNewPatientToken_Format(t *testing.T) {
	now := time.UnixMilli(1718000000123)
	tok := NewPatientToken(now)
	assert.Regexp(t, patientTokenPattern, tok)
	assert.Contains(t, tok, "PAT-1718000000123-")
}

func TestNewPatientToken_Distinct(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		tok := NewPatientToken(now)
		require.False(t, seen[tok], "duplicate token %s", tok)
		seen[tok] = true
	}
}

func TestRoundMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{80, 80},
		{0.1 + 0.2, 0.3},
		{19.994, 19.99},
		{-2.5, -2.5},
		{33.333333, 33.33},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, RoundMoney(tt.in), 1e-9, "RoundMoney(%v)", tt.in)
	}
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("1990-05-17")
	require.True(t, ok)
	assert.Equal(t, time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC), d)

	d, ok = ParseDate("1990-05-17T10:30:00Z")
	require.True(t, ok)
	assert.Equal(t, 10, d.Hour())

	_, ok = ParseDate("17/05/1990")
	assert.False(t, ok)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("doctor123")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("doctor123", hash))
	assert.False(t, CheckPasswordHash("doctor124", hash))
	assert.False(t, CheckPasswordHash("doctor123", "not-a-bcrypt-hash"))
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	tok, err := issuer.Generate("uid-1", "a@b.com")
	require.NoError(t, err)

	claims, err := issuer.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, "uid-1", claims.Subject)
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, err := issuer.Generate("uid-1", "a@b.com")
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Validate(tok)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired), "got %v", err)
}

func TestTokenIssuer_WrongSecretAndGarbage(t *testing.T) {
	tok, err := NewTokenIssuer("one", time.Hour).Generate("uid-1", "a@b.com")
	require.NoError(t, err)

	_, err = NewTokenIssuer("two", time.Hour).Validate(tok)
	assert.True(t, errors.Is(err, jwt.ErrTokenSignatureInvalid), "got %v", err)

	_, err = NewTokenIssuer("two", time.Hour).Validate("not-a-jwt")
	assert.True(t, errors.Is(err, jwt.ErrTokenMalformed), "got %v", err)
}

func TestTokenIssuer_MissingSecret(t *testing.T) {
	_, err := NewTokenIssuer("", time.Hour).Generate("uid", "e")
	assert.ErrorIs(t, err, ErrMissingSecret)
}
