package security

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestGenerateVerifyRoundtrip(t *testing.T) {
	opts := DefaultOptions([]byte("unit-test-secret"))

	token, hash, expireAt, err := Generate(opts, "user-42", []string{"chat"})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, HashToken(token), hash)
	require.WithinDuration(t, time.Now().Add(opts.TTL), expireAt, 5*time.Second)

	claims, err := Verify(opts, token, hash)
	require.NoError(t, err)
	require.Equal(t, "user-42", claims.UserID())
}

func TestVerifyWrongSecret(t *testing.T) {
	opts := DefaultOptions([]byte("secret-a"))
	token, _, _, err := Generate(opts, "user-42", nil)
	require.NoError(t, err)

	_, err = Verify(DefaultOptions([]byte("secret-b")), token, "")
	require.Error(t, err)
}

func TestVerifyHashMismatch(t *testing.T) {
	opts := DefaultOptions([]byte("unit-test-secret"))
	token, _, _, err := Generate(opts, "user-42", nil)
	require.NoError(t, err)

	_, err = Verify(opts, token, "sha256:deadbeef")
	require.Error(t, err)
}

func TestVerifyExpiredToken(t *testing.T) {
	secret := []byte("unit-test-secret")
	now := time.Now()
	tok := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"sub": "user-42",
		"iat": now.Add(-2 * time.Hour).Unix(),
		"exp": now.Add(-time.Hour).Unix(),
	})
	signed, err := tok.SignedString(secret)
	require.NoError(t, err)

	_, err = Verify(DefaultOptions(secret), signed, "")
	require.Error(t, err)
}

func TestGenerateUnsupportedAlg(t *testing.T) {
	opts := DefaultOptions([]byte("unit-test-secret"))
	opts.Alg = "RS256"
	_, _, _, err := Generate(opts, "user-42", nil)
	require.Error(t, err)
}

func TestPasswordHashAndCheck(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse battery staple", hash)

	require.True(t, CheckPassword(hash, "correct horse battery staple"))
	require.False(t, CheckPassword(hash, "wrong password"))
	require.False(t, CheckPassword("not-a-hash", "anything"))
}
