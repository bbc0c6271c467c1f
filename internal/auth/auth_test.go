package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/maaackz/folio/internal/errors"
)

func testHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestWithAdmin(t *testing.T) {
	ctx := context.Background()
	assert.False(t, IsAdmin(ctx))
	assert.True(t, IsAdmin(WithAdmin(ctx)))
}

func TestCheckPassword(t *testing.T) {
	hash := testHash(t, "hunter2")

	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "hunter3"))
	assert.False(t, CheckPassword("", "hunter2"))
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "s3cret"))

	_, err = HashPassword("")
	assert.Error(t, err)
}

func TestLogin(t *testing.T) {
	a := NewAuthenticator("admin", testHash(t, "pw"), []byte("secret"), time.Hour)

	session, err := a.Login("admin", "pw")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, time.Minute)

	claims, err := a.Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Len(t, claims.ID, 26, "jti is a ULID")
}

func TestLogin_RejectsBadCredentials(t *testing.T) {
	a := NewAuthenticator("admin", testHash(t, "pw"), []byte("secret"), time.Hour)

	_, err := a.Login("admin", "wrong")
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))

	_, err = a.Login("root", "pw")
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
}

func TestLogin_DisabledWithoutHash(t *testing.T) {
	a := NewAuthenticator("admin", "", []byte("secret"), time.Hour)

	_, err := a.Login("admin", "")
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
}

func TestVerify_Expired(t *testing.T) {
	a := NewAuthenticator("admin", "", []byte("secret"), time.Hour)
	start := time.Now()
	a.now = func() time.Time { return start }

	session, err := a.Issue()
	require.NoError(t, err)

	a.now = func() time.Time { return start.Add(2 * time.Hour) }
	_, err = a.Verify(session.Token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerify_WrongSecret(t *testing.T) {
	issuer := NewAuthenticator("admin", "", []byte("secret-a"), time.Hour)
	verifier := NewAuthenticator("admin", "", []byte("secret-b"), time.Hour)

	session, err := issuer.Issue()
	require.NoError(t, err)

	_, err = verifier.Verify(session.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	a := NewAuthenticator("admin", "", []byte("secret"), time.Hour)

	claims := jwt.RegisteredClaims{
		Issuer:    "folio",
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = a.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Garbage(t *testing.T) {
	a := NewAuthenticator("admin", "", []byte("secret"), time.Hour)

	_, err := a.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRandomSecret(t *testing.T) {
	a, err := RandomSecret()
	require.NoError(t, err)
	b, err := RandomSecret()
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
