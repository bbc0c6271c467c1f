package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"

	folioerrors "github.com/maaackz/folio/internal/errors"
)

const issuer = "folio"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// Session is an issued session token and when it stops being valid.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Authenticator checks admin credentials and issues and verifies session tokens.
type Authenticator struct {
	user         string
	passwordHash string
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
}

// NewAuthenticator creates an authenticator for the single admin account.
func NewAuthenticator(user, passwordHash string, secret []byte, ttl time.Duration) *Authenticator {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Authenticator{
		user:         user,
		passwordHash: passwordHash,
		secret:       secret,
		ttl:          ttl,
		now:          time.Now,
	}
}

// TTL returns the session lifetime.
func (a *Authenticator) TTL() time.Duration {
	return a.ttl
}

// Login checks username and password and issues a session.
func (a *Authenticator) Login(username, password string) (Session, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.user)) == 1
	// bcrypt runs even for a wrong username so timing does not reveal it
	passOK := CheckPassword(a.passwordHash, password)
	if !userOK || !passOK {
		return Session{}, folioerrors.NewInvalidCredentials()
	}
	return a.Issue()
}

// Issue signs a new session token for the admin.
func (a *Authenticator) Issue() (Session, error) {
	now := a.now()
	expires := now.Add(a.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   a.user,
		ID:        ulid.Make().String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign session: %w", err)
	}
	return Session{Token: token, ExpiresAt: expires}, nil
}

// Verify parses token and checks signature, issuer, subject and expiry.
func (a *Authenticator) Verify(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithSubject(a.user),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RandomSecret returns 32 random bytes for signing when no secret is configured.
func RandomSecret() ([]byte, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate session secret: %w", err)
	}
	return secret, nil
}
