package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenManager issues and verifies HMAC-signed bearer tokens whose subject is a username.
type TokenManager struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a manager for algorithm (HS256, HS384 or HS512).
func NewTokenManager(secret, algorithm string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("token secret must not be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	var method jwt.SigningMethod
	switch strings.ToUpper(algorithm) {
	case "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	return &TokenManager{secret: []byte(secret), method: method, ttl: ttl, now: time.Now}, nil
}

// WithClock replaces the time source used for issuing and verifying.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	m.now = now
	return m
}

func (m *TokenManager) TTL() time.Duration { return m.ttl }

// Claims are the token's registered claims plus the numeric id of the user
// the subject named at issue time.
type Claims struct {
	jwt.RegisteredClaims
	UserID int `json:"uid,omitempty"`
}

// Issue signs a token for subject that expires after the configured TTL.
func (m *TokenManager) Issue(subject string) (string, time.Time, error) {
	return m.sign(subject, 0, m.ttl)
}

func (m *TokenManager) IssueWithTTL(subject string, ttl time.Duration) (string, time.Time, error) {
	return m.sign(subject, 0, ttl)
}

// IssueForUser signs a token whose subject is username and whose uid claim
// pins it to userID, so the token dies with the account even if the name is reused.
func (m *TokenManager) IssueForUser(username string, userID int) (string, time.Time, error) {
	return m.sign(username, userID, m.ttl)
}

func (m *TokenManager) sign(subject string, userID int, ttl time.Duration) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, errors.New("token subject must not be empty")
	}
	now := m.now()
	expiresAt := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
		UserID: userID,
	}
	signed, err := jwt.NewWithClaims(m.method, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify returns the token subject. Errors are ErrInvalidSignature, ErrExpired
// or ErrMalformed, each of which also matches ErrUnauthenticated.
func (m *TokenManager) Verify(token string) (string, error) {
	c, err := m.VerifyClaims(token)
	if err != nil {
		return "", err
	}
	return c.Subject, nil
}

// VerifyClaims is Verify returning every claim. Segments must be canonical
// base64url: a signature whose trailing padding bits differ is refused even
// though it decodes to the same MAC.
func (m *TokenManager) VerifyClaims(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, unauthenticated(ErrInvalidSignature)
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, unauthenticated(ErrExpired)
	default:
		return nil, unauthenticated(ErrMalformed)
	}
	if claims.Subject == "" {
		return nil, unauthenticated(ErrMalformed)
	}
	return claims, nil
}
