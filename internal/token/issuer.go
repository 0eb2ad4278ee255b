package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer signs the HS256 bearer tokens the auth middleware verifies.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

type IssuerConfig struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

func NewIssuer(cfg IssuerConfig) *Issuer {
	return &Issuer{
		secret: cfg.Secret,
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
	}
}

func (i *Issuer) Issue(userID string) (string, error) {
	now := time.Now()
	tk, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    i.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return tk, nil
}

// IssueAnonymous mints a fresh anonymous user id and a token for it.
func (i *Issuer) IssueAnonymous() (token, userID string, err error) {
	userID = uuid.NewString()
	token, err = i.Issue(userID)
	if err != nil {
		return "", "", err
	}

	return token, userID, nil
}
