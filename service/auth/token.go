package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNoSecret     = errors.New("no signing secret")
)

// GenerateToken creates an HS256 signed JWT for subject that passes the
// checks of a Validator configured with the same secret and audience.
// A zero expiration omits the exp claim.
func GenerateToken(secret []byte, audience, subject string, expiration time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", ErrNoSecret
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"iat": now.Unix(),
		"sub": subject,
	}
	if audience != "" {
		claims["aud"] = audience
	}
	if expiration != 0 {
		claims["exp"] = now.Add(expiration).Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

type Validator struct {
	secret   []byte
	audience string
}

func NewValidator(secret []byte, audience string) (*Validator, error) {
	if len(secret) == 0 {
		return nil, ErrNoSecret
	}
	return &Validator{secret: secret, audience: audience}, nil
}

// Validate parses s and returns the identity it carries. Tokens must be
// HS256 signed with the validator's secret, unexpired, and name the
// validator's audience if it has one.
func (v *Validator) Validate(s string) (Identity, error) {
	token, err := jwt.Parse(s, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %q", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Identity{}, ErrInvalidToken
	}
	if v.audience != "" && !claims.VerifyAudience(v.audience, true) {
		return Identity{}, fmt.Errorf("%w: invalid audience", ErrInvalidToken)
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return Identity{Subject: sub}, nil
}
