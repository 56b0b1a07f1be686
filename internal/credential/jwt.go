package credential

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/auth-service/internal/core/domain"
)

type identityClaims struct {
	ID       string      `json:"id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// JWT signs identities with HS256. Tokens carry no expiry: like the plain
// codec, a credential lives as long as the client keeps the cookie.
type JWT struct {
	secret []byte
	now    func() time.Time
}

func NewJWT(secret string) (*JWT, error) {
	if secret == "" {
		return nil, errors.New("credential: jwt mode requires a secret")
	}
	return &JWT{secret: []byte(secret), now: time.Now}, nil
}

func (c *JWT) Encode(identity domain.Identity) (string, error) {
	claims := identityClaims{
		ID:       identity.ID,
		Username: identity.Username,
		Role:     identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  identity.ID,
			IssuedAt: jwt.NewNumericDate(c.now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("encode credential: %w", err)
	}
	return signed, nil
}

func (c *JWT) Decode(token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, domain.ErrInvalidCredential
	}

	var claims identityClaims
	tkn, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tkn.Valid {
		return domain.Identity{}, domain.ErrInvalidCredential
	}

	return domain.Identity{ID: claims.ID, Username: claims.Username, Role: claims.Role}, nil
}
