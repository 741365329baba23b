package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/lebarbier/lebarbier-api/internal/authz"
	"github.com/lebarbier/lebarbier-api/internal/config"
	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/models"
)

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 bearer tokens carrying the user id in
// sub and the role in role.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(cfg *config.Config) *Tokens {
	return &Tokens{secret: []byte(cfg.JWT.Secret), ttl: cfg.JWT.TTL, now: time.Now}
}

func (t *Tokens) Issue(u *models.User) (string, error) {
	now := t.now()
	claims := Claims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", httperr.Unexpected(err)
	}
	return signed, nil
}

var errInvalidToken = httperr.Unauthenticated("invalid_token", "Jeton invalide ou expiré.")

func (t *Tokens) Parse(raw string) (*authz.Principal, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, errInvalidToken
	}
	role := authz.Role(claims.Role)
	if !role.Valid() {
		return nil, errInvalidToken
	}

	return &authz.Principal{UserID: id, Role: role}, nil
}
