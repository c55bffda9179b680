package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// AccessClaims はアクセストークンのpayload（sub, roles, tv, iat, exp）
type AccessClaims struct {
	UserID       int64            `json:"sub"`
	Roles        []model.Role     `json:"roles"`
	TokenVersion int              `json:"tv"`
	IssuedAt     *jwt.NumericDate `json:"iat,omitempty"`
	ExpiresAt    *jwt.NumericDate `json:"exp"`
}

// jwt.Claims。署名検証のあとに呼ばれる
func (c AccessClaims) Valid() error {
	if c.ExpiresAt == nil {
		return fmt.Errorf("%w: exp missing", ErrInvalidToken)
	}
	if !c.ExpiresAt.After(jwt.TimeFunc()) {
		return ErrTokenExpired
	}
	if c.UserID <= 0 {
		return fmt.Errorf("%w: sub", ErrInvalidToken)
	}
	if c.TokenVersion < 0 {
		return fmt.Errorf("%w: tv", ErrInvalidToken)
	}
	if len(c.Roles) == 0 {
		return fmt.Errorf("%w: roles missing", ErrInvalidToken)
	}
	for _, r := range c.Roles {
		if !r.Valid() {
			return fmt.Errorf("%w: role %q", ErrInvalidToken, r)
		}
	}
	return nil
}

// Parse はHS256で署名されたトークンだけを受け付ける
func Parse(secret []byte, raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && errors.Is(ve.Inner, ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func newClaims(user model.User, now time.Time, ttl time.Duration) AccessClaims {
	roles := append([]model.Role(nil), user.Roles...)
	return AccessClaims{
		UserID:       user.ID,
		Roles:        roles,
		TokenVersion: user.TokenVersion,
		IssuedAt:     jwt.NewNumericDate(now),
		ExpiresAt:    jwt.NewNumericDate(now.Add(ttl)),
	}
}
