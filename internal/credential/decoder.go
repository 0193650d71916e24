package credential

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the subject identity extracted from a token.
type Claims struct {
	SubjectID string
	Role      string
}

// TokenDecoder extracts identity claims from an opaque bearer token. The
// token format is an implementation detail of the decoder.
type TokenDecoder interface {
	Decode(token string) (Claims, error)
}

// ErrDecode wraps any token parse or verification failure.
var ErrDecode = errors.New("credential: decode failed")

// JWTDecoder verifies HS256 tokens and reads the sub and role claims.
type JWTDecoder struct {
	secret []byte
}

// NewJWTDecoder constructs a JWTDecoder for the shared signing secret.
func NewJWTDecoder(secret string) *JWTDecoder {
	return &JWTDecoder{secret: []byte(secret)}
}

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Decode parses and verifies the token. Expired, malformed, or badly signed
// tokens return ErrDecode; a missing role claim yields empty Role with no
// error, letting the caller apply its fallback.
func (d *JWTDecoder) Decode(token string) (Claims, error) {
	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return d.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Claims{}, ErrDecode
	}
	return Claims{SubjectID: claims.Subject, Role: claims.Role}, nil
}

var _ TokenDecoder = (*JWTDecoder)(nil)
