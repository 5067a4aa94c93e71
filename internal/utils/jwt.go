package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token purposes.  The two-step operator login issues a short-lived
// verify token first; only after the emailed code checks out is a
// full access token granted.  Binding the step to a signed,
// time-bounded token keeps the verification code out of any shared
// server state.
const (
	PurposeAccess = "access"
	PurposeVerify = "verify"
)

// ErrWrongPurpose is returned when a token is valid but issued for a
// different step (e.g. a verify token presented as an access token).
var ErrWrongPurpose = errors.New("token issued for a different purpose")

// Token bundles a signed JWT with its expiry.
type Token struct {
	Value string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT granting operator
// access.  The JWT carries subject (sub), role, purpose, expiration
// (exp) and issued-at (iat) claims.
func NewAccessToken(secret, subject, role string, ttlMin int) (Token, error) {
	return sign(secret, jwt.MapClaims{
		"sub":     subject,
		"role":    role,
		"purpose": PurposeAccess,
	}, time.Duration(ttlMin)*time.Minute)
}

// NewVerifyToken builds the intermediate token for the second login
// step.  It embeds a hash of the emailed verification code so the
// exchange endpoint can check the code without storing it anywhere.
func NewVerifyToken(secret, subject, codeHash string, ttlMin int) (Token, error) {
	return sign(secret, jwt.MapClaims{
		"sub":     subject,
		"purpose": PurposeVerify,
		"code":    codeHash,
	}, time.Duration(ttlMin)*time.Minute)
}

func sign(secret string, claims jwt.MapClaims, ttl time.Duration) (Token, error) {
	exp := time.Now().UTC().Add(ttl)
	claims["exp"] = exp.Unix()
	claims["iat"] = time.Now().UTC().Unix()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return Token{}, err
	}
	return Token{Value: signed, Exp: exp}, nil
}

// ParseToken validates a signed token and enforces its purpose,
// returning the claims on success.
func ParseToken(secret, raw, purpose string) (jwt.MapClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return nil, errors.New("invalid token")
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	if p, _ := claims["purpose"].(string); p != purpose {
		return nil, ErrWrongPurpose
	}
	return claims, nil
}

// RandomDigits returns an n-digit numeric code for the second login
// step, generated from crypto/rand.
func RandomDigits(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = '0' + b%10
	}
	return string(out), nil
}

// RandomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func RandomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
