package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"cms-backend/internal/model"
)

// TokenCodec mints and verifies the signed session tokens that bind a user
// to their active company. The signing secret comes from configuration so a
// process restart does not invalidate outstanding sessions.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

func NewTokenCodec(secret string) (*TokenCodec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("signing secret is required")
	}
	return &TokenCodec{secret: []byte(secret), now: func() time.Time { return time.Now().UTC() }}, nil
}

// Generate signs a token carrying the user identity and the company binding.
func (c *TokenCodec) Generate(user model.User, company model.Company, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("token ttl must be positive")
	}

	// jti keeps tokens minted within the same second distinct; the store
	// holds a unique index on the token text.
	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":          user.Username,
		"company_id":   company.ID,
		"company_name": company.Name,
		"jti":          uuid.NewString(),
		"iat":          now.Unix(),
		"exp":          now.Add(ttl).Unix(),
	})
	return token.SignedString(c.secret)
}

// VerifyAndDecode checks structure, signature and expiry. The expiry
// comparison is strict: a token expiring exactly now is expired. The clock
// is the verifying process's own; no skew compensation.
func (c *TokenCodec) VerifyAndDecode(tokenString string) (*model.SessionClaims, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", token.Method.Alg())
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, model.ErrTokenExpired
		}
		return nil, model.ErrTokenMalformed
	}
	if !parsed.Valid {
		return nil, model.ErrTokenMalformed
	}

	claimsMap, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, model.ErrTokenMalformed
	}

	claims := &model.SessionClaims{}
	claims.Subject, _ = claimsMap["sub"].(string)
	claims.CompanyID = numericClaim(claimsMap["company_id"])
	claims.CompanyName, _ = claimsMap["company_name"].(string)
	claims.IssuedAt = timeClaim(claimsMap["iat"])
	claims.ExpiresAt = timeClaim(claimsMap["exp"])

	if claims.Subject == "" {
		return nil, model.ErrTokenMalformed
	}

	// exp == now is already rejected by the parser; keep the invariant
	// explicit for callers holding a decoded claims value.
	if !c.now().Before(claims.ExpiresAt) {
		return nil, model.ErrTokenExpired
	}

	return claims, nil
}

// ExtractSubject decodes the subject claim without checking store liveness.
func (c *TokenCodec) ExtractSubject(tokenString string) (string, error) {
	claims, err := c.VerifyAndDecode(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ExtractCompanyID decodes the company binding without checking store
// liveness.
func (c *TokenCodec) ExtractCompanyID(tokenString string) (int64, error) {
	claims, err := c.VerifyAndDecode(tokenString)
	if err != nil {
		return 0, err
	}
	if claims.CompanyID == 0 {
		return 0, model.ErrNoCompanyBinding
	}
	return claims.CompanyID, nil
}

func numericClaim(raw any) int64 {
	switch v := raw.(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case json.Number:
		n, _ := v.Int64()
		return n
	}
	return 0
}

func timeClaim(raw any) time.Time {
	n := numericClaim(raw)
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(n, 0).UTC()
}
