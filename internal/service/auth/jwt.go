// Package auth verifies bearer tokens issued by the external identity
// subsystem. This engine never issues tokens; it only checks signatures
// and maps claims onto a caller principal.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/models"
	"github.com/fleetgate/fleet-tracking-system/internal/domain/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type claims struct {
	Class     string `json:"class"`
	CompanyID string `json:"company_id,omitempty"`
	DriverID  string `json:"driver_id,omitempty"`
	ClientID  string `json:"client_id,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks HS256 tokens against the shared secret.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses and validates the token and returns the principal it
// asserts. Expired, malformed or mis-signed tokens all map to
// ErrInvalidToken.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*models.Principal, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return nil, types.ErrInvalidToken
	}

	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, types.ErrInvalidToken
	}

	p := &models.Principal{UserID: userID}
	switch types.ConnClass(c.Class) {
	case types.ConnDriver:
		p.Class = types.ConnDriver
	case types.ConnOperator:
		p.Class = types.ConnOperator
	case types.ConnClient:
		p.Class = types.ConnClient
	default:
		return nil, types.ErrInvalidToken
	}

	if c.CompanyID != "" {
		if p.CompanyID, err = uuid.Parse(c.CompanyID); err != nil {
			return nil, types.ErrInvalidToken
		}
	}
	if c.DriverID != "" {
		if p.DriverID, err = uuid.Parse(c.DriverID); err != nil {
			return nil, types.ErrInvalidToken
		}
	}
	if c.ClientID != "" {
		if p.ClientID, err = uuid.Parse(c.ClientID); err != nil {
			return nil, types.ErrInvalidToken
		}
	}

	return p, nil
}

// Sign issues a token for the given principal. Exists for tests and local
// tooling; production tokens come from the identity subsystem.
func (v *Verifier) Sign(p *models.Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	c := claims{
		Class: string(p.Class),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if p.CompanyID != uuid.Nil {
		c.CompanyID = p.CompanyID.String()
	}
	if p.DriverID != uuid.Nil {
		c.DriverID = p.DriverID.String()
	}
	if p.ClientID != uuid.Nil {
		c.ClientID = p.ClientID.String()
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(v.secret)
}
