// Package session keeps the signed-in user's session bundle and its idle
// timer. A bundle is held by a Repository keyed by session id; a Store binds
// one id and exposes the operations pages need, and a Monitor expires idle
// sessions in the background.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/myhealth/myhealth/pkg/clinicmodels"
)

var (
	// ErrNoSession is returned when an operation needs a signed-in user.
	ErrNoSession = errors.New("session: not signed in")
	// ErrNoToken is returned when a login response has no token.
	ErrNoToken = errors.New("session: login response has no token")
	// ErrUnknownRole is returned when no role can be derived from a login.
	ErrUnknownRole = errors.New("session: unknown role")
)

// Bundle is what the backend returned at login, reduced to the fields the
// client needs. It is replaced wholesale, never merged.
type Bundle struct {
	Token      string            `json:"token"`
	Role       clinicmodels.Role `json:"role"`
	Subject    string            `json:"sub,omitempty"`
	Email      string            `json:"email,omitempty"`
	FullName   string            `json:"fullName,omitempty"`
	DoctorID   int64             `json:"doctorId,omitempty"`
	CustomerID int64             `json:"customerID,omitempty"`
	AdminID    int64             `json:"adminId,omitempty"`
	IssuedAt   time.Time         `json:"issuedAt"`
}

type profile struct {
	Role       string `json:"role"`
	Email      string `json:"email"`
	FullName   string `json:"fullName"`
	DoctorID   int64  `json:"doctorId"`
	CustomerID int64  `json:"customerID"`
	AdminID    int64  `json:"adminId"`
}

type loginResponse struct {
	Token string `json:"token"`
	profile
	Account  *profile `json:"account"`
	Doctor   *profile `json:"doctor"`
	Customer *profile `json:"customer"`
	Admin    *profile `json:"admin"`
}

// ParseLoginResponse builds a Bundle from the raw body of POST /api/login.
// The role comes from "role", then "account.role", then the token's own
// role claim.
func ParseLoginResponse(body []byte) (*Bundle, error) {
	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	if strings.TrimSpace(resp.Token) == "" {
		return nil, ErrNoToken
	}

	b := &Bundle{
		Token:      resp.Token,
		Email:      resp.Email,
		FullName:   resp.FullName,
		DoctorID:   resp.DoctorID,
		CustomerID: resp.CustomerID,
		AdminID:    resp.AdminID,
	}

	role := resp.Role
	for _, p := range []*profile{resp.Account, resp.Doctor, resp.Customer, resp.Admin} {
		if p == nil {
			continue
		}
		if role == "" {
			role = p.Role
		}
		if b.DoctorID == 0 {
			b.DoctorID = p.DoctorID
		}
		if b.CustomerID == 0 {
			b.CustomerID = p.CustomerID
		}
		if b.AdminID == 0 {
			b.AdminID = p.AdminID
		}
		if b.Email == "" {
			b.Email = p.Email
		}
		if b.FullName == "" {
			b.FullName = p.FullName
		}
	}

	claims, err := DecodeToken(resp.Token)
	if err == nil {
		b.Subject = claims.Subject
		if role == "" {
			role = claims.Role
		}
		if b.Email == "" && strings.Contains(claims.Subject, "@") {
			b.Email = claims.Subject
		}
	}

	b.Role = clinicmodels.ParseRole(role)
	if !b.Role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	return b, nil
}

// TokenClaims are the claims the client reads from the backend's JWT. The
// token is not verified; the backend remains the authority.
type TokenClaims struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
}

type rawClaims struct {
	jwt.RegisteredClaims
	Role  string   `json:"role"`
	Roles []string `json:"roles"`
}

// DecodeToken reads the claims of a JWT without checking its signature.
func DecodeToken(token string) (*TokenClaims, error) {
	var claims rawClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}

	out := &TokenClaims{Subject: claims.Subject, Role: claims.Role}
	if out.Role == "" && len(claims.Roles) > 0 {
		out.Role = claims.Roles[0]
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// Expired reports whether the token is past its exp claim. A token without
// exp never expires on its own.
func (c *TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// TokenExpired reports whether the bundle's token is a JWT whose exp has
// passed. Opaque tokens and tokens without exp are left to the idle timeout
// and the backend's 401/403.
func (b *Bundle) TokenExpired(now time.Time) bool {
	if b == nil || b.Token == "" {
		return false
	}
	claims, err := DecodeToken(b.Token)
	if err != nil {
		return false
	}
	return claims.Expired(now)
}
