package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned by Verify for every verification failure:
// bad signature, malformed input, unexpected algorithm or expiry.  Callers
// must treat all of these identically and reject the request.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload carried by both access and refresh tokens.
//
//  JTI    – unique token identifier, fresh per issuance.
//  UserID – subject (users.id).
//  Role   – resolved role name at issuance time.
//  IAT    – issued-at, Unix seconds.
//  EXP    – expiry, Unix seconds.
type Claims struct {
	JTI    string
	UserID uint64
	Role   string
	IAT    time.Time
	EXP    time.Time
}

// TokenService signs and verifies the compact session tokens.  Access and
// refresh tokens share signing material and differ only in TTL.  The
// secret is injected once at construction; nothing here reads ambient
// state, performs I/O or blocks.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService builds a TokenService from the configured secret and
// TTLs (access in minutes, refresh in days).
func NewTokenService(secret string, accessTTLMin, refreshTTLDays int) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  time.Duration(accessTTLMin) * time.Minute,
		refreshTTL: time.Duration(refreshTTLDays) * 24 * time.Hour,
	}
}

// AccessTTL returns the configured access-token lifetime.  The transport
// layer uses it for cookie max-age.
func (s *TokenService) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL returns the configured refresh-token lifetime.
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

// IssueAccess signs a short-lived access token for the user.
func (s *TokenService) IssueAccess(userID uint64, role string) (string, error) {
	return s.issue(userID, role, s.accessTTL)
}

// IssueRefresh signs a long-lived refresh token for the user.  The token
// is opaque to clients; server-side it is persisted only through the
// session row that wraps it.
func (s *TokenService) IssueRefresh(userID uint64, role string) (string, error) {
	return s.issue(userID, role, s.refreshTTL)
}

func (s *TokenService) issue(userID uint64, role string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"jti":  uuid.NewString(),
		"sub":  userID,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Verify parses and validates a token and returns its claims.  The jwt
// library already rejects expired tokens during parsing; every failure
// collapses into ErrInvalidToken.
func (s *TokenService) Verify(token string) (*Claims, error) {
	tok, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	c := &Claims{}
	if v, ok := mc["jti"].(string); ok {
		c.JTI = v
	}
	if v, ok := mc["role"].(string); ok {
		c.Role = v
	}
	// Numeric claims decode as float64.
	if v, ok := mc["sub"].(float64); ok {
		c.UserID = uint64(v)
	}
	if c.UserID == 0 || c.Role == "" || c.JTI == "" {
		return nil, ErrInvalidToken
	}
	if v, ok := mc["iat"].(float64); ok {
		c.IAT = time.Unix(int64(v), 0).UTC()
	}
	if v, ok := mc["exp"].(float64); ok {
		c.EXP = time.Unix(int64(v), 0).UTC()
	}
	return c, nil
}
