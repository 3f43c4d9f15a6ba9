package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/campushub-api/internal/models"
	"github.com/noah-isme/campushub-api/pkg/config"
	appErrors "github.com/noah-isme/campushub-api/pkg/errors"
)

// SessionService validates bearer tokens into explicit session values. Tokens
// are minted by the CampusHub auth service; IssueToken exists for tooling and tests.
type SessionService struct {
	secret     []byte
	issuer     string
	expiration time.Duration
	now        func() time.Time
}

// NewSessionService builds a session service from JWT config.
func NewSessionService(cfg config.JWTConfig) *SessionService {
	expiration := cfg.Expiration
	if expiration <= 0 {
		expiration = time.Hour
	}
	return &SessionService{secret: []byte(cfg.Secret), issuer: cfg.Issuer, expiration: expiration, now: time.Now}
}

// ValidateToken parses an HS256 token and returns the session it carries.
func (s *SessionService) ValidateToken(tokenString string) (*models.Session, error) {
	opts := []jwt.ParserOption{jwt.WithTimeFunc(s.now)}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if claims.UserID == "" || claims.TenantID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token is missing user or tenant")
	}
	return claims.Session(), nil
}

// IssueToken signs a token for the given session.
func (s *SessionService) IssueToken(session models.Session) (string, time.Time, error) {
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.expiration)
	claims := &models.JWTClaims{
		UserID:   session.UserID,
		TenantID: session.TenantID,
		Role:     session.Role,
		Email:    session.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   session.UserID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, expiresAt, nil
}
