package auth

import (
	"errors"
	"strconv"
	"time"

	"fursa-backend/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims carried by both token types. Subject is the user id.
type Claims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenManager signs HS256 tokens. Access and refresh tokens use separate secrets.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration

	now func() time.Time
}

var _ domain.TokenService = (*TokenManager)(nil)

func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

func (m *TokenManager) IssuePair(userID int64) (*domain.TokenPair, error) {
	access, err := m.generate(TokenTypeAccess, userID)
	if err != nil {
		return nil, err
	}
	refresh, err := m.generate(TokenTypeRefresh, userID)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (m *TokenManager) IssueAccess(userID int64) (string, error) {
	return m.generate(TokenTypeAccess, userID)
}

func (m *TokenManager) VerifyAccess(token string) (int64, error) {
	return m.verify(token, TokenTypeAccess)
}

func (m *TokenManager) VerifyRefresh(token string) (int64, error) {
	return m.verify(token, TokenTypeRefresh)
}

func (m *TokenManager) generate(tokenType string, userID int64) (string, error) {
	secret, ttl, err := m.secretAndTTL(tokenType)
	if err != nil {
		return "", err
	}

	now := m.now().UTC()
	c := Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secret)
}

func (m *TokenManager) verify(tokenString, tokenType string) (int64, error) {
	secret, _, err := m.secretAndTTL(tokenType)
	if err != nil {
		return 0, err
	}

	p := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)

	var c Claims
	tok, err := p.ParseWithClaims(tokenString, &c, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrTokenInvalid
	}
	if tok == nil || !tok.Valid || c.TokenType != tokenType {
		return 0, ErrTokenInvalid
	}

	userID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrTokenInvalid
	}
	return userID, nil
}

func (m *TokenManager) secretAndTTL(tokenType string) ([]byte, time.Duration, error) {
	switch tokenType {
	case TokenTypeAccess:
		if len(m.accessSecret) == 0 || m.accessTTL <= 0 {
			return nil, 0, ErrTokenInvalid
		}
		return m.accessSecret, m.accessTTL, nil
	case TokenTypeRefresh:
		if len(m.refreshSecret) == 0 || m.refreshTTL <= 0 {
			return nil, 0, ErrTokenInvalid
		}
		return m.refreshSecret, m.refreshTTL, nil
	default:
		return nil, 0, ErrTokenInvalid
	}
}
