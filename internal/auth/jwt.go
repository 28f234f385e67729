package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/marketly-dev/marketly/internal/metrics"
	"github.com/marketly-dev/marketly/internal/models"
)

var (
	ErrExpiredToken = errors.New("token has expired")
	ErrInvalidToken = errors.New("invalid token")
)

type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Identity is what a token asserts about its bearer.
type Identity struct {
	Email  string
	Role   models.Role
	UserID uint
}

type Claims struct {
	Role   models.Role `json:"role"`
	UserID uint        `json:"id"`
	Kind   TokenKind   `json:"type"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() Identity {
	return Identity{Email: c.Subject, Role: c.Role, UserID: c.UserID}
}

type TokenConfig struct {
	Secret     string
	Algorithm  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type TokenService struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}

	if cfg.Algorithm == "" {
		cfg.Algorithm = jwt.SigningMethodHS256.Alg()
	}

	method, ok := jwt.GetSigningMethod(cfg.Algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported jwt algorithm %q", cfg.Algorithm)
	}

	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token ttl must be positive")
	}

	return &TokenService{
		secret:     []byte(cfg.Secret),
		method:     method,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}, nil
}

func (s *TokenService) CreateAccessToken(id Identity) (string, error) {
	return s.sign(id, KindAccess, s.accessTTL)
}

func (s *TokenService) CreateRefreshToken(id Identity) (string, error) {
	return s.sign(id, KindRefresh, s.refreshTTL)
}

func (s *TokenService) VerifyAccessToken(token string) (*Claims, error) {
	return s.verify(token, KindAccess)
}

func (s *TokenService) VerifyRefreshToken(token string) (*Claims, error) {
	return s.verify(token, KindRefresh)
}

func (s *TokenService) sign(id Identity, kind TokenKind, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		Role:   id.Role,
		UserID: id.UserID,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(s.method, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}

	metrics.TokensIssued.WithLabelValues(string(kind)).Inc()

	return signed, nil
}

func (s *TokenService) verify(tokenString string, want TokenKind) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	switch claims.Kind {
	case KindAccess, KindRefresh:
		if claims.Kind != want {
			return nil, fmt.Errorf("%w: expected %s token, got %s", ErrInvalidToken, want, claims.Kind)
		}
	default:
		return nil, fmt.Errorf("%w: unknown token type %q", ErrInvalidToken, claims.Kind)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return claims, nil
}

var tokens *TokenService

// Configure installs the process-wide token service. It is called once at startup.
func Configure(cfg TokenConfig) error {
	svc, err := NewTokenService(cfg)
	if err != nil {
		return err
	}

	tokens = svc
	return nil
}

func Tokens() *TokenService {
	return tokens
}

func CreateAccessToken(id Identity) (string, error)  { return tokens.CreateAccessToken(id) }
func CreateRefreshToken(id Identity) (string, error) { return tokens.CreateRefreshToken(id) }
func VerifyAccessToken(token string) (*Claims, error) {
	return tokens.VerifyAccessToken(token)
}
func VerifyRefreshToken(token string) (*Claims, error) {
	return tokens.VerifyRefreshToken(token)
}
