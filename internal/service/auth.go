package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"golang.org/x/crypto/bcrypt"

	"github.com/agrovest/agrovest/internal/domain"
)

var tracer = otel.Tracer("auth")

// AuthService mints and verifies HS256 bearer tokens and hashes passwords.
// Verified principals are cached in-process keyed by the raw token, so hot
// clients do not pay signature verification on every request.
type AuthService struct {
	secret     []byte
	ttl        time.Duration
	principals *gocache.Cache
}

func NewAuthService(secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		secret:     []byte(secret),
		ttl:        ttl,
		principals: gocache.New(ttl, 2*ttl),
	}
}

// Issue mints a bearer token for the principal.
func (s *AuthService) Issue(p domain.Principal) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  p.Email,
		"aid":  p.AccountID,
		"role": string(p.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(s.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// AuthJwt verifies a bearer token and returns its principal.
func (s *AuthService) AuthJwt(ctx context.Context, tokenString string) (domain.Principal, error) {
	_, span := tracer.Start(ctx, "Auth.Service.AuthJwt")
	defer span.End()

	if cached, found := s.principals.Get(tokenString); found {
		return cached.(domain.Principal), nil
	}

	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		span.RecordError(errors.Wrap(err, "jwt validation failed"))
		return domain.Principal{}, domain.ErrUnauthenticated
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Principal{}, domain.ErrUnauthenticated
	}

	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	aid, _ := claims["aid"].(float64)
	if sub == "" || (role != string(domain.RoleFarmer) && role != string(domain.RoleInvestor)) {
		return domain.Principal{}, domain.ErrUnauthenticated
	}

	principal := domain.Principal{
		AccountID: uint(aid),
		Email:     sub,
		Role:      domain.Role(role),
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		if remaining := time.Until(exp.Time); remaining > 0 {
			s.principals.Set(tokenString, principal, remaining)
		}
	}

	return principal, nil
}

// Hash derives a bcrypt hash for storage.
func (s *AuthService) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "bcrypt hash failed")
	}
	return string(hashed), nil
}

// Verify reports whether password matches the stored hash.
func (s *AuthService) Verify(hashedPassword string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
