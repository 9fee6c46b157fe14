package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"profile-auth/internal/domain"
)

const sessionTokenType = "session"

// TokenIssuer firma, valida y revoca tokens de sesion.
type TokenIssuer interface {
	Sign(profile domain.Profile) (string, Claims, error)
	Verify(token string) (Claims, error)
	Revoke(claims Claims) error
}

// JWTService emite y valida tokens de sesion JWT, con revocacion por jti.
type JWTService struct {
	secret  []byte
	ttl     time.Duration
	issuer  string
	revoked RevokedTokenStore
}

type Claims struct {
	ProfileID string `json:"pid"`
	Email     string `json:"email"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

var (
	ErrJWTInvalid = errors.New("jwt invalid")
	ErrJWTExpired = errors.New("jwt expired")
	ErrJWTRevoked = errors.New("jwt revoked")
)

func NewJWTService(secret, issuer string, ttl time.Duration) *JWTService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if strings.TrimSpace(issuer) == "" {
		issuer = "profile-auth"
	}
	return &JWTService{
		secret:  []byte(secret),
		ttl:     ttl,
		issuer:  issuer,
		revoked: NewMemoryRevokedTokenStore(),
	}
}

func NewJWTServiceWithStore(secret, issuer string, ttl time.Duration, store RevokedTokenStore) *JWTService {
	svc := NewJWTService(secret, issuer, ttl)
	if store != nil {
		svc.revoked = store
	}
	return svc
}

// Sign emite un token de sesion para el perfil con un jti unico.
func (s *JWTService) Sign(profile domain.Profile) (string, Claims, error) {
	if len(s.secret) == 0 {
		return "", Claims{}, ErrJWTInvalid
	}
	if strings.TrimSpace(profile.ID) == "" {
		return "", Claims{}, ErrJWTInvalid
	}
	now := time.Now().UTC()
	claims := Claims{
		ProfileID: profile.ID,
		Email:     profile.Email,
		TokenType: sessionTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   profile.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", Claims{}, err
	}
	return signed, claims, nil
}

// Verify valida firma, emisor, tipo y expiracion, y rechaza tokens revocados.
func (s *JWTService) Verify(tokenString string) (Claims, error) {
	if len(s.secret) == 0 {
		return Claims{}, ErrJWTInvalid
	}
	if strings.TrimSpace(tokenString) == "" {
		return Claims{}, ErrJWTInvalid
	}
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return Claims{}, err
	}
	if claims.TokenType != sessionTokenType || !s.isValidClaims(claims) {
		return Claims{}, ErrJWTInvalid
	}
	if s.revoked != nil {
		revoked, err := s.revoked.IsRevoked(claims.ID)
		if err != nil {
			return Claims{}, err
		}
		if revoked {
			return Claims{}, ErrJWTRevoked
		}
	}
	return claims, nil
}

// Revoke agrega el jti a la lista de revocados hasta que el token expire solo.
func (s *JWTService) Revoke(claims Claims) error {
	if claims.ID == "" || s.revoked == nil {
		return ErrJWTInvalid
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		if remaining := time.Until(claims.ExpiresAt.Time); remaining > 0 {
			ttl = remaining
		}
	}
	return s.revoked.Revoke(claims.ID, ttl)
}

func (s *JWTService) parseToken(tokenString string) (Claims, error) {
	var claims Claims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrJWTExpired
		}
		return Claims{}, ErrJWTInvalid
	}
	return claims, nil
}

func (s *JWTService) isValidClaims(claims Claims) bool {
	if strings.TrimSpace(claims.ProfileID) == "" {
		return false
	}
	if claims.Subject != claims.ProfileID {
		return false
	}
	if strings.TrimSpace(claims.ID) == "" {
		return false
	}
	return strings.TrimSpace(claims.Issuer) == s.issuer
}
