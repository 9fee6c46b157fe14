package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"profile-auth/internal/domain"
	"profile-auth/internal/repository"
)

// ErrSessionInvalid indica que el token no corresponde a una sesion activa.
var ErrSessionInvalid = errors.New("session invalid")

// AuthOptions ajusta la politica de log-on.
type AuthOptions struct {
	// AllowUnconfirmedLogin permite el log-on de perfiles con email sin confirmar.
	AllowUnconfirmedLogin bool
}

// AuthenticationService verifica credenciales y administra el ciclo de vida de las sesiones.
type AuthenticationService struct {
	logger   *zap.Logger
	profiles repository.ProfileRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
	throttle LogOnThrottle
	opts     AuthOptions

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthenticationService(
	logger *zap.Logger,
	profiles repository.ProfileRepository,
	hasher PasswordHasher,
	tokens TokenIssuer,
	throttle LogOnThrottle,
	opts AuthOptions,
) *AuthenticationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if hasher == nil {
		hasher = BcryptHasher{}
	}
	return &AuthenticationService{
		logger:   logger,
		profiles: profiles,
		hasher:   hasher,
		tokens:   tokens,
		throttle: throttle,
		opts:     opts,
	}
}

// LogOn devuelve nil sin error ante cualquier falla de credenciales, sin distinguir el motivo.
// Solo las fallas de infraestructura se devuelven como error.
func (s *AuthenticationService) LogOn(ctx context.Context, info domain.LogOnInfo) (*domain.LogOnResult, error) {
	if s.profiles == nil || s.tokens == nil {
		return nil, errors.New("authentication service not configured")
	}

	emailAddr := normalizeEmail(info.EmailAddress)
	if emailAddr == "" || strings.TrimSpace(info.Password) == "" {
		return nil, nil
	}
	key := throttleKey(emailAddr, info.ClientIP)
	if s.throttled(ctx, key) {
		s.hasher.Verify(info.Password, s.timingHash())
		s.logger.Warn("log-on throttled", zap.String("email", emailAddr))
		return nil, nil
	}

	profile, err := s.profiles.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.Verify(info.Password, s.timingHash())
			s.recordFailure(ctx, key)
			return nil, nil
		}
		return nil, fmt.Errorf("log-on lookup: %w", err)
	}

	if !s.hasher.Verify(info.Password, profile.PasswordHash) {
		s.recordFailure(ctx, key)
		return nil, nil
	}
	s.resetFailures(ctx, key)
	if profile.IsDeactivated {
		return nil, nil
	}
	if !profile.IsEmailConfirmed && !s.opts.AllowUnconfirmedLogin {
		return nil, nil
	}

	token, claims, err := s.tokens.Sign(profile)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	s.logger.Info("profile logged on", zap.String("profile_id", profile.ID))

	result := &domain.LogOnResult{
		Token:     token,
		ProfileID: profile.ID,
	}
	if claims.ExpiresAt != nil {
		result.ExpiresAt = claims.ExpiresAt.Time
	}
	return result, nil
}

// LogOut revoca la sesion descrita por claims. Devuelve false si las claims no pertenecen
// al perfil; devuelve error solo si la revocacion falla.
func (s *AuthenticationService) LogOut(_ context.Context, profile domain.Profile, claims Claims) (bool, error) {
	if s.tokens == nil {
		return false, errors.New("authentication service not configured")
	}
	if profile.ID == "" || claims.ProfileID != profile.ID || claims.ID == "" {
		return false, nil
	}
	if err := s.tokens.Revoke(claims); err != nil {
		return false, fmt.Errorf("revoke session: %w", err)
	}
	s.logger.Info("profile logged out", zap.String("profile_id", profile.ID))
	return true, nil
}

// ResolveSession mapea un token de sesion al perfil activo que lo posee.
func (s *AuthenticationService) ResolveSession(ctx context.Context, token string) (domain.Profile, Claims, error) {
	if s.profiles == nil || s.tokens == nil {
		return domain.Profile{}, Claims{}, errors.New("authentication service not configured")
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, ErrJWTInvalid) || errors.Is(err, ErrJWTExpired) || errors.Is(err, ErrJWTRevoked) {
			return domain.Profile{}, Claims{}, fmt.Errorf("%w: %v", ErrSessionInvalid, err)
		}
		return domain.Profile{}, Claims{}, err
	}
	profile, err := s.profiles.GetByID(ctx, claims.ProfileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Profile{}, Claims{}, ErrSessionInvalid
		}
		return domain.Profile{}, Claims{}, err
	}
	if profile.IsDeactivated {
		return domain.Profile{}, Claims{}, ErrSessionInvalid
	}
	return profile, claims, nil
}

// Las fallas del throttle no bloquean el log-on: se loguean y se sigue.
func (s *AuthenticationService) throttled(ctx context.Context, key string) bool {
	if s.throttle == nil {
		return false
	}
	blocked, err := s.throttle.Blocked(ctx, key)
	if err != nil {
		s.logger.Warn("log-on throttle check failed", zap.Error(err))
		return false
	}
	return blocked
}

func (s *AuthenticationService) recordFailure(ctx context.Context, key string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.RecordFailure(ctx, key); err != nil {
		s.logger.Warn("log-on throttle record failed", zap.Error(err))
	}
}

func (s *AuthenticationService) resetFailures(ctx context.Context, key string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.Reset(ctx, key); err != nil {
		s.logger.Warn("log-on throttle reset failed", zap.Error(err))
	}
}

// timingHash produce un hash valido para igualar el costo de verificacion cuando el email no existe.
func (s *AuthenticationService) timingHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(uuid.NewString())
		if err != nil {
			s.logger.Warn("dummy hash failed", zap.Error(err))
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
