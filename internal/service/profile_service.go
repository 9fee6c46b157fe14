package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"profile-auth/internal/domain"
	"profile-auth/internal/email"
	"profile-auth/internal/repository"
)

// ProfileService coordina las reglas de negocio de perfiles: alta, confirmacion de email,
// actualizacion y desactivacion.
type ProfileService struct {
	logger      *zap.Logger
	profiles    repository.ProfileRepository
	hasher      PasswordHasher
	emailSender email.Sender
	validator   ProfileValidator
}

func NewProfileService(logger *zap.Logger, profiles repository.ProfileRepository, hasher PasswordHasher, emailSender email.Sender) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if hasher == nil {
		hasher = BcryptHasher{}
	}
	return &ProfileService{
		logger:      logger,
		profiles:    profiles,
		hasher:      hasher,
		emailSender: emailSender,
	}
}

// CreateNewProfile evalua y, si corresponde, crea un perfil. Devuelve siempre al menos una razon;
// el perfil creado solo es valido cuando el resultado es exactamente [NONE].
func (s *ProfileService) CreateNewProfile(ctx context.Context, input NewProfileInput) (domain.Profile, []domain.FailureReason) {
	if err := s.validator.RequiredErrors(input); err != nil {
		s.logger.Debug("create profile missing required fields", zap.Error(err))
		return domain.Profile{}, []domain.FailureReason{domain.FailureMissingRequired}
	}
	if s.profiles == nil {
		return domain.Profile{}, []domain.FailureReason{domain.FailureUnknown}
	}

	emailAddr := normalizeEmail(input.Email)
	existing, err := s.profiles.GetByEmail(ctx, emailAddr)
	switch {
	case err == nil:
		return domain.Profile{}, s.validator.Evaluate(input, &existing)
	case !errors.Is(err, repository.ErrNotFound):
		s.logger.Error("create profile lookup failed", zap.Error(err), zap.String("email", emailAddr))
		return domain.Profile{}, []domain.FailureReason{domain.FailureUnknown}
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return domain.Profile{}, []domain.FailureReason{domain.FailureUnknown}
	}

	now := time.Now().UTC()
	profile := domain.Profile{
		ID:                     uuid.NewString(),
		Email:                  emailAddr,
		PasswordHash:           passwordHash,
		FullName:               strings.TrimSpace(input.FullName),
		Birthday:               input.Birthday,
		EmailConfirmationToken: newConfirmationToken(),
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	if err := s.profiles.Create(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// Otro request gano la carrera por el mismo email.
			return domain.Profile{}, s.classifyConflict(ctx, input, emailAddr)
		}
		s.logger.Error("create profile failed", zap.Error(err), zap.String("email", emailAddr))
		return domain.Profile{}, []domain.FailureReason{domain.FailureUnknown}
	}

	s.sendConfirmation(ctx, profile)
	return profile, []domain.FailureReason{domain.FailureNone}
}

// ConfirmProfileEmailAddress marca el email como confirmado si el token coincide.
// Un token incorrecto se reporta igual que un perfil inexistente.
func (s *ProfileService) ConfirmProfileEmailAddress(ctx context.Context, emailAddr, token string) domain.FailureReason {
	if s.profiles == nil {
		return domain.FailureUnknown
	}
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return domain.FailureNonExistentProfile
	}

	profile, err := s.profiles.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.FailureNonExistentProfile
		}
		s.logger.Error("confirm email lookup failed", zap.Error(err), zap.String("email", emailAddr))
		return domain.FailureUnknown
	}

	switch {
	case profile.IsDeactivated:
		return domain.FailureInactiveProfile
	case profile.IsEmailConfirmed:
		return domain.FailureDuplicateEmail
	case !tokensMatch(token, profile.EmailConfirmationToken):
		return domain.FailureNonExistentProfile
	}

	confirmed := true
	cleared := ""
	_, err = s.profiles.Update(ctx, profile.ID, domain.ProfileUpdate{
		IsEmailConfirmed:       &confirmed,
		EmailConfirmationToken: &cleared,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.FailureNonExistentProfile
		}
		s.logger.Error("confirm email update failed", zap.Error(err), zap.String("profile_id", profile.ID))
		return domain.FailureUnknown
	}
	return domain.FailureNone
}

// UpdateProfile aplica un cambio parcial. Cambiar el email reinicia la confirmacion.
func (s *ProfileService) UpdateProfile(ctx context.Context, id string, input UpdateProfileInput) domain.FailureReason {
	if s.profiles == nil {
		return domain.FailureUnknown
	}
	current, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.FailureNonExistentProfile
		}
		s.logger.Error("update profile lookup failed", zap.Error(err), zap.String("profile_id", id))
		return domain.FailureUnknown
	}
	if current.IsDeactivated {
		return domain.FailureInactiveProfile
	}
	if err := s.validator.UpdateErrors(input); err != nil {
		s.logger.Debug("update profile blank fields", zap.Error(err), zap.String("profile_id", id))
		return domain.FailureMissingRequired
	}

	var changes domain.ProfileUpdate
	emailChanged := false
	if input.Email != nil {
		newEmail := normalizeEmail(*input.Email)
		if newEmail != current.Email {
			owner, err := s.profiles.GetByEmail(ctx, newEmail)
			switch {
			case err == nil && owner.ID != current.ID:
				return domain.FailureDuplicateEmail
			case err != nil && !errors.Is(err, repository.ErrNotFound):
				s.logger.Error("update profile email lookup failed", zap.Error(err), zap.String("profile_id", id))
				return domain.FailureUnknown
			}
			unconfirmed := false
			token := newConfirmationToken()
			changes.Email = &newEmail
			changes.IsEmailConfirmed = &unconfirmed
			changes.EmailConfirmationToken = &token
			emailChanged = true
		}
	}
	if input.Password != nil {
		passwordHash, err := s.hasher.Hash(*input.Password)
		if err != nil {
			s.logger.Error("hash password failed", zap.Error(err))
			return domain.FailureUnknown
		}
		changes.PasswordHash = &passwordHash
	}
	if input.FullName != nil {
		fullName := strings.TrimSpace(*input.FullName)
		changes.FullName = &fullName
	}
	if input.Birthday != nil {
		birthday := *input.Birthday
		changes.Birthday = &birthday
	}
	if changes.Empty() {
		return domain.FailureNone
	}

	updated, err := s.profiles.Update(ctx, id, changes)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return domain.FailureNonExistentProfile
		case errors.Is(err, repository.ErrConflict):
			return domain.FailureDuplicateEmail
		}
		s.logger.Error("update profile failed", zap.Error(err), zap.String("profile_id", id))
		return domain.FailureUnknown
	}
	if emailChanged {
		s.sendConfirmation(ctx, updated)
	}
	return domain.FailureNone
}

// DeactivateProfile marca el perfil como desactivado. Es idempotente.
func (s *ProfileService) DeactivateProfile(ctx context.Context, id string) domain.FailureReason {
	if s.profiles == nil {
		return domain.FailureUnknown
	}
	current, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.FailureNonExistentProfile
		}
		s.logger.Error("deactivate profile lookup failed", zap.Error(err), zap.String("profile_id", id))
		return domain.FailureUnknown
	}
	if current.IsDeactivated {
		return domain.FailureNone
	}

	deactivated := true
	if _, err := s.profiles.Update(ctx, id, domain.ProfileUpdate{IsDeactivated: &deactivated}); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.FailureNonExistentProfile
		}
		s.logger.Error("deactivate profile failed", zap.Error(err), zap.String("profile_id", id))
		return domain.FailureUnknown
	}
	s.logger.Info("profile deactivated", zap.String("profile_id", id))
	return domain.FailureNone
}

// GetProfile devuelve el perfil completo por id.
func (s *ProfileService) GetProfile(ctx context.Context, id string) (domain.Profile, error) {
	if s.profiles == nil {
		return domain.Profile{}, errors.New("profile service not configured")
	}
	return s.profiles.GetByID(ctx, id)
}

// CleanProfileForClient proyecta un perfil quitando password y token de confirmacion.
func (s *ProfileService) CleanProfileForClient(profile domain.Profile) domain.ClientProfile {
	return CleanProfileForClient(profile)
}

func CleanProfileForClient(profile domain.Profile) domain.ClientProfile {
	return domain.ClientProfile{
		ID:               profile.ID,
		Email:            profile.Email,
		FullName:         profile.FullName,
		Birthday:         profile.Birthday,
		IsEmailConfirmed: profile.IsEmailConfirmed,
		IsDeactivated:    profile.IsDeactivated,
		CreatedAt:        profile.CreatedAt,
		UpdatedAt:        profile.UpdatedAt,
	}
}

func (s *ProfileService) classifyConflict(ctx context.Context, input NewProfileInput, emailAddr string) []domain.FailureReason {
	winner, err := s.profiles.GetByEmail(ctx, emailAddr)
	if err != nil {
		s.logger.Warn("create profile conflict reload failed", zap.Error(err), zap.String("email", emailAddr))
		return []domain.FailureReason{domain.FailureDuplicateEmail}
	}
	return s.validator.Evaluate(input, &winner)
}

func (s *ProfileService) sendConfirmation(ctx context.Context, profile domain.Profile) {
	if s.emailSender == nil {
		s.logger.Warn("email sender not configured, confirmation not sent", zap.String("profile_id", profile.ID))
		return
	}
	if err := s.emailSender.SendEmailConfirmation(ctx, profile.Email, profile.FullName, profile.EmailConfirmationToken); err != nil {
		s.logger.Warn("send email confirmation failed", zap.Error(err), zap.String("email", profile.Email))
	}
}

func newConfirmationToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func tokensMatch(given, stored string) bool {
	if given == "" || stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(given), []byte(stored)) == 1
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
