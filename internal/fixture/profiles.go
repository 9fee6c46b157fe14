// Package fixture arma datos de prueba sobre un repositorio real usando la cadena de servicios.
package fixture

import (
	"context"
	"errors"
	"fmt"
	"time"

	"profile-auth/internal/domain"
	"profile-auth/internal/repository"
	"profile-auth/internal/service"
)

const (
	ValidPassword            = "P@ssw0rd"
	ConfirmedEmail           = "someone@somewhere.com"
	UnconfirmedEmail         = "someone-else@somewhere.com"
	InactiveEmail            = "someone-not-anymore@somewhere.com"
	InactiveUnconfirmedEmail = "someone-else-not-anymore@somewhere.com"
	defaultFullName          = "Fixture Profile"
)

type seedProfile struct {
	email      string
	confirm    bool
	deactivate bool
}

var canonicalProfiles = []seedProfile{
	{email: ConfirmedEmail, confirm: true},
	{email: UnconfirmedEmail},
	{email: InactiveEmail, confirm: true, deactivate: true},
	{email: InactiveUnconfirmedEmail, deactivate: true},
}

// Profiles siembra los cuatro perfiles canonicos y los limpia. Cada test construye el suyo.
type Profiles struct {
	repo     repository.ProfileRepository
	profiles *service.ProfileService
	seeded   map[string]domain.Profile
}

func NewProfiles(repo repository.ProfileRepository, profiles *service.ProfileService) *Profiles {
	return &Profiles{
		repo:     repo,
		profiles: profiles,
		seeded:   make(map[string]domain.Profile),
	}
}

// Seed crea, confirma y desactiva en orden; cada paso termina antes del siguiente y el primer
// error corta la cadena.
func (f *Profiles) Seed(ctx context.Context) error {
	birthday := time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)
	for _, sp := range canonicalProfiles {
		created, reasons := f.profiles.CreateNewProfile(ctx, service.NewProfileInput{
			Email:    sp.email,
			Password: ValidPassword,
			FullName: defaultFullName,
			Birthday: birthday,
		})
		if !domain.Succeeded(reasons) {
			return fmt.Errorf("seed %s: create: %v", sp.email, reasons)
		}
		f.seeded[sp.email] = created

		if sp.confirm {
			if reason := f.profiles.ConfirmProfileEmailAddress(ctx, sp.email, created.EmailConfirmationToken); reason != domain.FailureNone {
				return fmt.Errorf("seed %s: confirm: %s", sp.email, reason)
			}
		}
		if sp.deactivate {
			if reason := f.profiles.DeactivateProfile(ctx, created.ID); reason != domain.FailureNone {
				return fmt.Errorf("seed %s: deactivate: %s", sp.email, reason)
			}
		}

		stored, err := f.repo.GetByID(ctx, created.ID)
		if err != nil {
			return fmt.Errorf("seed %s: reload: %w", sp.email, err)
		}
		f.seeded[sp.email] = stored
	}
	return nil
}

// Profile devuelve el perfil sembrado para email, tal como quedo en el store.
func (f *Profiles) Profile(email string) (domain.Profile, bool) {
	p, ok := f.seeded[email]
	return p, ok
}

// Reset borra los perfiles sembrados.
func (f *Profiles) Reset(ctx context.Context) error {
	for email, p := range f.seeded {
		if err := f.repo.Delete(ctx, p.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("reset %s: %w", email, err)
		}
		delete(f.seeded, email)
	}
	return nil
}
