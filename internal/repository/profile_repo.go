package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"profile-auth/internal/domain"
)

const pgUniqueViolation = "23505"

// ProfileRepository define el contrato de persistencia para perfiles.
// Los errores distinguen ErrNotFound, ErrConflict y fallas inesperadas.
type ProfileRepository interface {
	Create(ctx context.Context, profile domain.Profile) error
	GetByID(ctx context.Context, id string) (domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (domain.Profile, error)
	Update(ctx context.Context, id string, changes domain.ProfileUpdate) (domain.Profile, error)
	Delete(ctx context.Context, id string) error
}

type pgxExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgProfileRepository implementa ProfileRepository usando pgxpool.
type PgProfileRepository struct {
	pool pgxExecutor
}

func NewPgProfileRepository(pool pgxExecutor) *PgProfileRepository {
	return &PgProfileRepository{pool: pool}
}

const profileColumns = `id, email, password_hash, full_name, birthday, is_email_confirmed,
		is_deactivated, email_confirmation_token, created_at, updated_at`

func (r *PgProfileRepository) Create(ctx context.Context, profile domain.Profile) error {
	const query = `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		profile.ID,
		profile.Email,
		profile.PasswordHash,
		profile.FullName,
		profile.Birthday,
		profile.IsEmailConfirmed,
		profile.IsDeactivated,
		profile.EmailConfirmationToken,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	return mapPgError(err)
}

func (r *PgProfileRepository) GetByID(ctx context.Context, id string) (domain.Profile, error) {
	const query = `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE id = $1
	`
	return scanProfile(r.pool.QueryRow(ctx, query, id))
}

func (r *PgProfileRepository) GetByEmail(ctx context.Context, email string) (domain.Profile, error) {
	const query = `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE LOWER(email) = LOWER($1)
	`
	return scanProfile(r.pool.QueryRow(ctx, query, email))
}

// Update aplica solo los campos no nil en una sola sentencia y devuelve la fila resultante.
func (r *PgProfileRepository) Update(ctx context.Context, id string, changes domain.ProfileUpdate) (domain.Profile, error) {
	const query = `
		UPDATE profiles SET
			email = COALESCE($2, email),
			password_hash = COALESCE($3, password_hash),
			full_name = COALESCE($4, full_name),
			birthday = COALESCE($5, birthday),
			is_email_confirmed = COALESCE($6, is_email_confirmed),
			is_deactivated = COALESCE($7, is_deactivated),
			email_confirmation_token = COALESCE($8, email_confirmation_token),
			updated_at = $9
		WHERE id = $1
		RETURNING ` + profileColumns
	return scanProfile(r.pool.QueryRow(ctx, query,
		id,
		changes.Email,
		changes.PasswordHash,
		changes.FullName,
		changes.Birthday,
		changes.IsEmailConfirmed,
		changes.IsDeactivated,
		changes.EmailConfirmationToken,
		time.Now().UTC(),
	))
}

func (r *PgProfileRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM profiles WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProfile(row pgx.Row) (domain.Profile, error) {
	var p domain.Profile
	err := row.Scan(
		&p.ID,
		&p.Email,
		&p.PasswordHash,
		&p.FullName,
		&p.Birthday,
		&p.IsEmailConfirmed,
		&p.IsDeactivated,
		&p.EmailConfirmationToken,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return domain.Profile{}, mapPgError(err)
	}
	return p, nil
}

func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
	}
	return err
}
