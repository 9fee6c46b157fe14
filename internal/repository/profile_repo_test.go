package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"profile-auth/internal/domain"
)

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch ptr := d.(type) {
		case *string:
			*ptr = r.values[i].(string)
		case *bool:
			*ptr = r.values[i].(bool)
		case *time.Time:
			*ptr = r.values[i].(time.Time)
		}
	}
	return nil
}

type fakePool struct {
	execTag  pgconn.CommandTag
	execErr  error
	row      fakeRow
	lastSQL  string
	lastArgs []any
}

func (f *fakePool) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.lastSQL = sql
	f.lastArgs = args
	return f.execTag, f.execErr
}

func (f *fakePool) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.lastSQL = sql
	f.lastArgs = args
	return f.row
}

func TestPgProfileRepository_GetByEmailNotFound(t *testing.T) {
	pool := &fakePool{row: fakeRow{err: pgx.ErrNoRows}}
	repo := NewPgProfileRepository(pool)

	_, err := repo.GetByEmail(context.Background(), "missing@example.com")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(pool.lastArgs) != 1 || pool.lastArgs[0] != "missing@example.com" {
		t.Fatalf("unexpected args: %+v", pool.lastArgs)
	}
}

func TestPgProfileRepository_GetByIDScansRow(t *testing.T) {
	now := time.Now().UTC()
	bday := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	pool := &fakePool{row: fakeRow{values: []any{
		"p1", "user@example.com", "hash", "User", bday, true, false, "", now, now,
	}}}
	repo := NewPgProfileRepository(pool)

	p, err := repo.GetByID(context.Background(), "p1")
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if p.ID != "p1" || p.Email != "user@example.com" || !p.IsEmailConfirmed || p.IsDeactivated {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if !p.Birthday.Equal(bday) {
		t.Fatalf("expected birthday %v, got %v", bday, p.Birthday)
	}
}

func TestPgProfileRepository_CreateUniqueViolation(t *testing.T) {
	pool := &fakePool{execErr: &pgconn.PgError{Code: "23505", ConstraintName: "profiles_email_key"}}
	repo := NewPgProfileRepository(pool)

	err := repo.Create(context.Background(), domain.Profile{ID: "p1", Email: "dup@example.com"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestPgProfileRepository_CreateUnexpectedError(t *testing.T) {
	pool := &fakePool{execErr: errors.New("connection reset")}
	repo := NewPgProfileRepository(pool)

	err := repo.Create(context.Background(), domain.Profile{ID: "p1"})
	if err == nil || errors.Is(err, ErrConflict) || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected unexpected error to pass through, got %v", err)
	}
}

func TestPgProfileRepository_UpdatePassesNilForUnchangedFields(t *testing.T) {
	pool := &fakePool{row: fakeRow{err: pgx.ErrNoRows}}
	repo := NewPgProfileRepository(pool)
	deactivated := true

	_, err := repo.Update(context.Background(), "p1", domain.ProfileUpdate{IsDeactivated: &deactivated})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(pool.lastArgs) != 9 {
		t.Fatalf("expected 9 args, got %d", len(pool.lastArgs))
	}
	if pool.lastArgs[1].(*string) != nil {
		t.Fatalf("expected nil email arg")
	}
	if got := pool.lastArgs[6].(*bool); got == nil || !*got {
		t.Fatalf("expected is_deactivated=true arg")
	}
}

func TestPgProfileRepository_DeleteMissing(t *testing.T) {
	pool := &fakePool{execTag: pgconn.NewCommandTag("DELETE 0")}
	repo := NewPgProfileRepository(pool)

	if err := repo.Delete(context.Background(), "p1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
