package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/avelins/membergate/internal/core/domain"
	"github.com/avelins/membergate/internal/repository"
)

func TestUserRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	createdAt := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(42), createdAt)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("Ann", "Lee", "annl", "ann@x.com", "$2a$12$stub").
		WillReturnRows(rows)

	user, err := repo.Create(context.Background(), domain.User{
		FirstName:    "Ann",
		LastName:     "Lee",
		Username:     "annl",
		Email:        "ann@x.com",
		PasswordHash: "$2a$12$stub",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if user.ID != 42 {
		t.Fatalf("expected assigned id 42, got %d", user.ID)
	}
	if !user.CreatedAt.Equal(createdAt) {
		t.Fatalf("expected created_at %v, got %v", createdAt, user.CreatedAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("Ann", "Lee", "annl", "ann@x.com", "$2a$12$stub").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err = repo.Create(context.Background(), domain.User{
		FirstName:    "Ann",
		LastName:     "Lee",
		Username:     "annl",
		Email:        "ann@x.com",
		PasswordHash: "$2a$12$stub",
	})
	if !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByUsername(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	createdAt := time.Now().UTC()
	rows := pgxmock.NewRows(userColumns).
		AddRow(int64(7), "Ann", "Lee", "annl", "ann@x.com", "$2a$12$stub", createdAt)

	mock.ExpectQuery(`SELECT id, first_name, last_name, username, email, password, created_at FROM users WHERE username = \$1`).
		WithArgs("annl").
		WillReturnRows(rows)

	user, err := repo.GetByUsername(context.Background(), "annl")
	if err != nil {
		t.Fatalf("GetByUsername returned error: %v", err)
	}

	if user.ID != 7 || user.Email != "ann@x.com" {
		t.Fatalf("unexpected user: %+v", user)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectQuery(`SELECT id, first_name, last_name, username, email, password, created_at FROM users WHERE id = \$1`).
		WithArgs(int64(9999)).
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.GetByID(context.Background(), 9999)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_GetByEmailNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectQuery(`SELECT id, first_name, last_name, username, email, password, created_at FROM users WHERE email = \$1`).
		WithArgs("ghost@x.com").
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.GetByEmail(context.Background(), "ghost@x.com")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
