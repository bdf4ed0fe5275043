package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/landscape-lab/internal/models"
	"github.com/lib/pq"
)

var userCols = []string{"id", "username", "email", "password_hash", "is_active", "is_admin", "created_at", "updated_at"}

func TestUserRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO users \(username, email, password_hash, is_admin\)`).
		WithArgs("alice", "alice@example.com", "$2a$hash", false).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "alice", "alice@example.com", "$2a$hash", true, false, now, now))

	repo := NewUserRepo(db)
	user, err := repo.Create(context.Background(), "alice", "alice@example.com", "$2a$hash", false)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.ID != 1 || user.Username != "alice" || !user.IsActive || user.IsAdmin {
		t.Errorf("unexpected user: %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_Create_Duplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_username_key"})

	_, err = NewUserRepo(db).Create(context.Background(), "alice", "alice@example.com", "h", false)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_GetByUsername_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE username = \$1`).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err = NewUserRepo(db).GetByUsername(context.Background(), "nobody")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1 FOR UPDATE`).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(2, "bob", "bob@example.com", "h", true, false, now, now))
	mock.ExpectQuery(`UPDATE users`).
		WithArgs("bob", "bob@example.com", "h", false, false, 2).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(2, "bob", "bob@example.com", "h", false, false, now, now))
	mock.ExpectCommit()

	inactive := false
	user, err := NewUserRepo(db).Update(context.Background(), 2, func(u *models.User) error {
		models.UserAdminPatch{IsActive: &inactive}.Apply(u)
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if user.IsActive {
		t.Errorf("expected user to be deactivated: %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_Update_AbortedByCallback(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	denied := errors.New("denied")
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1 FOR UPDATE`).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(2, "bob", "bob@example.com", "h", true, false, now, now))
	mock.ExpectRollback()

	_, err = NewUserRepo(db).Update(context.Background(), 2, func(*models.User) error { return denied })
	if !errors.Is(err, denied) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM users ORDER BY id LIMIT \$1 OFFSET \$2`).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(1, "alice", "a@example.com", "h", true, false, now, now).
			AddRow(2, "root", "r@example.com", "h", true, true, now, now))

	users, err := NewUserRepo(db).List(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 2 || !users[1].IsAdmin {
		t.Errorf("unexpected users: %+v", users)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
