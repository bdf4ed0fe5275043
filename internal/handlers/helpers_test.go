package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/landscape-lab/internal/auth"
	"github.com/crucial707/landscape-lab/internal/middleware"
	"github.com/crucial707/landscape-lab/internal/models"
	"github.com/crucial707/landscape-lab/internal/repo"
	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
)

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

var (
	alice = &models.User{ID: 1, Username: "alice", Email: "alice@example.com", IsActive: true}
	bob   = &models.User{ID: 2, Username: "bob", Email: "bob@example.com", IsActive: true}
	admin = &models.User{ID: 9, Username: "root", Email: "root@example.com", IsActive: true, IsAdmin: true}
)

// requestWithChiURLParams returns a request with chi route context and URL params set.
func requestWithChiURLParams(method, path string, body []byte, params map[string]string) *http.Request {
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	return r
}

// as attaches u to the request the way middleware.Authenticate does.
func as(r *http.Request, u *models.User) *http.Request {
	return r.WithContext(middleware.WithUser(r.Context(), u))
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

func newTestAuthenticator(t *testing.T, db *sql.DB) *auth.Authenticator {
	t.Helper()
	tokens, err := auth.NewTokenManager("test-secret", "HS256", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	a, err := auth.NewAuthenticator(repo.NewUserRepo(db), auth.NewPasswordHasher(bcrypt.MinCost), tokens,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewAuthenticator: %v", err)
	}
	return a
}

var userCols = []string{"id", "username", "email", "password_hash", "is_active", "is_admin", "created_at", "updated_at"}

func userRow(u *models.User, hash string) *sqlmock.Rows {
	return sqlmock.NewRows(userCols).AddRow(u.ID, u.Username, u.Email, hash, u.IsActive, u.IsAdmin, testTime, testTime)
}

var projectCols = []string{"id", "name", "description", "location", "area_size", "design_style", "status", "owner_id", "created_at", "updated_at"}

func projectRow(id int, name string, ownerID int) *sqlmock.Rows {
	return sqlmock.NewRows(projectCols).AddRow(id, name, "", "", 0.0, "", models.ProjectStatusDraft, ownerID, testTime, testTime)
}

// multipartBody builds a body with a single "file" part.
func multipartBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	part.Write(content)
	if err := mw.Close(); err != nil {
		t.Fatalf("multipart close: %v", err)
	}
	return &buf, mw.FormDataContentType()
}
