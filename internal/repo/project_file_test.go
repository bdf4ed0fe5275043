package repo

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/landscape-lab/internal/models"
	"github.com/lib/pq"
)

var projectFileCols = []string{"id", "project_id", "file_name", "storage_key", "content_type", "size", "uploaded_by", "created_at"}

func TestProjectFileRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT owner_id FROM projects WHERE id = \$1 FOR SHARE`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(1))
	mock.ExpectQuery(`INSERT INTO project_files`).
		WithArgs(3, "plan.pdf", "projects/2026/03/abc-plan.pdf", "application/pdf", int64(42), 1).
		WillReturnRows(sqlmock.NewRows(projectFileCols).
			AddRow(10, 3, "plan.pdf", "projects/2026/03/abc-plan.pdf", "application/pdf", int64(42), 1, time.Now()))
	mock.ExpectCommit()

	var seenOwner int
	f, err := NewProjectFileRepo(db).Create(context.Background(), models.ProjectFile{
		ProjectID:   3,
		FileName:    "plan.pdf",
		StorageKey:  "projects/2026/03/abc-plan.pdf",
		ContentType: "application/pdf",
		Size:        42,
		UploadedBy:  1,
	}, func(ownerID int) error {
		seenOwner = ownerID
		return nil
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if f.ID != 10 || seenOwner != 1 {
		t.Errorf("unexpected result: file=%+v owner=%d", f, seenOwner)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestProjectFileRepo_Create_Denied(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	denied := errors.New("denied")
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT owner_id FROM projects`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(1))
	mock.ExpectRollback()

	_, err = NewProjectFileRepo(db).Create(context.Background(), models.ProjectFile{ProjectID: 3}, func(int) error { return denied })
	if !errors.Is(err, denied) {
		t.Fatalf("got %v, want the check error", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestProjectFileRepo_Create_ProjectMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT owner_id FROM projects`).
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	called := false
	_, err = NewProjectFileRepo(db).Create(context.Background(), models.ProjectFile{ProjectID: 99}, func(int) error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if called {
		t.Error("check must not run for a missing project")
	}
}

func TestProjectVersionRepo_Create_Duplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT owner_id FROM projects`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(1))
	mock.ExpectQuery(`INSERT INTO project_versions`).
		WithArgs(3, "v1", "", 1).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "project_versions_project_id_version_key"})
	mock.ExpectRollback()

	_, err = NewProjectVersionRepo(db).Create(context.Background(),
		models.ProjectVersion{ProjectID: 3, Version: "v1", CreatedBy: 1},
		func(int) error { return nil })
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("got %v, want ErrConflict", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestProjectVersionRepo_ListByProject(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM project_versions WHERE project_id = \$1`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "project_id", "version", "notes", "created_by", "created_at"}).
			AddRow(2, 3, "v2", "", 1, now).
			AddRow(1, 3, "v1", "first cut", 1, now))

	versions, err := NewProjectVersionRepo(db).ListByProject(context.Background(), 3)
	if err != nil {
		t.Fatalf("ListByProject: %v", err)
	}
	if len(versions) != 2 || versions[0].Version != "v2" {
		t.Errorf("versions: got %+v", versions)
	}
}
