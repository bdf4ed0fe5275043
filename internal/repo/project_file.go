package repo

import (
	"context"
	"database/sql"

	"github.com/crucial707/landscape-lab/internal/db"
	"github.com/crucial707/landscape-lab/internal/models"
)

const projectFileColumns = `id, project_id, file_name, storage_key, content_type, size, uploaded_by, created_at`

// ProjectFileRepo persists metadata for files uploaded to a project.
type ProjectFileRepo struct {
	DB *sql.DB
}

func NewProjectFileRepo(db *sql.DB) *ProjectFileRepo {
	return &ProjectFileRepo{DB: db}
}

func scanProjectFile(row scanner) (*models.ProjectFile, error) {
	f := &models.ProjectFile{}
	err := row.Scan(&f.ID, &f.ProjectID, &f.FileName, &f.StorageKey, &f.ContentType, &f.Size, &f.UploadedBy, &f.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return f, nil
}

// Create records f under its project. check receives the project's owner and
// runs while the project row is share-locked.
func (r *ProjectFileRepo) Create(ctx context.Context, f models.ProjectFile, check func(ownerID int) error) (*models.ProjectFile, error) {
	var out *models.ProjectFile
	err := db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		ownerID, err := lockProjectOwner(ctx, tx, f.ProjectID)
		if err != nil {
			return err
		}
		if err := check(ownerID); err != nil {
			return err
		}
		out, err = scanProjectFile(tx.QueryRowContext(ctx, `
			INSERT INTO project_files (project_id, file_name, storage_key, content_type, size, uploaded_by)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+projectFileColumns,
			f.ProjectID, f.FileName, f.StorageKey, f.ContentType, f.Size, f.UploadedBy,
		))
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns file fileID of project projectID.
func (r *ProjectFileRepo) Get(ctx context.Context, projectID, fileID int) (*models.ProjectFile, error) {
	return scanProjectFile(r.DB.QueryRowContext(ctx,
		`SELECT `+projectFileColumns+` FROM project_files WHERE id = $1 AND project_id = $2`, fileID, projectID))
}

func (r *ProjectFileRepo) ListByProject(ctx context.Context, projectID int) ([]models.ProjectFile, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+projectFileColumns+` FROM project_files WHERE project_id = $1 ORDER BY created_at DESC, id DESC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := []models.ProjectFile{}
	for rows.Next() {
		f, err := scanProjectFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, *f)
	}
	return files, rows.Err()
}

// projectStorageKeys lists the storage keys of every file in projectID.
func projectStorageKeys(ctx context.Context, q querier, projectID int) ([]string, error) {
	rows, err := q.QueryContext(ctx, `SELECT storage_key FROM project_files WHERE project_id = $1`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
