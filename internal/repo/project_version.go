package repo

import (
	"context"
	"database/sql"

	"github.com/crucial707/landscape-lab/internal/db"
	"github.com/crucial707/landscape-lab/internal/models"
)

const projectVersionColumns = `id, project_id, version, notes, created_by, created_at`

// ProjectVersionRepo persists named project snapshots. Versions are unique per project.
type ProjectVersionRepo struct {
	DB *sql.DB
}

func NewProjectVersionRepo(db *sql.DB) *ProjectVersionRepo {
	return &ProjectVersionRepo{DB: db}
}

func scanProjectVersion(row scanner) (*models.ProjectVersion, error) {
	v := &models.ProjectVersion{}
	if err := row.Scan(&v.ID, &v.ProjectID, &v.Version, &v.Notes, &v.CreatedBy, &v.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return v, nil
}

func (r *ProjectVersionRepo) Create(ctx context.Context, v models.ProjectVersion, check func(ownerID int) error) (*models.ProjectVersion, error) {
	var out *models.ProjectVersion
	err := db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		ownerID, err := lockProjectOwner(ctx, tx, v.ProjectID)
		if err != nil {
			return err
		}
		if err := check(ownerID); err != nil {
			return err
		}
		out, err = scanProjectVersion(tx.QueryRowContext(ctx, `
			INSERT INTO project_versions (project_id, version, notes, created_by)
			VALUES ($1, $2, $3, $4)
			RETURNING `+projectVersionColumns,
			v.ProjectID, v.Version, v.Notes, v.CreatedBy,
		))
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProjectVersionRepo) ListByProject(ctx context.Context, projectID int) ([]models.ProjectVersion, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+projectVersionColumns+` FROM project_versions WHERE project_id = $1 ORDER BY created_at DESC, id DESC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	versions := []models.ProjectVersion{}
	for rows.Next() {
		v, err := scanProjectVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, *v)
	}
	return versions, rows.Err()
}
