package repo

import (
	"context"
	"database/sql"

	"github.com/crucial707/landscape-lab/internal/db"
	"github.com/crucial707/landscape-lab/internal/models"
)

const projectColumns = `id, name, description, location, area_size, design_style, status, owner_id, created_at, updated_at`

// ========================
// REPOSITORY STRUCT
// ========================

type ProjectRepo struct {
	DB *sql.DB
}

func NewProjectRepo(db *sql.DB) *ProjectRepo {
	return &ProjectRepo{DB: db}
}

func scanProject(row scanner) (*models.Project, error) {
	p := &models.Project{}
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Location, &p.AreaSize, &p.DesignStyle, &p.Status, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

func getProject(ctx context.Context, q querier, id int, lock string) (*models.Project, error) {
	return scanProject(q.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`+lock, id))
}

// ========================
// CREATE PROJECT
// ========================

func (r *ProjectRepo) Create(ctx context.Context, in models.ProjectInput, ownerID int) (*models.Project, error) {
	return scanProject(r.DB.QueryRowContext(ctx, `
		INSERT INTO projects (name, description, location, area_size, design_style, status, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+projectColumns,
		in.Name, in.Description, in.Location, in.AreaSize, in.DesignStyle, models.ProjectStatusDraft, ownerID,
	))
}

// ========================
// GET PROJECT BY ID
// ========================

func (r *ProjectRepo) GetByID(ctx context.Context, id int) (*models.Project, error) {
	return getProject(ctx, r.DB, id, "")
}

// ========================
// UPDATE PROJECT
// ========================

// Update locks the project, lets fn check and modify it, then writes it back.
// An error from fn rolls the transaction back and is returned unchanged.
func (r *ProjectRepo) Update(ctx context.Context, id int, fn func(p *models.Project) error) (*models.Project, error) {
	var out *models.Project
	err := db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		p, err := getProject(ctx, tx, id, " FOR UPDATE")
		if err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
		out, err = scanProject(tx.QueryRowContext(ctx, `
			UPDATE projects
			SET name = $1, description = $2, location = $3, area_size = $4, design_style = $5, status = $6, updated_at = NOW()
			WHERE id = $7
			RETURNING `+projectColumns,
			p.Name, p.Description, p.Location, p.AreaSize, p.DesignStyle, p.Status, id,
		))
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ========================
// DELETE PROJECT
// ========================

// Delete locks the project, runs check against it and deletes it when check
// passes. Plants, materials, files and versions go with it (ON DELETE CASCADE).
// The storage keys of the cascaded files are returned for cleanup; they are
// read under the FOR UPDATE lock, which blocks concurrent uploads.
func (r *ProjectRepo) Delete(ctx context.Context, id int, check func(p *models.Project) error) (*models.Project, []string, error) {
	var (
		out  *models.Project
		keys []string
	)
	err := db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		p, err := getProject(ctx, tx, id, " FOR UPDATE")
		if err != nil {
			return err
		}
		if err := check(p); err != nil {
			return err
		}
		keys, err = projectStorageKeys(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return out, keys, nil
}

// ========================
// LIST / SEARCH PROJECTS WITH PAGINATION
// ========================

const projectFilter = `
	WHERE ($1::text = '' OR name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%')
	  AND ($2::text = '' OR status = $2)`

func (r *ProjectRepo) Count(ctx context.Context, search, status string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`+projectFilter, search, status).Scan(&n)
	return n, err
}

func (r *ProjectRepo) List(ctx context.Context, search, status string, limit, offset int) ([]models.Project, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects`+projectFilter+` ORDER BY id LIMIT $3 OFFSET $4`,
		search, status, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// ========================
// STATISTICS
// ========================

func (r *ProjectRepo) Statistics(ctx context.Context) (*models.ProjectStatistics, error) {
	stats := &models.ProjectStatistics{}
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&stats.TotalProjects); err != nil {
		return nil, err
	}

	var err error
	stats.ProjectStatuses, err = groupCounts(ctx, r.DB, `SELECT status, COUNT(*) FROM projects GROUP BY status ORDER BY COUNT(*) DESC, status`)
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC, id DESC LIMIT $1`, statsRecentLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats.RecentAdditions = []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		stats.RecentAdditions = append(stats.RecentAdditions, *p)
	}
	return stats, rows.Err()
}

// groupCounts runs a two-column (key, count) GROUP BY query.
func groupCounts(ctx context.Context, q querier, query string) ([]models.GroupCount, error) {
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.GroupCount{}
	for rows.Next() {
		var g models.GroupCount
		if err := rows.Scan(&g.Key, &g.Count); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
