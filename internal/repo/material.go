package repo

import (
	"context"
	"database/sql"

	"github.com/crucial707/landscape-lab/internal/db"
	"github.com/crucial707/landscape-lab/internal/models"
)

const materialColumns = `m.id, m.name, m.category, m.description, m.unit, m.unit_price, m.density, m.strength,
	m.color, m.texture, m.image_url, m.project_id, m.created_at, m.updated_at, pr.owner_id`

const materialFrom = ` FROM materials m JOIN projects pr ON pr.id = m.project_id`

// MaterialFilter narrows List and Count. Zero values match everything.
type MaterialFilter struct {
	Search    string
	Category  string
	ProjectID int
}

// ========================
// REPOSITORY STRUCT
// ========================

type MaterialRepo struct {
	DB *sql.DB
}

func NewMaterialRepo(db *sql.DB) *MaterialRepo {
	return &MaterialRepo{DB: db}
}

func scanMaterial(row scanner) (*models.Material, error) {
	m := &models.Material{}
	var density, strength sql.NullFloat64
	err := row.Scan(
		&m.ID, &m.Name, &m.Category, &m.Description, &m.Unit, &m.UnitPrice, &density, &strength,
		&m.Color, &m.Texture, &m.ImageURL, &m.ProjectID, &m.CreatedAt, &m.UpdatedAt, &m.OwnerID,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	if density.Valid {
		m.Density = &density.Float64
	}
	if strength.Valid {
		m.Strength = &strength.Float64
	}
	return m, nil
}

func getMaterial(ctx context.Context, q querier, id int, lock string) (*models.Material, error) {
	return scanMaterial(q.QueryRowContext(ctx, `SELECT `+materialColumns+materialFrom+` WHERE m.id = $1`+lock, id))
}

// ========================
// CREATE MATERIAL
// ========================

// Create inserts a material under in.ProjectID. check receives the project's
// owner before the insert; a non-nil result aborts it.
func (r *MaterialRepo) Create(ctx context.Context, in models.MaterialInput, check func(ownerID int) error) (*models.Material, error) {
	var out *models.Material
	err := db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		ownerID, err := lockProjectOwner(ctx, tx, in.ProjectID)
		if err != nil {
			return err
		}
		if err := check(ownerID); err != nil {
			return err
		}
		var id int
		err = tx.QueryRowContext(ctx, `
			INSERT INTO materials (name, category, description, unit, unit_price, density, strength, color, texture, project_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id`,
			in.Name, in.Category, in.Description, in.Unit, in.UnitPrice, in.Density, in.Strength, in.Color, in.Texture, in.ProjectID,
		).Scan(&id)
		if err != nil {
			return mapErr(err)
		}
		out, err = getMaterial(ctx, tx, id, "")
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ========================
// GET MATERIAL BY ID
// ========================

func (r *MaterialRepo) GetByID(ctx context.Context, id int) (*models.Material, error) {
	return getMaterial(ctx, r.DB, id, "")
}

// ========================
// UPDATE MATERIAL
// ========================

// Update locks the material, lets fn check and modify it, then writes it back.
func (r *MaterialRepo) Update(ctx context.Context, id int, fn func(m *models.Material) error) (*models.Material, error) {
	var out *models.Material
	err := db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		m, err := getMaterial(ctx, tx, id, " FOR UPDATE OF m")
		if err != nil {
			return err
		}
		if err := fn(m); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE materials
			SET name = $1, category = $2, description = $3, unit = $4, unit_price = $5, density = $6,
				strength = $7, color = $8, texture = $9, image_url = $10, updated_at = NOW()
			WHERE id = $11`,
			m.Name, m.Category, m.Description, m.Unit, m.UnitPrice, m.Density,
			m.Strength, m.Color, m.Texture, m.ImageURL, id,
		)
		if err != nil {
			return mapErr(err)
		}
		out, err = getMaterial(ctx, tx, id, "")
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ========================
// DELETE MATERIAL
// ========================

func (r *MaterialRepo) Delete(ctx context.Context, id int, check func(m *models.Material) error) (*models.Material, error) {
	var out *models.Material
	err := db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		m, err := getMaterial(ctx, tx, id, " FOR UPDATE OF m")
		if err != nil {
			return err
		}
		if err := check(m); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM materials WHERE id = $1`, id); err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ========================
// LIST / SEARCH MATERIALS WITH PAGINATION
// ========================

const materialFilter = `
	WHERE ($1::text = '' OR m.name ILIKE '%' || $1 || '%' OR m.description ILIKE '%' || $1 || '%')
	  AND ($2::text = '' OR m.category = $2)
	  AND ($3::int = 0 OR m.project_id = $3)`

func (r *MaterialRepo) Count(ctx context.Context, f MaterialFilter) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*)`+materialFrom+materialFilter, f.Search, f.Category, f.ProjectID).Scan(&n)
	return n, err
}

func (r *MaterialRepo) List(ctx context.Context, f MaterialFilter, limit, offset int) ([]models.Material, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+materialColumns+materialFrom+materialFilter+` ORDER BY m.id LIMIT $4 OFFSET $5`,
		f.Search, f.Category, f.ProjectID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMaterials(rows)
}

func collectMaterials(rows *sql.Rows) ([]models.Material, error) {
	materials := []models.Material{}
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, err
		}
		materials = append(materials, *m)
	}
	return materials, rows.Err()
}

// ========================
// STATISTICS
// ========================

func (r *MaterialRepo) Statistics(ctx context.Context) (*models.MaterialStatistics, error) {
	stats := &models.MaterialStatistics{}
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM materials`).Scan(&stats.TotalMaterials); err != nil {
		return nil, err
	}

	var err error
	stats.MaterialTypes, err = groupCounts(ctx, r.DB, `SELECT category, COUNT(*) FROM materials GROUP BY category ORDER BY COUNT(*) DESC, category`)
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, `SELECT `+materialColumns+materialFrom+` ORDER BY m.created_at DESC, m.id DESC LIMIT $1`, statsRecentLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats.RecentAdditions, err = collectMaterials(rows)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
