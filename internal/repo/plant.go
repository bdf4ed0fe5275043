package repo

import (
	"context"
	"database/sql"

	"github.com/crucial707/landscape-lab/internal/db"
	"github.com/crucial707/landscape-lab/internal/models"
)

const plantColumns = `pl.id, pl.name, pl.scientific_name, pl.category, pl.description,
	pl.height_min, pl.height_max, pl.spread_min, pl.spread_max, pl.growth_rate,
	pl.sunlight_requirements, pl.water_requirements, pl.soil_type, pl.bloom_time,
	pl.flower_color, pl.hardiness_zone, pl.image_url, pl.project_id, pl.created_at, pl.updated_at, pr.owner_id`

const plantFrom = ` FROM plants pl JOIN projects pr ON pr.id = pl.project_id`

// PlantFilter narrows List and Count. Zero values match everything.
type PlantFilter struct {
	Search    string
	Category  string
	ProjectID int
}

// ========================
// REPOSITORY STRUCT
// ========================

type PlantRepo struct {
	DB *sql.DB
}

func NewPlantRepo(db *sql.DB) *PlantRepo {
	return &PlantRepo{DB: db}
}

func scanPlant(row scanner) (*models.Plant, error) {
	p := &models.Plant{}
	err := row.Scan(
		&p.ID, &p.Name, &p.ScientificName, &p.Category, &p.Description,
		&p.HeightMin, &p.HeightMax, &p.SpreadMin, &p.SpreadMax, &p.GrowthRate,
		&p.SunlightRequirements, &p.WaterRequirements, &p.SoilType, &p.BloomTime,
		&p.FlowerColor, &p.HardinessZone, &p.ImageURL, &p.ProjectID, &p.CreatedAt, &p.UpdatedAt, &p.OwnerID,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

func getPlant(ctx context.Context, q querier, id int, lock string) (*models.Plant, error) {
	return scanPlant(q.QueryRowContext(ctx, `SELECT `+plantColumns+plantFrom+` WHERE pl.id = $1`+lock, id))
}

// ========================
// CREATE PLANT
// ========================

// Create inserts a plant under in.ProjectID. check receives the project's
// owner before the insert; a non-nil result aborts it.
func (r *PlantRepo) Create(ctx context.Context, in models.PlantInput, check func(ownerID int) error) (*models.Plant, error) {
	var out *models.Plant
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
			INSERT INTO plants (name, scientific_name, category, description, height_min, height_max,
				spread_min, spread_max, growth_rate, sunlight_requirements, water_requirements,
				soil_type, bloom_time, flower_color, hardiness_zone, project_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			RETURNING id`,
			in.Name, in.ScientificName, in.Category, in.Description, in.HeightMin, in.HeightMax,
			in.SpreadMin, in.SpreadMax, in.GrowthRate, in.SunlightRequirements, in.WaterRequirements,
			in.SoilType, in.BloomTime, in.FlowerColor, in.HardinessZone, in.ProjectID,
		).Scan(&id)
		if err != nil {
			return mapErr(err)
		}
		out, err = getPlant(ctx, tx, id, "")
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ========================
// GET PLANT BY ID
// ========================

func (r *PlantRepo) GetByID(ctx context.Context, id int) (*models.Plant, error) {
	return getPlant(ctx, r.DB, id, "")
}

// ========================
// UPDATE PLANT
// ========================

// Update locks the plant, lets fn check and modify it, then writes it back.
func (r *PlantRepo) Update(ctx context.Context, id int, fn func(p *models.Plant) error) (*models.Plant, error) {
	var out *models.Plant
	err := db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		p, err := getPlant(ctx, tx, id, " FOR UPDATE OF pl")
		if err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE plants
			SET name = $1, scientific_name = $2, category = $3, description = $4, height_min = $5,
				height_max = $6, spread_min = $7, spread_max = $8, growth_rate = $9,
				sunlight_requirements = $10, water_requirements = $11, soil_type = $12, bloom_time = $13,
				flower_color = $14, hardiness_zone = $15, image_url = $16, updated_at = NOW()
			WHERE id = $17`,
			p.Name, p.ScientificName, p.Category, p.Description, p.HeightMin,
			p.HeightMax, p.SpreadMin, p.SpreadMax, p.GrowthRate,
			p.SunlightRequirements, p.WaterRequirements, p.SoilType, p.BloomTime,
			p.FlowerColor, p.HardinessZone, p.ImageURL, id,
		)
		if err != nil {
			return mapErr(err)
		}
		out, err = getPlant(ctx, tx, id, "")
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ========================
// DELETE PLANT
// ========================

func (r *PlantRepo) Delete(ctx context.Context, id int, check func(p *models.Plant) error) (*models.Plant, error) {
	var out *models.Plant
	err := db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		p, err := getPlant(ctx, tx, id, " FOR UPDATE OF pl")
		if err != nil {
			return err
		}
		if err := check(p); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM plants WHERE id = $1`, id); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ========================
// LIST / SEARCH PLANTS WITH PAGINATION
// ========================

const plantFilter = `
	WHERE ($1::text = '' OR pl.name ILIKE '%' || $1 || '%' OR pl.scientific_name ILIKE '%' || $1 || '%')
	  AND ($2::text = '' OR pl.category = $2)
	  AND ($3::int = 0 OR pl.project_id = $3)`

func (r *PlantRepo) Count(ctx context.Context, f PlantFilter) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*)`+plantFrom+plantFilter, f.Search, f.Category, f.ProjectID).Scan(&n)
	return n, err
}

func (r *PlantRepo) List(ctx context.Context, f PlantFilter, limit, offset int) ([]models.Plant, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+plantColumns+plantFrom+plantFilter+` ORDER BY pl.id LIMIT $4 OFFSET $5`,
		f.Search, f.Category, f.ProjectID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPlants(rows)
}

func collectPlants(rows *sql.Rows) ([]models.Plant, error) {
	plants := []models.Plant{}
	for rows.Next() {
		p, err := scanPlant(rows)
		if err != nil {
			return nil, err
		}
		plants = append(plants, *p)
	}
	return plants, rows.Err()
}

// ========================
// STATISTICS
// ========================

func (r *PlantRepo) Statistics(ctx context.Context) (*models.PlantStatistics, error) {
	stats := &models.PlantStatistics{}
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM plants`).Scan(&stats.TotalPlants); err != nil {
		return nil, err
	}

	var err error
	stats.PlantCategories, err = groupCounts(ctx, r.DB, `SELECT category, COUNT(*) FROM plants GROUP BY category ORDER BY COUNT(*) DESC, category`)
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, `SELECT `+plantColumns+plantFrom+` ORDER BY pl.created_at DESC, pl.id DESC LIMIT $1`, statsRecentLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats.RecentAdditions, err = collectPlants(rows)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
