package models

import "time"

type Plant struct {
	ID                   int       `json:"id"`
	Name                 string    `json:"name"`
	ScientificName       string    `json:"scientific_name"`
	Category             string    `json:"category"`
	Description          string    `json:"description"`
	HeightMin            float64   `json:"height_min"`
	HeightMax            float64   `json:"height_max"`
	SpreadMin            float64   `json:"spread_min"`
	SpreadMax            float64   `json:"spread_max"`
	GrowthRate           string    `json:"growth_rate"`
	SunlightRequirements string    `json:"sunlight_requirements"`
	WaterRequirements    string    `json:"water_requirements"`
	SoilType             string    `json:"soil_type"`
	BloomTime            string    `json:"bloom_time"`
	FlowerColor          string    `json:"flower_color"`
	HardinessZone        string    `json:"hardiness_zone"`
	ImageURL             string    `json:"image_url"`
	ProjectID            int       `json:"project_id"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`

	// OwnerID is the owner of ProjectID, loaded for policy checks.
	OwnerID int `json:"-"`
}

type PlantInput struct {
	Name                 string  `json:"name" validate:"required,min=2,max=100"`
	ScientificName       string  `json:"scientific_name" validate:"max=100"`
	Category             string  `json:"category" validate:"max=100"`
	Description          string  `json:"description" validate:"max=5000"`
	HeightMin            float64 `json:"height_min" validate:"gte=0"`
	HeightMax            float64 `json:"height_max" validate:"gte=0,gtefield=HeightMin"`
	SpreadMin            float64 `json:"spread_min" validate:"gte=0"`
	SpreadMax            float64 `json:"spread_max" validate:"gte=0,gtefield=SpreadMin"`
	GrowthRate           string  `json:"growth_rate" validate:"max=50"`
	SunlightRequirements string  `json:"sunlight_requirements" validate:"max=100"`
	WaterRequirements    string  `json:"water_requirements" validate:"max=100"`
	SoilType             string  `json:"soil_type" validate:"max=100"`
	BloomTime            string  `json:"bloom_time" validate:"max=100"`
	FlowerColor          string  `json:"flower_color" validate:"max=50"`
	HardinessZone        string  `json:"hardiness_zone" validate:"max=50"`
	ProjectID            int     `json:"project_id" validate:"required,gt=0"`
}

type PlantPatch struct {
	Name                 *string  `json:"name" validate:"omitempty,min=2,max=100"`
	ScientificName       *string  `json:"scientific_name" validate:"omitempty,max=100"`
	Category             *string  `json:"category" validate:"omitempty,max=100"`
	Description          *string  `json:"description" validate:"omitempty,max=5000"`
	HeightMin            *float64 `json:"height_min" validate:"omitempty,gte=0"`
	HeightMax            *float64 `json:"height_max" validate:"omitempty,gte=0"`
	SpreadMin            *float64 `json:"spread_min" validate:"omitempty,gte=0"`
	SpreadMax            *float64 `json:"spread_max" validate:"omitempty,gte=0"`
	GrowthRate           *string  `json:"growth_rate" validate:"omitempty,max=50"`
	SunlightRequirements *string  `json:"sunlight_requirements" validate:"omitempty,max=100"`
	WaterRequirements    *string  `json:"water_requirements" validate:"omitempty,max=100"`
	SoilType             *string  `json:"soil_type" validate:"omitempty,max=100"`
	BloomTime            *string  `json:"bloom_time" validate:"omitempty,max=100"`
	FlowerColor          *string  `json:"flower_color" validate:"omitempty,max=50"`
	HardinessZone        *string  `json:"hardiness_zone" validate:"omitempty,max=50"`
}

func (p PlantPatch) Apply(pl *Plant) {
	setString(&pl.Name, p.Name)
	setString(&pl.ScientificName, p.ScientificName)
	setString(&pl.Category, p.Category)
	setString(&pl.Description, p.Description)
	setFloat(&pl.HeightMin, p.HeightMin)
	setFloat(&pl.HeightMax, p.HeightMax)
	setFloat(&pl.SpreadMin, p.SpreadMin)
	setFloat(&pl.SpreadMax, p.SpreadMax)
	setString(&pl.GrowthRate, p.GrowthRate)
	setString(&pl.SunlightRequirements, p.SunlightRequirements)
	setString(&pl.WaterRequirements, p.WaterRequirements)
	setString(&pl.SoilType, p.SoilType)
	setString(&pl.BloomTime, p.BloomTime)
	setString(&pl.FlowerColor, p.FlowerColor)
	setString(&pl.HardinessZone, p.HardinessZone)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
