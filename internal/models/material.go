package models

import "time"

type Material struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Unit        string    `json:"unit"`
	UnitPrice   float64   `json:"unit_price"`
	Density     *float64  `json:"density,omitempty"`
	Strength    *float64  `json:"strength,omitempty"`
	Color       string    `json:"color"`
	Texture     string    `json:"texture"`
	ImageURL    string    `json:"image_url"`
	ProjectID   int       `json:"project_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// OwnerID is the owner of ProjectID, loaded for policy checks.
	OwnerID int `json:"-"`
}

type MaterialInput struct {
	Name        string   `json:"name" validate:"required,min=2,max=100"`
	Category    string   `json:"category" validate:"required,max=100"`
	Description string   `json:"description" validate:"max=5000"`
	Unit        string   `json:"unit" validate:"required,max=50"`
	UnitPrice   float64  `json:"unit_price" validate:"gte=0"`
	Density     *float64 `json:"density" validate:"omitempty,gte=0"`
	Strength    *float64 `json:"strength" validate:"omitempty,gte=0"`
	Color       string   `json:"color" validate:"max=50"`
	Texture     string   `json:"texture" validate:"max=100"`
	ProjectID   int      `json:"project_id" validate:"required,gt=0"`
}

type MaterialPatch struct {
	Name        *string  `json:"name" validate:"omitempty,min=2,max=100"`
	Category    *string  `json:"category" validate:"omitempty,max=100"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Unit        *string  `json:"unit" validate:"omitempty,max=50"`
	UnitPrice   *float64 `json:"unit_price" validate:"omitempty,gte=0"`
	Density     *float64 `json:"density" validate:"omitempty,gte=0"`
	Strength    *float64 `json:"strength" validate:"omitempty,gte=0"`
	Color       *string  `json:"color" validate:"omitempty,max=50"`
	Texture     *string  `json:"texture" validate:"omitempty,max=100"`
}

func (p MaterialPatch) Apply(m *Material) {
	setString(&m.Name, p.Name)
	setString(&m.Category, p.Category)
	setString(&m.Description, p.Description)
	setString(&m.Unit, p.Unit)
	setFloat(&m.UnitPrice, p.UnitPrice)
	if p.Density != nil {
		d := *p.Density
		m.Density = &d
	}
	if p.Strength != nil {
		s := *p.Strength
		m.Strength = &s
	}
	setString(&m.Color, p.Color)
	setString(&m.Texture, p.Texture)
}
