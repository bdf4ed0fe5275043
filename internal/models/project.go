package models

import "time"

const (
	ProjectStatusDraft      = "draft"
	ProjectStatusInProgress = "in_progress"
	ProjectStatusCompleted  = "completed"
	ProjectStatusArchived   = "archived"
)

// Project is a design project. OwnerID is the ownership link every
// project-scoped record resolves through.
type Project struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	AreaSize    float64   `json:"area_size"`
	DesignStyle string    `json:"design_style"`
	Status      string    `json:"status"`
	OwnerID     int       `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProjectInput struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Description string  `json:"description" validate:"max=5000"`
	Location    string  `json:"location" validate:"max=200"`
	AreaSize    float64 `json:"area_size" validate:"gte=0"`
	DesignStyle string  `json:"design_style" validate:"max=100"`
}

type ProjectPatch struct {
	Name        *string  `json:"name" validate:"omitempty,min=2,max=100"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Location    *string  `json:"location" validate:"omitempty,max=200"`
	AreaSize    *float64 `json:"area_size" validate:"omitempty,gte=0"`
	DesignStyle *string  `json:"design_style" validate:"omitempty,max=100"`
	Status      *string  `json:"status" validate:"omitempty,oneof=draft in_progress completed archived"`
}

func (p ProjectPatch) Apply(pr *Project) {
	if p.Name != nil {
		pr.Name = *p.Name
	}
	if p.Description != nil {
		pr.Description = *p.Description
	}
	if p.Location != nil {
		pr.Location = *p.Location
	}
	if p.AreaSize != nil {
		pr.AreaSize = *p.AreaSize
	}
	if p.DesignStyle != nil {
		pr.DesignStyle = *p.DesignStyle
	}
	if p.Status != nil {
		pr.Status = *p.Status
	}
}

// ProjectFile is an uploaded attachment. StorageKey locates the bytes in the
// configured storage backend and is never exposed to clients.
type ProjectFile struct {
	ID          int       `json:"id"`
	ProjectID   int       `json:"project_id"`
	FileName    string    `json:"file_name"`
	StorageKey  string    `json:"-"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedBy  int       `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type ProjectVersion struct {
	ID        int       `json:"id"`
	ProjectID int       `json:"project_id"`
	Version   string    `json:"version"`
	Notes     string    `json:"notes"`
	CreatedBy int       `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}
