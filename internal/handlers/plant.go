package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/crucial707/landscape-lab/internal/auth"
	"github.com/crucial707/landscape-lab/internal/models"
	"github.com/crucial707/landscape-lab/internal/repo"
	"github.com/crucial707/landscape-lab/internal/stats"
	"github.com/crucial707/landscape-lab/internal/storage"
)

// ==========================
// PlantHandler
// ==========================
type PlantHandler struct {
	Repo  *repo.PlantRepo
	Store storage.Store
	Auth  *auth.Authenticator
	Stats *stats.Service
	Audit *Auditor
}

// projectIDParam parses the optional project_id query filter. ok is false when
// it is present but not a positive integer; the 400 has been written.
func projectIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	v := r.URL.Query().Get("project_id")
	if v == "" {
		return 0, true
	}
	id, err := strconv.Atoi(v)
	if err != nil || id <= 0 {
		JSONValidationError(w, "validation failed", map[string]string{"project_id": "must be a positive integer"}, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// createResource names the missing project on 404 and the new record otherwise.
func createResource(err error, resource string) string {
	if errors.Is(err, repo.ErrNotFound) {
		return "project"
	}
	return resource
}

// ==========================
// Create Plant
// ==========================
func (h *PlantHandler) CreatePlant(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	var in models.PlantInput
	if !decodeAndValidate(w, r, &in) {
		return
	}

	p, err := h.Repo.Create(r.Context(), in, func(ownerID int) error {
		return h.Auth.Authorize(u, auth.OpPlantCreate, ownerID)
	})
	if err != nil {
		writeError(w, r, err, createResource(err, "plant"))
		return
	}

	h.Audit.Record(r.Context(), u.ID, "create", "plant", p.ID, p.Name)
	invalidate(r.Context(), h.Stats, stats.Plants)
	writeJSON(w, http.StatusCreated, p)
}

// ==========================
// List Plants (search, category, project_id, pagination)
// ==========================
func (h *PlantHandler) ListPlants(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	f := repo.PlantFilter{
		Search:    r.URL.Query().Get("search"),
		Category:  r.URL.Query().Get("category"),
		ProjectID: projectID,
	}
	p := parsePage(r)

	plants, err := h.Repo.List(r.Context(), f, p.Limit, p.Offset)
	if err != nil {
		writeError(w, r, err, "plant")
		return
	}
	total, err := h.Repo.Count(r.Context(), f)
	if err != nil {
		writeError(w, r, err, "plant")
		return
	}
	writePage(w, plants, total, p)
}

// ==========================
// Get Plant
// ==========================
func (h *PlantHandler) GetPlant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "plant")
	if !ok {
		return
	}
	p, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "plant")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ==========================
// Update Plant
// ==========================
func (h *PlantHandler) UpdatePlant(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "plant")
	if !ok {
		return
	}
	var patch models.PlantPatch
	if !decodeAndValidate(w, r, &patch) {
		return
	}

	p, err := h.Repo.Update(r.Context(), id, func(p *models.Plant) error {
		if err := h.Auth.Authorize(u, auth.OpPlantUpdate, p.OwnerID); err != nil {
			return err
		}
		patch.Apply(p)
		if p.HeightMax < p.HeightMin {
			return &invalidField{field: "height_max", message: "must not be less than height_min"}
		}
		if p.SpreadMax < p.SpreadMin {
			return &invalidField{field: "spread_max", message: "must not be less than spread_min"}
		}
		return nil
	})
	if err != nil {
		writeError(w, r, err, "plant")
		return
	}

	h.Audit.Record(r.Context(), u.ID, "update", "plant", p.ID, p.Name)
	invalidate(r.Context(), h.Stats, stats.Plants)
	writeJSON(w, http.StatusOK, p)
}

// ==========================
// Delete Plant (admin)
// ==========================
func (h *PlantHandler) DeletePlant(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "plant")
	if !ok {
		return
	}

	p, err := h.Repo.Delete(r.Context(), id, func(p *models.Plant) error {
		return h.Auth.Authorize(u, auth.OpPlantDelete, p.OwnerID)
	})
	if err != nil {
		writeError(w, r, err, "plant")
		return
	}

	discard(r.Context(), h.Store, mediaKey(p.ImageURL))
	h.Audit.Record(r.Context(), u.ID, "delete", "plant", p.ID, p.Name)
	invalidate(r.Context(), h.Stats, stats.Plants)
	w.WriteHeader(http.StatusNoContent)
}

// ==========================
// Upload Plant Image
// ==========================
func (h *PlantHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "plant")
	if !ok {
		return
	}
	current, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "plant")
		return
	}
	if err := h.Auth.Authorize(u, auth.OpPlantImage, current.OwnerID); err != nil {
		writeError(w, r, err, "plant")
		return
	}

	up, ok := readUpload(w, r, imageExts)
	if !ok {
		return
	}
	defer up.File.Close()

	key, err := putUpload(r.Context(), h.Store, "plants", up)
	if err != nil {
		writeError(w, r, err, "image")
		return
	}

	var previous string
	p, err := h.Repo.Update(r.Context(), id, func(p *models.Plant) error {
		if err := h.Auth.Authorize(u, auth.OpPlantImage, p.OwnerID); err != nil {
			return err
		}
		previous = p.ImageURL
		p.ImageURL = mediaURL(key)
		return nil
	})
	if err != nil {
		discard(r.Context(), h.Store, key)
		writeError(w, r, err, "plant")
		return
	}

	discard(r.Context(), h.Store, mediaKey(previous))
	h.Audit.Record(r.Context(), u.ID, "upload", "plant", p.ID, up.Name)
	writeJSON(w, http.StatusOK, p)
}

// ==========================
// Plant Statistics (admin)
// ==========================
func (h *PlantHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	s, err := h.Stats.Plants(r.Context())
	if err != nil {
		writeError(w, r, err, "statistics")
		return
	}
	writeJSON(w, http.StatusOK, s)
}
