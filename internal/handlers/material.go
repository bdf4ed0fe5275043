package handlers

import (
	"net/http"

	"github.com/crucial707/landscape-lab/internal/auth"
	"github.com/crucial707/landscape-lab/internal/models"
	"github.com/crucial707/landscape-lab/internal/repo"
	"github.com/crucial707/landscape-lab/internal/stats"
	"github.com/crucial707/landscape-lab/internal/storage"
)

// ==========================
// MaterialHandler
// ==========================
type MaterialHandler struct {
	Repo  *repo.MaterialRepo
	Store storage.Store
	Auth  *auth.Authenticator
	Stats *stats.Service
	Audit *Auditor
}

// ==========================
// Create Material
// ==========================
func (h *MaterialHandler) CreateMaterial(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	var in models.MaterialInput
	if !decodeAndValidate(w, r, &in) {
		return
	}

	m, err := h.Repo.Create(r.Context(), in, func(ownerID int) error {
		return h.Auth.Authorize(u, auth.OpMaterialCreate, ownerID)
	})
	if err != nil {
		writeError(w, r, err, createResource(err, "material"))
		return
	}

	h.Audit.Record(r.Context(), u.ID, "create", "material", m.ID, m.Name)
	invalidate(r.Context(), h.Stats, stats.Materials)
	writeJSON(w, http.StatusCreated, m)
}

// ==========================
// List Materials (search, category, project_id, pagination)
// ==========================
func (h *MaterialHandler) ListMaterials(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	f := repo.MaterialFilter{
		Search:    r.URL.Query().Get("search"),
		Category:  r.URL.Query().Get("category"),
		ProjectID: projectID,
	}
	pg := parsePage(r)

	materials, err := h.Repo.List(r.Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		writeError(w, r, err, "material")
		return
	}
	total, err := h.Repo.Count(r.Context(), f)
	if err != nil {
		writeError(w, r, err, "material")
		return
	}
	writePage(w, materials, total, pg)
}

// ==========================
// Get Material
// ==========================
func (h *MaterialHandler) GetMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "material")
	if !ok {
		return
	}
	m, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "material")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// ==========================
// Update Material
// ==========================
func (h *MaterialHandler) UpdateMaterial(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "material")
	if !ok {
		return
	}
	var patch models.MaterialPatch
	if !decodeAndValidate(w, r, &patch) {
		return
	}

	m, err := h.Repo.Update(r.Context(), id, func(m *models.Material) error {
		if err := h.Auth.Authorize(u, auth.OpMaterialUpdate, m.OwnerID); err != nil {
			return err
		}
		patch.Apply(m)
		return nil
	})
	if err != nil {
		writeError(w, r, err, "material")
		return
	}

	h.Audit.Record(r.Context(), u.ID, "update", "material", m.ID, m.Name)
	invalidate(r.Context(), h.Stats, stats.Materials)
	writeJSON(w, http.StatusOK, m)
}

// ==========================
// Delete Material (admin)
// ==========================
func (h *MaterialHandler) DeleteMaterial(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "material")
	if !ok {
		return
	}

	m, err := h.Repo.Delete(r.Context(), id, func(m *models.Material) error {
		return h.Auth.Authorize(u, auth.OpMaterialDelete, m.OwnerID)
	})
	if err != nil {
		writeError(w, r, err, "material")
		return
	}

	discard(r.Context(), h.Store, mediaKey(m.ImageURL))
	h.Audit.Record(r.Context(), u.ID, "delete", "material", m.ID, m.Name)
	invalidate(r.Context(), h.Stats, stats.Materials)
	w.WriteHeader(http.StatusNoContent)
}

// ==========================
// Upload Material Image
// ==========================
func (h *MaterialHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "material")
	if !ok {
		return
	}
	current, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "material")
		return
	}
	if err := h.Auth.Authorize(u, auth.OpMaterialImage, current.OwnerID); err != nil {
		writeError(w, r, err, "material")
		return
	}

	up, ok := readUpload(w, r, imageExts)
	if !ok {
		return
	}
	defer up.File.Close()

	key, err := putUpload(r.Context(), h.Store, "materials", up)
	if err != nil {
		writeError(w, r, err, "image")
		return
	}

	var previous string
	m, err := h.Repo.Update(r.Context(), id, func(m *models.Material) error {
		if err := h.Auth.Authorize(u, auth.OpMaterialImage, m.OwnerID); err != nil {
			return err
		}
		previous = m.ImageURL
		m.ImageURL = mediaURL(key)
		return nil
	})
	if err != nil {
		discard(r.Context(), h.Store, key)
		writeError(w, r, err, "material")
		return
	}

	discard(r.Context(), h.Store, mediaKey(previous))
	h.Audit.Record(r.Context(), u.ID, "upload", "material", m.ID, up.Name)
	writeJSON(w, http.StatusOK, m)
}

// ==========================
// Material Statistics (admin)
// ==========================
func (h *MaterialHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	s, err := h.Stats.Materials(r.Context())
	if err != nil {
		writeError(w, r, err, "statistics")
		return
	}
	writeJSON(w, http.StatusOK, s)
}
