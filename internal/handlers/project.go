package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/crucial707/landscape-lab/internal/auth"
	"github.com/crucial707/landscape-lab/internal/models"
	"github.com/crucial707/landscape-lab/internal/repo"
	"github.com/crucial707/landscape-lab/internal/stats"
	"github.com/crucial707/landscape-lab/internal/storage"
)

// ==========================
// ProjectHandler
// ==========================
type ProjectHandler struct {
	Repo     *repo.ProjectRepo
	Files    *repo.ProjectFileRepo
	Versions *repo.ProjectVersionRepo
	Store    storage.Store
	Auth     *auth.Authenticator
	Stats    *stats.Service
	Audit    *Auditor
}

var projectStatuses = map[string]bool{
	models.ProjectStatusDraft:      true,
	models.ProjectStatusInProgress: true,
	models.ProjectStatusCompleted:  true,
	models.ProjectStatusArchived:   true,
}

type versionInput struct {
	Version string `json:"version" validate:"required,max=50"`
	Notes   string `json:"notes" validate:"max=5000"`
}

func invalidate(ctx context.Context, s *stats.Service, kinds ...stats.Kind) {
	if s != nil {
		s.Invalidate(ctx, kinds...)
	}
}

// ==========================
// Create Project
// ==========================
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.Auth.Authorize(u, auth.OpProjectCreate, u.ID); err != nil {
		writeError(w, r, err, "project")
		return
	}
	var in models.ProjectInput
	if !decodeAndValidate(w, r, &in) {
		return
	}

	p, err := h.Repo.Create(r.Context(), in, u.ID)
	if err != nil {
		writeError(w, r, err, "project")
		return
	}

	h.Audit.Record(r.Context(), u.ID, "create", "project", p.ID, p.Name)
	invalidate(r.Context(), h.Stats, stats.Projects)
	writeJSON(w, http.StatusCreated, p)
}

// ==========================
// List Projects (search, status, pagination)
// ==========================
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search, status := q.Get("search"), q.Get("status")
	if status != "" && !projectStatuses[status] {
		JSONValidationError(w, "validation failed", map[string]string{"status": "must be one of: draft, in_progress, completed, archived"}, http.StatusBadRequest)
		return
	}
	p := parsePage(r)

	projects, err := h.Repo.List(r.Context(), search, status, p.Limit, p.Offset)
	if err != nil {
		writeError(w, r, err, "project")
		return
	}
	total, err := h.Repo.Count(r.Context(), search, status)
	if err != nil {
		writeError(w, r, err, "project")
		return
	}
	writePage(w, projects, total, p)
}

// ==========================
// Get Project
// ==========================
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "project")
	if !ok {
		return
	}
	p, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "project")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ==========================
// Update Project
// ==========================
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "project")
	if !ok {
		return
	}
	var patch models.ProjectPatch
	if !decodeAndValidate(w, r, &patch) {
		return
	}

	p, err := h.Repo.Update(r.Context(), id, func(p *models.Project) error {
		if err := h.Auth.Authorize(u, auth.OpProjectUpdate, p.OwnerID); err != nil {
			return err
		}
		patch.Apply(p)
		return nil
	})
	if err != nil {
		writeError(w, r, err, "project")
		return
	}

	h.Audit.Record(r.Context(), u.ID, "update", "project", p.ID, p.Name)
	invalidate(r.Context(), h.Stats, stats.Projects)
	writeJSON(w, http.StatusOK, p)
}

// ==========================
// Delete Project
// ==========================
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "project")
	if !ok {
		return
	}

	// Files cascade with the row; their objects are removed once it commits.
	p, keys, err := h.Repo.Delete(r.Context(), id, func(p *models.Project) error {
		return h.Auth.Authorize(u, auth.OpProjectDelete, p.OwnerID)
	})
	if err != nil {
		writeError(w, r, err, "project")
		return
	}

	discard(r.Context(), h.Store, keys...)
	h.Audit.Record(r.Context(), u.ID, "delete", "project", p.ID, p.Name)
	invalidate(r.Context(), h.Stats, stats.Projects, stats.Plants, stats.Materials)
	w.WriteHeader(http.StatusNoContent)
}

// ==========================
// Project Statistics (admin)
// ==========================
func (h *ProjectHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	s, err := h.Stats.Projects(r.Context())
	if err != nil {
		writeError(w, r, err, "statistics")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// ==========================
// Upload Project File
// ==========================
func (h *ProjectHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "project")
	if !ok {
		return
	}
	p, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "project")
		return
	}
	if err := h.Auth.Authorize(u, auth.OpProjectUpload, p.OwnerID); err != nil {
		writeError(w, r, err, "project")
		return
	}

	up, ok := readUpload(w, r, projectFileExts)
	if !ok {
		return
	}
	defer up.File.Close()

	key, err := putUpload(r.Context(), h.Store, "projects", up)
	if err != nil {
		writeError(w, r, err, "file")
		return
	}

	f, err := h.Files.Create(r.Context(), models.ProjectFile{
		ProjectID:   id,
		FileName:    up.Name,
		StorageKey:  key,
		ContentType: up.ContentType,
		Size:        up.Size,
		UploadedBy:  u.ID,
	}, func(ownerID int) error {
		return h.Auth.Authorize(u, auth.OpProjectUpload, ownerID)
	})
	if err != nil {
		discard(r.Context(), h.Store, key)
		writeError(w, r, err, "project")
		return
	}

	h.Audit.Record(r.Context(), u.ID, "upload", "project", id, f.FileName)
	writeJSON(w, http.StatusCreated, f)
}

// ==========================
// List Project Files
// ==========================
func (h *ProjectHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "project")
	if !ok {
		return
	}
	if _, err := h.Repo.GetByID(r.Context(), id); err != nil {
		writeError(w, r, err, "project")
		return
	}
	files, err := h.Files.ListByProject(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "file")
		return
	}
	writeJSON(w, http.StatusOK, files)
}

// ==========================
// Download Project File
// ==========================
func (h *ProjectHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "project")
	if !ok {
		return
	}
	fileID, ok := pathID(w, r, "fileID", "file")
	if !ok {
		return
	}
	f, err := h.Files.Get(r.Context(), id, fileID)
	if err != nil {
		writeError(w, r, err, "file")
		return
	}
	rc, err := h.Store.Open(r.Context(), f.StorageKey)
	if err != nil {
		writeError(w, r, err, "file")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": f.FileName}))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil && !errors.Is(err, http.ErrAbortHandler) {
		slog.Warn("file download interrupted", "file_id", f.ID, "error", err)
	}
}

// ==========================
// Create Project Version
// ==========================
func (h *ProjectHandler) CreateVersion(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "project")
	if !ok {
		return
	}
	var in versionInput
	if !decodeAndValidate(w, r, &in) {
		return
	}

	v, err := h.Versions.Create(r.Context(), models.ProjectVersion{
		ProjectID: id,
		Version:   in.Version,
		Notes:     in.Notes,
		CreatedBy: u.ID,
	}, func(ownerID int) error {
		return h.Auth.Authorize(u, auth.OpProjectVersion, ownerID)
	})
	if err != nil {
		resource := "project"
		if errors.Is(err, repo.ErrConflict) {
			resource = "version"
		}
		writeError(w, r, err, resource)
		return
	}

	h.Audit.Record(r.Context(), u.ID, "version", "project", id, v.Version)
	writeJSON(w, http.StatusCreated, v)
}

// ==========================
// List Project Versions
// ==========================
func (h *ProjectHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "project")
	if !ok {
		return
	}
	if _, err := h.Repo.GetByID(r.Context(), id); err != nil {
		writeError(w, r, err, "project")
		return
	}
	versions, err := h.Versions.ListByProject(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "version")
		return
	}
	writeJSON(w, http.StatusOK, versions)
}
